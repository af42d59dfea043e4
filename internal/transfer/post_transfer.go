package transfer

import "github.com/maheshrc27/astraboltz/internal/models"

// PostCreation holds the raw form fields of a create-post request.
type PostCreation struct {
	Caption       string
	ScheduledTime string
	Platforms     string // JSON array of platform names
	Niche         string
}

type ListView struct {
	Posts []models.Post `json:"posts"`
	Empty bool          `json:"empty"`
}

type PostCreated struct {
	Message string       `json:"message"`
	Post    *models.Post `json:"post"`
}
