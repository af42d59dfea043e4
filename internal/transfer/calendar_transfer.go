package transfer

import "github.com/maheshrc27/astraboltz/internal/models"

type MonthRef struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

type CalendarCell struct {
	Date     string        `json:"date"`
	Day      int           `json:"day"`
	InMonth  bool          `json:"in_month"`
	IsToday  bool          `json:"is_today"`
	Posts    []models.Post `json:"posts"`
	Overflow int           `json:"overflow"`
}

type CalendarResponse struct {
	Year     int            `json:"year"`
	Month    int            `json:"month"`
	Title    string         `json:"title"`
	Weekdays []string       `json:"weekdays"`
	Cells    []CalendarCell `json:"cells"`
	Previous MonthRef       `json:"previous"`
	Next     MonthRef       `json:"next"`
}
