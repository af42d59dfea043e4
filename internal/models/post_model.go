package models

import "time"

type PostStatus string

const (
	PostStatusScheduled PostStatus = "Scheduled"
	PostStatusPublished PostStatus = "Published"
	PostStatusFailed    PostStatus = "Failed"
)

// IsTerminal reports whether no further transition can happen from s.
func (s PostStatus) IsTerminal() bool {
	return s == PostStatusPublished || s == PostStatusFailed
}

type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

type MediaFile struct {
	ID         string    `json:"id"`
	FileName   string    `json:"file_name"`
	MimeType   string    `json:"mime_type"`
	Type       MediaType `json:"type"`
	Size       int64     `json:"size"`
	PreviewURL string    `json:"preview_url"`
}

type Post struct {
	ID          string      `json:"id"`
	MediaFiles  []MediaFile `json:"media_files"`
	Caption     string      `json:"caption"`
	Platforms   []Platform  `json:"platforms"`
	ScheduledAt time.Time   `json:"scheduled_at"`
	Status      PostStatus  `json:"status"`
	Niche       string      `json:"niche,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	ResolvedAt  *time.Time  `json:"resolved_at,omitempty"`
}

// IsDue reports whether p is still scheduled and its time has come.
func (p *Post) IsDue(now time.Time) bool {
	return p.Status == PostStatusScheduled && !p.ScheduledAt.After(now)
}

// Clone returns a copy that shares no slices with p.
func (p Post) Clone() Post {
	c := p
	c.MediaFiles = append([]MediaFile(nil), p.MediaFiles...)
	c.Platforms = append([]Platform(nil), p.Platforms...)
	if p.ResolvedAt != nil {
		t := *p.ResolvedAt
		c.ResolvedAt = &t
	}
	return c
}

// PostDraft is the unvalidated input a Post is created from.
type PostDraft struct {
	MediaFiles  []MediaFile `validate:"required,min=1,dive"`
	Caption     string
	Platforms   []Platform `validate:"required,min=1,dive,platform"`
	ScheduledAt time.Time  `validate:"required"`
	Niche       string
}
