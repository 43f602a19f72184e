package video

import (
	"time"

	"github.com/google/uuid"
)

type Video struct {
	ID              uuid.UUID `json:"id"`
	OwnerID         uuid.UUID `json:"ownerId"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	FileKey         string    `json:"fileKey"`
	ThumbnailKey    string    `json:"thumbnailKey"`
	DurationSeconds int       `json:"durationSeconds"`
	Views           int64     `json:"views"`
	Published       bool      `json:"published"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
