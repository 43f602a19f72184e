package history

import (
	"time"

	"github.com/google/uuid"

	"github.com/streamgrid/streamgrid/internal/domain/video"
)

// WatchEvent is what the API publishes when a signed-in user watches a
// video; the history worker materializes it into watch_history.
type WatchEvent struct {
	UserID    uuid.UUID `json:"userId"`
	VideoID   uuid.UUID `json:"videoId"`
	WatchedAt time.Time `json:"watchedAt"`
}

// Entry is one row of a user's watch history joined with the video.
type Entry struct {
	Video     video.Video `json:"video"`
	WatchedAt time.Time   `json:"watchedAt"`
}
