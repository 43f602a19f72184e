package history

import (
	"context"

	"github.com/google/uuid"
)

type Repo interface {
	// Upsert records the watch, refreshing watched_at if the pair exists.
	Upsert(ctx context.Context, ev WatchEvent) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]Entry, error)
}

// Events is the producer side of the watch pipeline.
type Events interface {
	PublishWatched(ctx context.Context, ev WatchEvent) error
}
