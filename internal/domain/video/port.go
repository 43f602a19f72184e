package video

import (
	"context"

	"github.com/google/uuid"
)

type Repo interface {
	Create(ctx context.Context, v *Video) error
	GetByID(ctx context.Context, id uuid.UUID) (*Video, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]Video, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
}
