package playlist

import (
	"context"

	"github.com/google/uuid"

	"github.com/streamgrid/streamgrid/internal/domain/video"
)

type Repo interface {
	Create(ctx context.Context, p *Playlist) error
	GetByID(ctx context.Context, id uuid.UUID) (*Playlist, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Playlist, error)
	Update(ctx context.Context, p *Playlist) error
	Delete(ctx context.Context, id uuid.UUID) error

	// AddVideo is idempotent; re-adding an already listed video keeps
	// its original position.
	AddVideo(ctx context.Context, playlistID, videoID uuid.UUID) error
	RemoveVideo(ctx context.Context, playlistID, videoID uuid.UUID) error
	Videos(ctx context.Context, playlistID uuid.UUID) ([]video.Video, error)
}
