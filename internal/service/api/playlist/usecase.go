// Package playlist manages user-curated video collections.
package playlist

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/streamgrid/streamgrid/internal/domain"
	domainplaylist "github.com/streamgrid/streamgrid/internal/domain/playlist"
	videosvc "github.com/streamgrid/streamgrid/internal/service/api/video"
)

const maxNameLen = 100

type Usecase struct {
	playlists domainplaylist.Repo
	videos    *videosvc.Usecase
}

func NewUsecase(playlists domainplaylist.Repo, videos *videosvc.Usecase) *Usecase {
	return &Usecase{playlists: playlists, videos: videos}
}

// Detail is a playlist with its videos in listing order.
type Detail struct {
	domainplaylist.Playlist
	Videos []videosvc.Published `json:"videos"`
}

func validateFields(name, description string) (string, string, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	switch {
	case name == "":
		return "", "", fmt.Errorf("%w: name is required", domain.ErrValidation)
	case len(name) > maxNameLen:
		return "", "", fmt.Errorf("%w: name longer than %d characters", domain.ErrValidation, maxNameLen)
	case description == "":
		return "", "", fmt.Errorf("%w: description is required", domain.ErrValidation)
	}
	return name, description, nil
}

func (u *Usecase) Create(ctx context.Context, ownerID uuid.UUID, name, description string) (*domainplaylist.Playlist, error) {
	name, description, err := validateFields(name, description)
	if err != nil {
		return nil, err
	}
	p := &domainplaylist.Playlist{
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
	}
	if err := u.playlists.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (u *Usecase) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domainplaylist.Playlist, error) {
	return u.playlists.ListByOwner(ctx, ownerID)
}

func (u *Usecase) Get(ctx context.Context, id uuid.UUID) (*Detail, error) {
	p, err := u.playlists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	vs, err := u.playlists.Videos(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Detail{Playlist: *p, Videos: u.videos.EnrichAll(vs)}, nil
}

// owned loads the playlist and checks it belongs to the actor. A
// foreign playlist is indistinguishable from a missing one.
func (u *Usecase) owned(ctx context.Context, actorID, id uuid.UUID) (*domainplaylist.Playlist, error) {
	p, err := u.playlists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != actorID {
		return nil, fmt.Errorf("%w: playlist", domain.ErrNotFound)
	}
	return p, nil
}

func (u *Usecase) Update(ctx context.Context, actorID, id uuid.UUID, name, description string) (*domainplaylist.Playlist, error) {
	name, description, err := validateFields(name, description)
	if err != nil {
		return nil, err
	}
	p, err := u.owned(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	p.Name, p.Description = name, description
	if err := u.playlists.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (u *Usecase) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if _, err := u.owned(ctx, actorID, id); err != nil {
		return err
	}
	return u.playlists.Delete(ctx, id)
}

func (u *Usecase) AddVideo(ctx context.Context, actorID, playlistID, videoID uuid.UUID) error {
	if _, err := u.owned(ctx, actorID, playlistID); err != nil {
		return err
	}
	if _, err := u.videos.Get(ctx, videoID); err != nil {
		return err
	}
	return u.playlists.AddVideo(ctx, playlistID, videoID)
}

// RemoveVideo is a no-op when the video is not listed.
func (u *Usecase) RemoveVideo(ctx context.Context, actorID, playlistID, videoID uuid.UUID) error {
	if _, err := u.owned(ctx, actorID, playlistID); err != nil {
		return err
	}
	return u.playlists.RemoveVideo(ctx, playlistID, videoID)
}
