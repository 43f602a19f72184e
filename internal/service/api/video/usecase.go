// Package video publishes video metadata, hands out presigned upload
// URLs for the media files, and turns playback into watch events.
package video

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/streamgrid/streamgrid/internal/domain"
	"github.com/streamgrid/streamgrid/internal/domain/history"
	domainvideo "github.com/streamgrid/streamgrid/internal/domain/video"
	"github.com/streamgrid/streamgrid/internal/media"
)

const (
	filePrefix  = "videos"
	thumbPrefix = "thumbnails"

	maxTitleLen = 200
)

type Usecase struct {
	videos domainvideo.Repo
	events history.Events
	store  media.Store
	now    func() time.Time
}

func NewUsecase(videos domainvideo.Repo, events history.Events, store media.Store, now func() time.Time) *Usecase {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Usecase{videos: videos, events: events, store: store, now: now}
}

// Published is a video enriched with fetchable media URLs; storage keys
// stay internal.
type Published struct {
	domainvideo.Video
	FileURL      string `json:"fileUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// Draft is the response to a publish call: the created record plus the
// presigned destinations the client uploads the actual bytes to.
type Draft struct {
	Published
	FileUploadURL      string `json:"fileUploadUrl"`
	ThumbnailUploadURL string `json:"thumbnailUploadUrl"`
}

func (u *Usecase) enrich(v *domainvideo.Video) Published {
	return Published{
		Video:        *v,
		FileURL:      u.store.ObjectURL(v.FileKey),
		ThumbnailURL: u.store.ObjectURL(v.ThumbnailKey),
	}
}

// Publish creates the metadata record and presigns one upload slot for
// the video file and one for its thumbnail.
func (u *Usecase) Publish(ctx context.Context, ownerID uuid.UUID, title, description string, durationSeconds int) (*Draft, error) {
	title = strings.TrimSpace(title)
	switch {
	case title == "":
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	case len(title) > maxTitleLen:
		return nil, fmt.Errorf("%w: title longer than %d characters", domain.ErrValidation, maxTitleLen)
	case durationSeconds < 0:
		return nil, fmt.Errorf("%w: duration must not be negative", domain.ErrValidation)
	}

	v := &domainvideo.Video{
		ID:              uuid.New(),
		OwnerID:         ownerID,
		Title:           title,
		Description:     strings.TrimSpace(description),
		FileKey:         media.NewKey(filePrefix),
		ThumbnailKey:    media.NewKey(thumbPrefix),
		DurationSeconds: durationSeconds,
		Published:       true,
	}
	fileURL, err := u.store.PresignPut(ctx, v.FileKey)
	if err != nil {
		return nil, fmt.Errorf("presign file: %w", err)
	}
	thumbURL, err := u.store.PresignPut(ctx, v.ThumbnailKey)
	if err != nil {
		return nil, fmt.Errorf("presign thumbnail: %w", err)
	}
	if err := u.videos.Create(ctx, v); err != nil {
		return nil, err
	}
	return &Draft{
		Published:          u.enrich(v),
		FileUploadURL:      fileURL,
		ThumbnailUploadURL: thumbURL,
	}, nil
}

func (u *Usecase) Get(ctx context.Context, id uuid.UUID) (*Published, error) {
	v, err := u.videos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p := u.enrich(v)
	return &p, nil
}

func (u *Usecase) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]Published, error) {
	vs, err := u.videos.ListByOwner(ctx, ownerID, limit)
	if err != nil {
		return nil, err
	}
	return u.EnrichAll(vs), nil
}

// EnrichAll attaches media URLs to stored videos for callers that load
// them through their own queries.
func (u *Usecase) EnrichAll(vs []domainvideo.Video) []Published {
	out := make([]Published, 0, len(vs))
	for i := range vs {
		out = append(out, u.enrich(&vs[i]))
	}
	return out
}

// RecordView emits a watch event for the pipeline; the history worker
// materializes history rows and view counts. The video must exist so a
// caller cannot stuff the topic with garbage ids.
func (u *Usecase) RecordView(ctx context.Context, userID, videoID uuid.UUID) error {
	if _, err := u.videos.GetByID(ctx, videoID); err != nil {
		return err
	}
	return u.events.PublishWatched(ctx, history.WatchEvent{
		UserID:    userID,
		VideoID:   videoID,
		WatchedAt: u.now(),
	})
}
