package video

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/streamgrid/streamgrid/internal/domain"
	"github.com/streamgrid/streamgrid/internal/domain/history"
	domainvideo "github.com/streamgrid/streamgrid/internal/domain/video"
)

type fakeVideoRepo struct {
	byID map[uuid.UUID]*domainvideo.Video
}

func newFakeVideoRepo() *fakeVideoRepo {
	return &fakeVideoRepo{byID: map[uuid.UUID]*domainvideo.Video{}}
}

func (f *fakeVideoRepo) Create(_ context.Context, v *domainvideo.Video) error {
	cp := *v
	f.byID[v.ID] = &cp
	return nil
}

func (f *fakeVideoRepo) GetByID(_ context.Context, id uuid.UUID) (*domainvideo.Video, error) {
	v, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (f *fakeVideoRepo) ListByOwner(_ context.Context, ownerID uuid.UUID, _ int) ([]domainvideo.Video, error) {
	var out []domainvideo.Video
	for _, v := range f.byID {
		if v.OwnerID == ownerID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (f *fakeVideoRepo) IncrementViews(_ context.Context, id uuid.UUID) error {
	v, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	v.Views++
	return nil
}

type fakeEvents struct {
	published []history.WatchEvent
}

func (f *fakeEvents) PublishWatched(_ context.Context, ev history.WatchEvent) error {
	f.published = append(f.published, ev)
	return nil
}

type fakeStore struct{}

func (fakeStore) PresignPut(_ context.Context, key string) (string, error) {
	return "https://media.test/upload/" + key, nil
}

func (fakeStore) ObjectURL(key string) string { return "https://media.test/" + key }

func newTestUsecase(now time.Time) (*Usecase, *fakeVideoRepo, *fakeEvents) {
	repo := newFakeVideoRepo()
	events := &fakeEvents{}
	return NewUsecase(repo, events, fakeStore{}, func() time.Time { return now }), repo, events
}

func TestPublishValidation(t *testing.T) {
	uc, _, _ := newTestUsecase(time.Now())
	ctx := context.Background()
	owner := uuid.New()

	_, err := uc.Publish(ctx, owner, "  ", "d", 10)
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.Publish(ctx, owner, strings.Repeat("x", maxTitleLen+1), "d", 10)
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.Publish(ctx, owner, "ok", "d", -1)
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestPublishCreatesRecordWithUploadSlots(t *testing.T) {
	uc, repo, _ := newTestUsecase(time.Now())
	owner := uuid.New()

	draft, err := uc.Publish(context.Background(), owner, " First upload ", " about cats ", 42)
	require.NoError(t, err)
	require.Equal(t, "First upload", draft.Title)
	require.Equal(t, "about cats", draft.Description)
	require.True(t, strings.HasPrefix(draft.FileKey, "videos/"))
	require.True(t, strings.HasPrefix(draft.ThumbnailKey, "thumbnails/"))
	require.Contains(t, draft.FileUploadURL, draft.FileKey)
	require.Contains(t, draft.ThumbnailUploadURL, draft.ThumbnailKey)
	require.Contains(t, draft.FileURL, draft.FileKey)

	stored, err := repo.GetByID(context.Background(), draft.ID)
	require.NoError(t, err)
	require.Equal(t, owner, stored.OwnerID)
	require.True(t, stored.Published)
}

func TestGetUnknownVideo(t *testing.T) {
	uc, _, _ := newTestUsecase(time.Now())
	_, err := uc.Get(context.Background(), uuid.New())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordViewPublishesEvent(t *testing.T) {
	now := time.Date(2026, 7, 4, 10, 0, 0, 0, time.UTC)
	uc, _, events := newTestUsecase(now)
	ctx := context.Background()
	owner, viewer := uuid.New(), uuid.New()

	draft, err := uc.Publish(ctx, owner, "clip", "", 5)
	require.NoError(t, err)

	require.NoError(t, uc.RecordView(ctx, viewer, draft.ID))
	require.Len(t, events.published, 1)
	ev := events.published[0]
	require.Equal(t, viewer, ev.UserID)
	require.Equal(t, draft.ID, ev.VideoID)
	require.Equal(t, now, ev.WatchedAt)
}

func TestRecordViewUnknownVideoPublishesNothing(t *testing.T) {
	uc, _, events := newTestUsecase(time.Now())
	err := uc.RecordView(context.Background(), uuid.New(), uuid.New())
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.Empty(t, events.published)
}
