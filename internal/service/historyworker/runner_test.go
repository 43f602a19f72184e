package historyworker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/streamgrid/streamgrid/internal/domain"
	"github.com/streamgrid/streamgrid/internal/domain/history"
	domainvideo "github.com/streamgrid/streamgrid/internal/domain/video"
)

type passthroughTx struct {
	calls int
}

func (p *passthroughTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	p.calls++
	return fn(ctx)
}

type fakeHistoryRepo struct {
	rows map[[2]uuid.UUID]time.Time
	fail error
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{rows: map[[2]uuid.UUID]time.Time{}}
}

func (f *fakeHistoryRepo) Upsert(_ context.Context, ev history.WatchEvent) error {
	if f.fail != nil {
		return f.fail
	}
	f.rows[[2]uuid.UUID{ev.UserID, ev.VideoID}] = ev.WatchedAt
	return nil
}

func (f *fakeHistoryRepo) ListByUser(context.Context, uuid.UUID, int) ([]history.Entry, error) {
	return nil, nil
}

type fakeVideoRepo struct {
	views map[uuid.UUID]int64
}

func newFakeVideoRepo(ids ...uuid.UUID) *fakeVideoRepo {
	f := &fakeVideoRepo{views: map[uuid.UUID]int64{}}
	for _, id := range ids {
		f.views[id] = 0
	}
	return f
}

func (f *fakeVideoRepo) Create(context.Context, *domainvideo.Video) error { return nil }

func (f *fakeVideoRepo) GetByID(context.Context, uuid.UUID) (*domainvideo.Video, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeVideoRepo) ListByOwner(context.Context, uuid.UUID, int) ([]domainvideo.Video, error) {
	return nil, nil
}

func (f *fakeVideoRepo) IncrementViews(_ context.Context, id uuid.UUID) error {
	if _, ok := f.views[id]; !ok {
		return domain.ErrNotFound
	}
	f.views[id]++
	return nil
}

func newTestApplier(videos ...uuid.UUID) (*Applier, *passthroughTx, *fakeHistoryRepo, *fakeVideoRepo) {
	tx := &passthroughTx{}
	hist := newFakeHistoryRepo()
	vrepo := newFakeVideoRepo(videos...)
	return NewApplier(zap.NewNop(), tx, hist, vrepo), tx, hist, vrepo
}

func watched(user, vid uuid.UUID, at time.Time) history.WatchEvent {
	return history.WatchEvent{UserID: user, VideoID: vid, WatchedAt: at}
}

func TestApplyWritesHistoryAndBumpsViews(t *testing.T) {
	user, vid := uuid.New(), uuid.New()
	applier, tx, hist, vrepo := newTestApplier(vid)
	at := time.Date(2026, 7, 4, 10, 0, 0, 0, time.UTC)

	require.NoError(t, applier.Apply(context.Background(), watched(user, vid, at)))
	require.Equal(t, 1, tx.calls)
	require.Equal(t, at, hist.rows[[2]uuid.UUID{user, vid}])
	require.EqualValues(t, 1, vrepo.views[vid])
}

func TestApplyRewatchRefreshesTimestamp(t *testing.T) {
	user, vid := uuid.New(), uuid.New()
	applier, _, hist, vrepo := newTestApplier(vid)
	first := time.Date(2026, 7, 4, 10, 0, 0, 0, time.UTC)
	second := first.Add(2 * time.Hour)

	require.NoError(t, applier.Apply(context.Background(), watched(user, vid, first)))
	require.NoError(t, applier.Apply(context.Background(), watched(user, vid, second)))
	require.Len(t, hist.rows, 1)
	require.Equal(t, second, hist.rows[[2]uuid.UUID{user, vid}])
	require.EqualValues(t, 2, vrepo.views[vid])
}

func TestApplyDropsMalformedEvents(t *testing.T) {
	applier, tx, _, _ := newTestApplier()
	require.NoError(t, applier.Apply(context.Background(), watched(uuid.Nil, uuid.New(), time.Now())))
	require.NoError(t, applier.Apply(context.Background(), watched(uuid.New(), uuid.Nil, time.Now())))
	require.Zero(t, tx.calls)
}

func TestApplyDropsEventsForMissingVideo(t *testing.T) {
	applier, tx, hist, _ := newTestApplier() // no known videos
	err := applier.Apply(context.Background(), watched(uuid.New(), uuid.New(), time.Now()))
	require.NoError(t, err, "missing video must not poison the partition")
	require.Equal(t, 1, tx.calls, "not-found is not retried")
	require.Empty(t, hist.rows)
}

func TestApplyRetriesTransientFailures(t *testing.T) {
	user, vid := uuid.New(), uuid.New()
	applier, tx, hist, _ := newTestApplier(vid)

	// fail twice, then succeed
	applier.history = &flakyHistory{inner: hist, failures: 2}

	require.NoError(t, applier.Apply(context.Background(), watched(user, vid, time.Now())))
	require.Equal(t, 3, tx.calls)
	require.Len(t, hist.rows, 1)
}

type flakyHistory struct {
	inner    *fakeHistoryRepo
	failures int
}

func (f *flakyHistory) Upsert(ctx context.Context, ev history.WatchEvent) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("connection reset")
	}
	return f.inner.Upsert(ctx, ev)
}

func (f *flakyHistory) ListByUser(ctx context.Context, id uuid.UUID, limit int) ([]history.Entry, error) {
	return f.inner.ListByUser(ctx, id, limit)
}
