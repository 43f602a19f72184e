// Package historyworker consumes watch events and materializes them:
// one upsert into watch_history plus a view-count bump, atomically.
package historyworker

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/streamgrid/streamgrid/internal/domain"
	"github.com/streamgrid/streamgrid/internal/domain/history"
	"github.com/streamgrid/streamgrid/internal/domain/video"
	"github.com/streamgrid/streamgrid/internal/obs/retry"
	kafkax "github.com/streamgrid/streamgrid/internal/repository/kafka"
	"github.com/streamgrid/streamgrid/internal/repository/postgres"
)

type Runner struct {
	log     *zap.Logger
	cons    *kafkax.Consumer
	store   *Applier
	mMsgs   prometheus.Counter
	mErrors prometheus.Counter
}

func NewRunner(log *zap.Logger, cons *kafkax.Consumer, store *Applier) *Runner {
	return &Runner{
		log:   log,
		cons:  cons,
		store: store,
		mMsgs: promauto.NewCounter(prometheus.CounterOpts{
			Name: "streamgrid_watch_events_consumed_total", Help: "Watch events consumed",
		}),
		mErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "streamgrid_watch_events_failed_total", Help: "Watch events that failed to apply",
		}),
	}
}

func (r *Runner) Run(ctx context.Context) error {
	handler := kafkax.JSONHandler(func(ctx context.Context, _ []byte, ev *history.WatchEvent) error {
		r.mMsgs.Inc()
		if err := r.store.Apply(ctx, *ev); err != nil {
			r.mErrors.Inc()
			return err
		}
		return nil
	})

	if err := r.cons.Consume(ctx, handler); err != nil && !errors.Is(err, context.Canceled) {
		r.log.Warn("kafka consume", zap.Error(err))
		return err
	}
	return ctx.Err()
}

// Applier writes one event to the store under retry. History row and
// view count move together or not at all.
type Applier struct {
	log     *zap.Logger
	tx      postgres.Transactor
	history history.Repo
	videos  video.Repo
	policy  retry.Policy
}

func NewApplier(log *zap.Logger, tx postgres.Transactor, hist history.Repo, videos video.Repo) *Applier {
	policy := retry.DefaultStorePolicy(log)
	wasRetryable := policy.Retryable
	// a missing video will not appear on retry
	policy.Retryable = func(err error) bool {
		return wasRetryable(err) && !errors.Is(err, domain.ErrNotFound)
	}
	return &Applier{
		log:     log,
		tx:      tx,
		history: hist,
		videos:  videos,
		policy:  policy,
	}
}

// Apply is idempotent per (user, video) pair at the history level; the
// view counter is at-least-once, which is acceptable for telemetry.
// Events referencing a deleted video are dropped, not redelivered.
func (a *Applier) Apply(ctx context.Context, ev history.WatchEvent) error {
	if ev.UserID == uuid.Nil || ev.VideoID == uuid.Nil {
		a.log.Warn("malformed watch event dropped",
			zap.String("userID", ev.UserID.String()),
			zap.String("videoID", ev.VideoID.String()))
		return nil
	}

	err := retry.Do(ctx, func() error {
		return a.tx.WithTx(ctx, func(txCtx context.Context) error {
			if err := a.history.Upsert(txCtx, ev); err != nil {
				return fmt.Errorf("upsert history: %w", err)
			}
			if err := a.videos.IncrementViews(txCtx, ev.VideoID); err != nil {
				return fmt.Errorf("bump views: %w", err)
			}
			return nil
		})
	}, a.policy)

	if errors.Is(err, domain.ErrNotFound) {
		a.log.Warn("watch event for missing video dropped",
			zap.String("videoID", ev.VideoID.String()))
		return nil
	}
	return err
}
