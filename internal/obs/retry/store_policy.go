package retry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// DefaultStorePolicy retries transient store failures while the history
// worker applies an event. Context cancellation is never retried.
func DefaultStorePolicy(log *zap.Logger) Policy {
	return Policy{
		Name:     "history_store",
		Attempts: 4,
		Backoff:  ExpoJitter{Base: 100 * time.Millisecond, Max: 5 * time.Second, Jitter: 0.2},
		Retryable: func(err error) bool {
			return err != nil && !errors.Is(err, context.Canceled)
		},
		OnAttempt: func(i int, err error) {
			if log != nil {
				log.Warn("store retry", zap.Int("attempt", i+1), zap.Error(err))
			}
		},
		OnExhaust: func(err error) {
			if log != nil && !errors.Is(err, context.Canceled) {
				log.Error("store retries exhausted", zap.Error(err))
			}
		},
	}
}
