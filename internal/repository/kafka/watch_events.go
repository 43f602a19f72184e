package kafka

import (
	"context"

	"github.com/streamgrid/streamgrid/internal/domain/history"
)

// WatchEventsKafka publishes watch events keyed by user id so one user's
// history is applied in order by a single partition consumer.
type WatchEventsKafka struct {
	p *Producer
}

func NewWatchEventsKafka(p *Producer) *WatchEventsKafka { return &WatchEventsKafka{p: p} }

var _ history.Events = (*WatchEventsKafka)(nil)

func (e *WatchEventsKafka) PublishWatched(ctx context.Context, ev history.WatchEvent) error {
	return e.p.PublishJSON(ctx, []byte(ev.UserID.String()), ev)
}
