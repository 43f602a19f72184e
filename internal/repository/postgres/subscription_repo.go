package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/streamgrid/streamgrid/internal/domain/channel"
)

var _ channel.SubscriptionRepo = (*SubscriptionRepo)(nil)

type SubscriptionRepo struct {
	db *DB
}

func NewSubscriptionRepo(db *DB) *SubscriptionRepo { return &SubscriptionRepo{db: db} }

const (
	qSubInsert = `
INSERT INTO subscriptions (subscriber_id, channel_id)
VALUES ($1, $2)
ON CONFLICT (subscriber_id, channel_id) DO NOTHING;`

	qSubDelete = `
DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2;`

	qSubExists = `
SELECT EXISTS (
    SELECT 1 FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2
);`

	qSubCounts = `
SELECT
    (SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1),
    (SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = $1);`
)

func (r *SubscriptionRepo) Subscribe(ctx context.Context, subscriberID, channelID uuid.UUID) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.execQueryer(ctx).Exec(ctx, qSubInsert, subscriberID, channelID); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	return nil
}

func (r *SubscriptionRepo) Unsubscribe(ctx context.Context, subscriberID, channelID uuid.UUID) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.execQueryer(ctx).Exec(ctx, qSubDelete, subscriberID, channelID); err != nil {
		return fmt.Errorf("unsubscribe: %w", err)
	}
	return nil
}

func (r *SubscriptionRepo) IsSubscribed(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var subscribed bool
	if err := r.db.execQueryer(ctx).QueryRow(ctx, qSubExists, subscriberID, channelID).Scan(&subscribed); err != nil {
		return false, fmt.Errorf("subscription exists: %w", err)
	}
	return subscribed, nil
}

func (r *SubscriptionRepo) Counts(ctx context.Context, channelID uuid.UUID) (int64, int64, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var subscribers, subscribedTo int64
	if err := r.db.execQueryer(ctx).QueryRow(ctx, qSubCounts, channelID).Scan(&subscribers, &subscribedTo); err != nil {
		return 0, 0, fmt.Errorf("subscription counts: %w", err)
	}
	return subscribers, subscribedTo, nil
}
