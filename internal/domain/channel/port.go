package channel

import (
	"context"

	"github.com/google/uuid"
)

type SubscriptionRepo interface {
	// Subscribe is idempotent: re-subscribing is a no-op.
	Subscribe(ctx context.Context, subscriberID, channelID uuid.UUID) error
	Unsubscribe(ctx context.Context, subscriberID, channelID uuid.UUID) error
	IsSubscribed(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error)
	// Counts returns how many users follow the channel and how many
	// channels the user follows.
	Counts(ctx context.Context, channelID uuid.UUID) (subscribers, subscribedTo int64, err error)
}
