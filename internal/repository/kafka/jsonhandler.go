package kafka

import (
	"context"
	"encoding/json"
)

// JSONHandler decodes the message value into M before invoking handle.
// Undecodable messages return the error to the consumer, which logs and
// skips the commit.
func JSONHandler[M any](handle func(ctx context.Context, key []byte, msg *M) error) Handler {
	return func(ctx context.Context, key, value []byte) error {
		msg := new(M)
		if err := json.Unmarshal(value, msg); err != nil {
			return err
		}
		return handle(ctx, key, msg)
	}
}
