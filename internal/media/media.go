// Package media talks to the remote object host that stores video files,
// thumbnails and profile images. Bytes never pass through the API: the
// service hands out presigned PUT URLs and commits keys.
package media

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Store interface {
	// PresignPut returns a URL the client can upload the object to.
	PresignPut(ctx context.Context, key string) (string, error)
	// ObjectURL returns the canonical fetch URL for a stored key.
	ObjectURL(key string) string
}

// NewKey partitions object keys by prefix and date, e.g.
// "avatars/2026/8/28/<uuid>".
func NewKey(prefix string) string {
	d := time.Now().UTC()
	return fmt.Sprintf("%s/%d/%d/%d/%v", strings.Trim(prefix, "/"), d.Year(), int(d.Month()), d.Day(), uuid.New())
}
