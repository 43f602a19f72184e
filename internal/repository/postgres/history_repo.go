package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/streamgrid/streamgrid/internal/domain/history"
)

var _ history.Repo = (*HistoryRepo)(nil)

type HistoryRepo struct {
	db *DB
}

func NewHistoryRepo(db *DB) *HistoryRepo { return &HistoryRepo{db: db} }

const (
	qHistoryUpsert = `
INSERT INTO watch_history (user_id, video_id, watched_at)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, video_id) DO UPDATE SET watched_at = EXCLUDED.watched_at;`

	qHistoryByUser = `
SELECT ` + historyVideoCols + `, h.watched_at
FROM watch_history h
JOIN videos v ON v.id = h.video_id
WHERE h.user_id = $1
ORDER BY h.watched_at DESC
LIMIT $2;`
)

const historyVideoCols = `v.id, v.owner_id, v.title, v.description, v.file_key, v.thumbnail_key, v.duration_seconds, v.views, v.published, v.created_at, v.updated_at`

func (r *HistoryRepo) Upsert(ctx context.Context, ev history.WatchEvent) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.execQueryer(ctx).Exec(ctx, qHistoryUpsert, ev.UserID, ev.VideoID, ev.WatchedAt); err != nil {
		// user or video deleted between publish and consume
		if isFKViolation(err) {
			return ErrNotFound
		}
		return fmt.Errorf("history upsert: %w", err)
	}
	return nil
}

func (r *HistoryRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]history.Entry, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.execQueryer(ctx).Query(ctx, qHistoryByUser, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var out []history.Entry
	for rows.Next() {
		var e history.Entry
		if err := rows.Scan(
			&e.Video.ID, &e.Video.OwnerID, &e.Video.Title, &e.Video.Description,
			&e.Video.FileKey, &e.Video.ThumbnailKey, &e.Video.DurationSeconds,
			&e.Video.Views, &e.Video.Published, &e.Video.CreatedAt, &e.Video.UpdatedAt,
			&e.WatchedAt,
		); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
