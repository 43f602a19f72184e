package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/streamgrid/streamgrid/internal/domain/video"
)

var _ video.Repo = (*VideoRepo)(nil)

type VideoRepo struct {
	db *DB
}

func NewVideoRepo(db *DB) *VideoRepo { return &VideoRepo{db: db} }

const videoCols = `id, owner_id, title, description, file_key, thumbnail_key, duration_seconds, views, published, created_at, updated_at`

const (
	qVideoInsert = `
INSERT INTO videos (owner_id, title, description, file_key, thumbnail_key, duration_seconds, published)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + videoCols + `;`

	qVideoByID = `
SELECT ` + videoCols + ` FROM videos WHERE id = $1;`

	qVideoByOwner = `
SELECT ` + videoCols + `
FROM videos
WHERE owner_id = $1
ORDER BY created_at DESC
LIMIT $2;`

	qVideoBumpViews = `
UPDATE videos SET views = views + 1 WHERE id = $1;`
)

func (r *VideoRepo) Create(ctx context.Context, v *video.Video) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	row := r.db.execQueryer(ctx).QueryRow(ctx, qVideoInsert,
		v.OwnerID, v.Title, v.Description, v.FileKey, v.ThumbnailKey, v.DurationSeconds, v.Published)
	if err := scanVideo(row, v); err != nil {
		return fmt.Errorf("video insert: %w", err)
	}
	return nil
}

func (r *VideoRepo) GetByID(ctx context.Context, id uuid.UUID) (*video.Video, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var v video.Video
	if err := scanVideo(r.db.execQueryer(ctx).QueryRow(ctx, qVideoByID, id), &v); err != nil {
		return nil, mapScanErr("scan video", err)
	}
	return &v, nil
}

func (r *VideoRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]video.Video, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.execQueryer(ctx).Query(ctx, qVideoByOwner, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	var out []video.Video
	for rows.Next() {
		var v video.Video
		if err := scanVideo(rows, &v); err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *VideoRepo) IncrementViews(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.execQueryer(ctx).Exec(ctx, qVideoBumpViews, id)
	if err != nil {
		return fmt.Errorf("bump views: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanVideo(row pgx.Row, out *video.Video) error {
	return row.Scan(
		&out.ID, &out.OwnerID, &out.Title, &out.Description,
		&out.FileKey, &out.ThumbnailKey, &out.DurationSeconds,
		&out.Views, &out.Published, &out.CreatedAt, &out.UpdatedAt,
	)
}
