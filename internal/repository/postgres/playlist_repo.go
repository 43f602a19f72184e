package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/streamgrid/streamgrid/internal/domain/playlist"
	"github.com/streamgrid/streamgrid/internal/domain/video"
)

var _ playlist.Repo = (*PlaylistRepo)(nil)

type PlaylistRepo struct {
	db *DB
}

func NewPlaylistRepo(db *DB) *PlaylistRepo { return &PlaylistRepo{db: db} }

const playlistCols = `id, owner_id, name, description, created_at, updated_at`

const (
	qPlaylistInsert = `
INSERT INTO playlists (owner_id, name, description)
VALUES ($1, $2, $3)
RETURNING ` + playlistCols + `;`

	qPlaylistByID = `
SELECT ` + playlistCols + ` FROM playlists WHERE id = $1;`

	qPlaylistByOwner = `
SELECT ` + playlistCols + `
FROM playlists
WHERE owner_id = $1
ORDER BY created_at DESC;`

	qPlaylistUpdate = `
UPDATE playlists
SET name        = $2,
    description = $3,
    updated_at  = NOW()
WHERE id = $1
RETURNING ` + playlistCols + `;`

	qPlaylistDelete = `
DELETE FROM playlists WHERE id = $1;`

	qPlaylistAddVideo = `
INSERT INTO playlist_videos (playlist_id, video_id)
VALUES ($1, $2)
ON CONFLICT (playlist_id, video_id) DO NOTHING;`

	qPlaylistRemoveVideo = `
DELETE FROM playlist_videos WHERE playlist_id = $1 AND video_id = $2;`

	qPlaylistVideos = `
SELECT ` + playlistVideoCols + `
FROM playlist_videos pv
JOIN videos v ON v.id = pv.video_id
WHERE pv.playlist_id = $1
ORDER BY pv.added_at;`
)

const playlistVideoCols = `v.id, v.owner_id, v.title, v.description, v.file_key, v.thumbnail_key, v.duration_seconds, v.views, v.published, v.created_at, v.updated_at`

func (r *PlaylistRepo) Create(ctx context.Context, p *playlist.Playlist) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	row := r.db.execQueryer(ctx).QueryRow(ctx, qPlaylistInsert, p.OwnerID, p.Name, p.Description)
	if err := scanPlaylist(row, p); err != nil {
		return fmt.Errorf("playlist insert: %w", err)
	}
	return nil
}

func (r *PlaylistRepo) GetByID(ctx context.Context, id uuid.UUID) (*playlist.Playlist, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var p playlist.Playlist
	if err := scanPlaylist(r.db.execQueryer(ctx).QueryRow(ctx, qPlaylistByID, id), &p); err != nil {
		return nil, mapScanErr("scan playlist", err)
	}
	return &p, nil
}

func (r *PlaylistRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]playlist.Playlist, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.execQueryer(ctx).Query(ctx, qPlaylistByOwner, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	defer rows.Close()

	var out []playlist.Playlist
	for rows.Next() {
		var p playlist.Playlist
		if err := scanPlaylist(rows, &p); err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PlaylistRepo) Update(ctx context.Context, p *playlist.Playlist) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	row := r.db.execQueryer(ctx).QueryRow(ctx, qPlaylistUpdate, p.ID, p.Name, p.Description)
	if err := scanPlaylist(row, p); err != nil {
		return mapScanErr("playlist update", err)
	}
	return nil
}

func (r *PlaylistRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.execQueryer(ctx).Exec(ctx, qPlaylistDelete, id)
	if err != nil {
		return fmt.Errorf("playlist delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PlaylistRepo) AddVideo(ctx context.Context, playlistID, videoID uuid.UUID) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.execQueryer(ctx).Exec(ctx, qPlaylistAddVideo, playlistID, videoID); err != nil {
		// playlist or video gone
		if isFKViolation(err) {
			return ErrNotFound
		}
		return fmt.Errorf("playlist add video: %w", err)
	}
	return nil
}

func (r *PlaylistRepo) RemoveVideo(ctx context.Context, playlistID, videoID uuid.UUID) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.execQueryer(ctx).Exec(ctx, qPlaylistRemoveVideo, playlistID, videoID); err != nil {
		return fmt.Errorf("playlist remove video: %w", err)
	}
	return nil
}

func (r *PlaylistRepo) Videos(ctx context.Context, playlistID uuid.UUID) ([]video.Video, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.execQueryer(ctx).Query(ctx, qPlaylistVideos, playlistID)
	if err != nil {
		return nil, fmt.Errorf("playlist videos: %w", err)
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

func scanPlaylist(row pgx.Row, out *playlist.Playlist) error {
	return row.Scan(&out.ID, &out.OwnerID, &out.Name, &out.Description, &out.CreatedAt, &out.UpdatedAt)
}
