package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/streamgrid/streamgrid/internal/domain/user"
)

var _ user.Repo = (*UserRepo)(nil)

type UserRepo struct {
	db *DB
}

func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const userCols = `id, username, email, full_name, password_hash, avatar_url, cover_image_url, refresh_token, created_at, updated_at`

const (
	qUserInsert = `
INSERT INTO users (username, email, full_name, password_hash)
VALUES ($1, $2, $3, $4)
RETURNING ` + userCols + `;`

	qUserByID = `
SELECT ` + userCols + ` FROM users WHERE id = $1;`

	qUserByUsername = `
SELECT ` + userCols + ` FROM users WHERE LOWER(username) = LOWER($1);`

	qUserByLogin = `
SELECT ` + userCols + `
FROM users
WHERE LOWER(username) = LOWER($1) OR LOWER(email) = LOWER($1)
LIMIT 1;`

	qUserUpdateDetails = `
UPDATE users
SET full_name  = $2,
    email      = $3,
    updated_at = NOW()
WHERE id = $1
RETURNING ` + userCols + `;`

	qUserSetPassword = `
UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1;`

	qUserSetRefresh = `
UPDATE users SET refresh_token = $2, updated_at = NOW() WHERE id = $1;`

	qUserSetAvatar = `
UPDATE users SET avatar_url = $2, updated_at = NOW() WHERE id = $1
RETURNING ` + userCols + `;`

	qUserSetCover = `
UPDATE users SET cover_image_url = $2, updated_at = NOW() WHERE id = $1
RETURNING ` + userCols + `;`
)

func (r *UserRepo) Create(ctx context.Context, u *user.User) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	row := r.db.execQueryer(ctx).QueryRow(ctx, qUserInsert, u.Username, u.Email, u.FullName, u.PasswordHash)
	if err := scanUser(row, u); err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("user insert: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return r.getOne(ctx, qUserByID, id)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.getOne(ctx, qUserByUsername, username)
}

func (r *UserRepo) GetByLogin(ctx context.Context, login string) (*user.User, error) {
	return r.getOne(ctx, qUserByLogin, login)
}

func (r *UserRepo) UpdateDetails(ctx context.Context, id uuid.UUID, fullName, email string) (*user.User, error) {
	return r.getOne(ctx, qUserUpdateDetails, id, fullName, email)
}

func (r *UserRepo) SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.exec(ctx, "set password", qUserSetPassword, id, hash)
}

func (r *UserRepo) SetRefreshToken(ctx context.Context, id uuid.UUID, token *string) error {
	return r.exec(ctx, "set refresh token", qUserSetRefresh, id, token)
}

func (r *UserRepo) SetAvatarURL(ctx context.Context, id uuid.UUID, url string) (*user.User, error) {
	return r.getOne(ctx, qUserSetAvatar, id, url)
}

func (r *UserRepo) SetCoverImageURL(ctx context.Context, id uuid.UUID, url string) (*user.User, error) {
	return r.getOne(ctx, qUserSetCover, id, url)
}

func (r *UserRepo) getOne(ctx context.Context, query string, args ...any) (*user.User, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var u user.User
	if err := scanUser(r.db.execQueryer(ctx).QueryRow(ctx, query, args...), &u); err != nil {
		return nil, mapScanErr("scan user", err)
	}
	return &u, nil
}

func (r *UserRepo) exec(ctx context.Context, op, query string, args ...any) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.execQueryer(ctx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row, out *user.User) error {
	return row.Scan(
		&out.ID, &out.Username, &out.Email, &out.FullName, &out.PasswordHash,
		&out.AvatarURL, &out.CoverImageURL, &out.RefreshToken,
		&out.CreatedAt, &out.UpdatedAt,
	)
}
