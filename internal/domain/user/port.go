package user

import (
	"context"

	"github.com/google/uuid"
)

type Repo interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	// GetByLogin resolves a user by username or email, case-insensitively.
	GetByLogin(ctx context.Context, login string) (*User, error)
	UpdateDetails(ctx context.Context, id uuid.UUID, fullName, email string) (*User, error)
	SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	// SetRefreshToken overwrites the single refresh slot; nil clears it.
	// Must be a single atomic write to the user row.
	SetRefreshToken(ctx context.Context, id uuid.UUID, token *string) error
	SetAvatarURL(ctx context.Context, id uuid.UUID, url string) (*User, error)
	SetCoverImageURL(ctx context.Context, id uuid.UUID, url string) (*User, error)
}
