// Package auth implements the session lifecycle: registration, login,
// token refresh with single-slot rotation, logout and password change.
package auth

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	authcore "github.com/streamgrid/streamgrid/internal/auth"
	"github.com/streamgrid/streamgrid/internal/domain"
	"github.com/streamgrid/streamgrid/internal/domain/user"
)

const minPasswordLen = 8

type Usecase struct {
	users  user.Repo
	codec  *authcore.Codec
	hasher authcore.PasswordHasher
}

func NewUsecase(users user.Repo, codec *authcore.Codec, hasher authcore.PasswordHasher) *Usecase {
	return &Usecase{users: users, codec: codec, hasher: hasher}
}

func normalizeLogin(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (u *Usecase) Register(ctx context.Context, username, email, fullName, password string) (*user.User, error) {
	username = normalizeLogin(username)
	email = normalizeLogin(email)
	fullName = strings.TrimSpace(fullName)

	switch {
	case username == "":
		return nil, fmt.Errorf("%w: username is required", domain.ErrValidation)
	case strings.ContainsAny(username, " \t@"):
		return nil, fmt.Errorf("%w: username must not contain spaces or '@'", domain.ErrValidation)
	case fullName == "":
		return nil, fmt.Errorf("%w: full name is required", domain.ErrValidation)
	case len(password) < minPasswordLen:
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLen)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", domain.ErrValidation)
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	rec := &user.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
	}
	if err := u.users.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Login authenticates by username or email. An unknown login surfaces as
// ErrNotFound while a wrong password surfaces as ErrUnauthorized; the two
// responses stay distinguishable on purpose. On success the freshly minted
// refresh token overwrites the user's single slot, ending any prior
// session for this account.
func (u *Usecase) Login(ctx context.Context, login, password string) (*user.User, string, string, error) {
	login = normalizeLogin(login)
	if login == "" || password == "" {
		return nil, "", "", fmt.Errorf("%w: login and password are required", domain.ErrValidation)
	}
	rec, err := u.users.GetByLogin(ctx, login)
	if err != nil {
		return nil, "", "", err
	}
	if !u.hasher.Verify(password, rec.PasswordHash) {
		return nil, "", "", domain.ErrUnauthorized
	}
	access, refresh, err := u.issueSession(ctx, rec)
	if err != nil {
		return nil, "", "", err
	}
	return rec, access, refresh, nil
}

// Authenticate resolves the user behind an access token. Every failure,
// including a deleted user, collapses to ErrUnauthenticated.
func (u *Usecase) Authenticate(ctx context.Context, accessToken string) (*user.User, error) {
	if accessToken == "" {
		return nil, domain.ErrUnauthenticated
	}
	sub, _, err := u.codec.Parse(accessToken, authcore.KindAccess)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}
	rec, err := u.users.GetByID(ctx, id)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}
	return rec, nil
}

// Refresh rotates the session. The presented token must verify against
// the refresh secret AND byte-equal the stored slot; a token replayed
// after rotation or logout fails the equality check. All failure modes
// collapse to ErrUnauthorized so a caller cannot probe which check broke.
func (u *Usecase) Refresh(ctx context.Context, raw string) (string, string, error) {
	if raw == "" {
		return "", "", domain.ErrUnauthorized
	}
	sub, _, err := u.codec.Parse(raw, authcore.KindRefresh)
	if err != nil {
		return "", "", domain.ErrUnauthorized
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return "", "", domain.ErrUnauthorized
	}
	rec, err := u.users.GetByID(ctx, id)
	if err != nil {
		return "", "", domain.ErrUnauthorized
	}
	if rec.RefreshToken == nil || *rec.RefreshToken != raw {
		return "", "", domain.ErrUnauthorized
	}
	return u.issueSession(ctx, rec)
}

// Logout clears the refresh slot. Clearing an already empty slot is a
// no-op, so repeated logouts succeed.
func (u *Usecase) Logout(ctx context.Context, userID uuid.UUID) error {
	return u.users.SetRefreshToken(ctx, userID, nil)
}

// ChangePassword verifies the old password before writing the new hash.
// A wrong old password returns ErrUnauthorized and leaves the stored
// credentials untouched.
func (u *Usecase) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLen)
	}
	rec, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !u.hasher.Verify(oldPassword, rec.PasswordHash) {
		return fmt.Errorf("%w: old password does not match", domain.ErrUnauthorized)
	}
	hash, err := u.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return u.users.SetPasswordHash(ctx, userID, hash)
}

func (u *Usecase) issueSession(ctx context.Context, rec *user.User) (string, string, error) {
	sub := rec.ID.String()
	access, err := u.codec.Mint(sub, authcore.KindAccess)
	if err != nil {
		return "", "", fmt.Errorf("mint access: %w", err)
	}
	refresh, err := u.codec.Mint(sub, authcore.KindRefresh)
	if err != nil {
		return "", "", fmt.Errorf("mint refresh: %w", err)
	}
	if err := u.users.SetRefreshToken(ctx, rec.ID, &refresh); err != nil {
		return "", "", fmt.Errorf("store refresh: %w", err)
	}
	return access, refresh, nil
}
