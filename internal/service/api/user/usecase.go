// Package user serves the signed-in profile surface: account details,
// avatar and cover uploads, and the watch history read model.
package user

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/streamgrid/streamgrid/internal/domain"
	"github.com/streamgrid/streamgrid/internal/domain/history"
	domainuser "github.com/streamgrid/streamgrid/internal/domain/user"
	"github.com/streamgrid/streamgrid/internal/media"
)

const (
	avatarPrefix = "avatars"
	coverPrefix  = "covers"

	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

type Usecase struct {
	users   domainuser.Repo
	history history.Repo
	store   media.Store
}

func NewUsecase(users domainuser.Repo, hist history.Repo, store media.Store) *Usecase {
	return &Usecase{users: users, history: hist, store: store}
}

func (u *Usecase) UpdateDetails(ctx context.Context, id uuid.UUID, fullName, email string) (*domainuser.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))
	if fullName == "" {
		return nil, fmt.Errorf("%w: full name is required", domain.ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", domain.ErrValidation)
	}
	return u.users.UpdateDetails(ctx, id, fullName, email)
}

// UploadTarget is a presigned destination for one object upload.
type UploadTarget struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
}

func (u *Usecase) AvatarUploadURL(ctx context.Context) (*UploadTarget, error) {
	return u.presign(ctx, avatarPrefix)
}

func (u *Usecase) CoverUploadURL(ctx context.Context) (*UploadTarget, error) {
	return u.presign(ctx, coverPrefix)
}

func (u *Usecase) presign(ctx context.Context, prefix string) (*UploadTarget, error) {
	key := media.NewKey(prefix)
	url, err := u.store.PresignPut(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("presign %s: %w", prefix, err)
	}
	return &UploadTarget{UploadURL: url, Key: key}, nil
}

// CommitAvatar records an uploaded object as the user's avatar. The key
// must come from AvatarUploadURL; foreign prefixes are rejected.
func (u *Usecase) CommitAvatar(ctx context.Context, id uuid.UUID, key string) (*domainuser.User, error) {
	if !strings.HasPrefix(key, avatarPrefix+"/") {
		return nil, fmt.Errorf("%w: invalid avatar key", domain.ErrValidation)
	}
	return u.users.SetAvatarURL(ctx, id, u.store.ObjectURL(key))
}

func (u *Usecase) CommitCover(ctx context.Context, id uuid.UUID, key string) (*domainuser.User, error) {
	if !strings.HasPrefix(key, coverPrefix+"/") {
		return nil, fmt.Errorf("%w: invalid cover key", domain.ErrValidation)
	}
	return u.users.SetCoverImageURL(ctx, id, u.store.ObjectURL(key))
}

func (u *Usecase) WatchHistory(ctx context.Context, id uuid.UUID, limit int) ([]history.Entry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return u.history.ListByUser(ctx, id, limit)
}
