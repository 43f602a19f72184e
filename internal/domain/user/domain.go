package user

import (
	"time"

	"github.com/google/uuid"
)

// User is the credential-store record. RefreshToken is the single live
// refresh slot: nil means no active session, and every successful
// login/refresh overwrites it, invalidating the prior token.
type User struct {
	ID            uuid.UUID
	Username      string
	Email         string
	FullName      string
	PasswordHash  string
	AvatarURL     string
	CoverImageURL string
	RefreshToken  *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Public is the profile shape that crosses the API boundary. It must
// never carry PasswordHash or RefreshToken.
type Public struct {
	ID            uuid.UUID `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	AvatarURL     string    `json:"avatarUrl,omitempty"`
	CoverImageURL string    `json:"coverImageUrl,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (u *User) Public() Public {
	return Public{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		CreatedAt:     u.CreatedAt,
	}
}
