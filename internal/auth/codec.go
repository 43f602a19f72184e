package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrTokenInvalid = errors.New("invalid token")

// Kind selects which secret and lifetime a token is minted and verified
// with. Access and refresh tokens are never interchangeable: each kind
// has its own secret, and the kind marker is part of the signed claims.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

type CodecConfig struct {
	AccessSecret  []byte
	AccessTTL     time.Duration
	RefreshSecret []byte
	RefreshTTL    time.Duration
	Now           func() time.Time
}

// Codec mints and parses the two token kinds. Config is read-only after
// construction; secrets are process-lifetime state, never rotated live.
type Codec struct {
	cfg CodecConfig
}

func NewCodec(cfg CodecConfig) *Codec {
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Codec{cfg: cfg}
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Kind Kind `json:"knd"`
}

func (c *Codec) secret(kind Kind) []byte {
	if kind == KindRefresh {
		return c.cfg.RefreshSecret
	}
	return c.cfg.AccessSecret
}

func (c *Codec) ttl(kind Kind) time.Duration {
	if kind == KindRefresh {
		return c.cfg.RefreshTTL
	}
	return c.cfg.AccessTTL
}

// Mint signs a token of the given kind for subject. The jti claim makes
// every mint unique even with identical subject and timestamps, so a
// rotated pair never equals its predecessor.
func (c *Codec) Mint(subject string, kind Kind) (string, error) {
	now := c.cfg.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl(kind))),
		},
		Kind: kind,
	})
	return tok.SignedString(c.secret(kind))
}

// Parse verifies signature, expiry and structural shape. Any failure is
// reported as ErrTokenInvalid; callers must not learn which check broke.
func (c *Codec) Parse(token string, kind Kind) (subject string, expiresAt time.Time, err error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return c.secret(kind), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.cfg.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return "", time.Time{}, ErrTokenInvalid
	}
	if claims.Kind != kind || claims.Subject == "" {
		return "", time.Time{}, ErrTokenInvalid
	}
	return claims.Subject, claims.ExpiresAt.Time, nil
}
