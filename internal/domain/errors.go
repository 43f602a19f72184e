// Package domain holds the failure taxonomy shared by every usecase.
// Transport layers translate these sentinels into wire statuses; nothing
// below the controllers knows about HTTP.
package domain

import "errors"

var (
	// ErrValidation marks malformed or missing input. Wrap it with the
	// field-level detail: fmt.Errorf("%w: username is required", ErrValidation).
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when the addressed entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized means the caller is known but the credential check
	// failed (wrong password, stale refresh token).
	ErrUnauthorized = errors.New("invalid credentials")

	// ErrUnauthenticated means no usable identity accompanied the request.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrConflict marks a uniqueness collision (username or email taken).
	ErrConflict = errors.New("already exists")
)
