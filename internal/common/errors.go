// Package common defines shared constants and sentinel errors used across
// the simplog server and client. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal         = errors.New("internal error")
	ErrorUnauthorized     = errors.New("unauthorized")
	ErrorValidation       = errors.New("validation error")
	ErrorConflict         = errors.New("conflict")
	ErrorAlreadyExists    = errors.New("already exists")
	ErrorIdentityMismatch = errors.New("identifiers don't match")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)

// Error carries a human-readable message on top of one of the sentinel
// kinds above. errors.Is(err, kind) holds for the wrapped kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// NewError returns an *Error of the given kind. An empty msg falls back to
// the kind's own text.
func NewError(kind error, msg string) error {
	if msg == "" {
		msg = kind.Error()
	}
	return &Error{Kind: kind, Message: msg}
}
