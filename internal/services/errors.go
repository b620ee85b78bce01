package services

import "errors"

// ErrMissingFields is returned when a request omits required input.
var ErrMissingFields = errors.New("missing required fields")

// ErrInvalidID is returned when an identifier is not well formed, as
// opposed to well formed but not matching any document.
var ErrInvalidID = errors.New("invalid id format")

// ErrPasswordTooShort is returned when a registration password is under
// the minimum length.
var ErrPasswordTooShort = errors.New("password must be at least 6 characters long")

// ErrUsernameTaken and ErrEmailTaken signal registration conflicts.
var (
	ErrUsernameTaken = errors.New("username already exists")
	ErrEmailTaken    = errors.New("email already exists")
)

// UpstreamError wraps a failure from an external collaborator (asset
// storage or content generation). The operation it interrupted is aborted
// with nothing persisted.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
