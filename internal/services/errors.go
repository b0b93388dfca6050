package services

import "errors"

// Error kinds surfaced by the arena core. Operations fail fast and
// synchronously; the transport layer maps each kind to a status code with
// errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrDuplicate    = errors.New("duplicate")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")
)
