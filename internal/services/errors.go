package services

import "errors"

// Sentinel errors translated to HTTP statuses by the handlers.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("invalid credentials")
	ErrForbidden     = errors.New("forbidden")
	ErrQuotaExceeded = errors.New("plan quota exceeded")
	ErrUnavailable   = errors.New("feature is not configured")
)
