package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// ErrLoginBlocked is returned when the decision gate scores an attempt
	// at or above the block threshold. Surfaced to the client as a generic
	// authentication failure only.
	ErrLoginBlocked = errors.New("login blocked by risk engine")
)
