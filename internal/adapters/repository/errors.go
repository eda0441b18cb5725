package repository

import "errors"

// Sentinel kinds for session store errors.
var (
	ErrNotFound        = errors.New("session not found")
	ErrInvalidID       = errors.New("invalid session id")
	ErrInvalidCapacity = errors.New("invalid session capacity")
)
