package source

import "errors"

// Sentinel kinds for loader errors.
var (
	ErrMissingColumn  = errors.New("missing column")
	ErrMalformed      = errors.New("malformed input")
	ErrFetch          = errors.New("fetch failed")
	ErrUnexpectedCode = errors.New("unexpected status code")
	ErrEmptyLocation  = errors.New("empty location")
)
