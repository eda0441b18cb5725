package colorscale

import "errors"

// Sentinel kinds for color errors.
var (
	ErrInvalidColor = errors.New("invalid color")
)
