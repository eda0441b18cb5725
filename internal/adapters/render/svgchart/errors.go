package svgchart

import "errors"

// Sentinel kinds for chart rendering errors.
var (
	ErrEmpty         = errors.New("nothing to draw")
	ErrUnknownFormat = errors.New("unknown image format")
	ErrUnknownChart  = errors.New("unknown chart")
)
