package smoketest

import "errors"

// Sentinel kinds for smoke run errors.
var (
	ErrStatus    = errors.New("unexpected status")
	ErrViolation = errors.New("view law violated")
	ErrFormat    = errors.New("unknown report format")
)
