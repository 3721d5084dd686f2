package service

import "errors"

// Error kinds. "Not found" covers both a missing record and an actor who is
// not allowed to see an existing record.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")

	// ErrUnsupportedState carries the exact message clients match on.
	ErrUnsupportedState = errors.New("Unknown state: UNSUPPORTED_STATUS")
)
