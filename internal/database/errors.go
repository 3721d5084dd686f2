package database

import "errors"

var (
	// ErrNotFound означает, что запись с таким id отсутствует.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail means the users UNIQUE(email) index rejected a write.
	ErrDuplicateEmail = errors.New("email already in use")

	// ErrUnknownState means a state filter token reached the store unresolved.
	ErrUnknownState = errors.New("unknown booking state filter")
)
