package repository

import "errors"

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
	// ErrConflict is returned when an optimistic update loses too many times
	// in a row.
	ErrConflict = errors.New("concurrent modification")
)
