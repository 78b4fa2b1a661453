package service

import "errors"

// Sentinels mapped to HTTP statuses at the API boundary. Wrap with
// fmt.Errorf("%w: reason") to attach a human-readable message.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation")
	ErrConflict        = errors.New("conflict")
)
