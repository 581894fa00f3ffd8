package repository

import "errors"

var (
	// ErrNotFound is returned by mutations that target a row which does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when an insert collides with a unique row.
	ErrConflict = errors.New("conflict")
)
