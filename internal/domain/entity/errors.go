package entity

import "errors"

var (
	// ErrValidation is returned for malformed input rejected before any write
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced record does not exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write loses a uniqueness or state race.
	// Generation absorbs it into a skipped outcome rather than failing.
	ErrConflict = errors.New("conflict")
)
