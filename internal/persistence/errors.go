package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a unique constraint would be violated.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrOverlap is returned when an assignment would double-book a room for
	// at least one night of the stay.
	ErrOverlap = errors.New("persistence: overlapping assignment")
)
