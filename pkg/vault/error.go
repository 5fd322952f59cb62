package vault

import "errors"

var (
	// ErrConflict is returned by Create when an artifact already exists.
	ErrConflict = errors.New("artifact already exists")

	// ErrNotFound is returned when an artifact does not exist.
	ErrNotFound = errors.New("artifact not found")

	// ErrInvalidPath is returned for paths that are not clean and relative.
	ErrInvalidPath = errors.New("invalid artifact path")
)
