package core

import "errors"

// Common errors.
var (
	// ErrNotFound is returned when a note does not exist in the store.
	ErrNotFound = errors.New("note not found")

	// ErrDuplicateCapture is returned when a capture's content hash is
	// already present in the store. This is the dedup guarantee surfacing.
	ErrDuplicateCapture = errors.New("capture already ingested")
)
