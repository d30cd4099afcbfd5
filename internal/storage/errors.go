package storage

import "errors"

// Errors shared by the event log and activity store implementations.
var (
	// ErrDuplicateKey is returned when an appended record reuses a stored
	// sequence or id. Stored records are never updated.
	ErrDuplicateKey = errors.New("duplicate key: append-only store does not allow updates")

	// ErrInvalidInput is returned when a record is nil or lacks its key.
	ErrInvalidInput = errors.New("invalid input")
)
