package domain

import "errors"

var (
	// ErrValidation marks rejected user input (empty names, bad kinds).
	// The operation that returned it made no state change.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks an operation that referenced a deleted or unknown id.
	ErrNotFound = errors.New("not found")

	// ErrPersistence marks a failed load or save against the key-value store.
	// In-memory state is never rolled back because of it.
	ErrPersistence = errors.New("persistence error")
)
