package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a unique-key collision on insert.
	ErrConflict = errors.New("conflict")
	// ErrRetryable marks a transient storage failure (serialization, lock timeout).
	ErrRetryable = errors.New("retryable")
)
