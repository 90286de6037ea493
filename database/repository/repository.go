package repository

import "errors"

// Errors shared by the store implementations so callers can react without
// knowing the backing database.
var (
	// ErrConflict means a uniqueness constraint rejected the write.
	ErrConflict = errors.New("repository: conflicting record")
	// ErrStale means a conditional update matched no row because the record
	// changed underneath the caller.
	ErrStale = errors.New("repository: record changed concurrently")
)
