package domain

import "errors"

var (
	// ErrNoWorkersAvailable means the pool is empty and could not be seeded.
	// Callers proceed without an owner.
	ErrNoWorkersAvailable = errors.New("no workers available")
	// ErrSequenceConflict means a concurrent insert took the same (base_key, sequence_number).
	// Retrying with a freshly computed number resolves it.
	ErrSequenceConflict = errors.New("sequence number conflict")
	// ErrConversionFailed wraps any failure inside the conversion transaction.
	ErrConversionFailed = errors.New("lead conversion failed")
	// ErrNotFound means the referenced record does not exist.
	ErrNotFound = errors.New("not found")
)
