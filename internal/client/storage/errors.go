package storage

import (
	"errors"
	"fmt"
)

// Common client storage errors
var (
	// ErrAuthNotFound indicates that no authentication data exists
	ErrAuthNotFound = errors.New("authentication data not found")

	// ErrEntityNotFound indicates that the entity is absent from the local store
	ErrEntityNotFound = errors.New("entity not found")

	// ErrQueueItemNotFound indicates that the queue item was already removed
	ErrQueueItemNotFound = errors.New("queue item not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")

	// ErrStorageFailure is the kind of every local store I/O or codec error.
	// Match with errors.Is.
	ErrStorageFailure = errors.New("storage failure")

	// ErrMigrationNotFlushed indicates an attempt to drop a bucket that still holds data
	ErrMigrationNotFlushed = errors.New("bucket must be flushed before it is dropped")
)

// Error is a local store failure (quota, corruption, codec).
// It is never retried automatically and is surfaced to the caller as is.
type Error struct {
	Err error
	Op  string
}

// Fail wraps err as a storage failure of operation op.
// Sentinel "not found" errors are returned unwrapped.
func Fail(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrEntityNotFound) || errors.Is(err, ErrAuthNotFound) ||
		errors.Is(err, ErrQueueItemNotFound) || errors.Is(err, ErrStorageClosed) {
		return err
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Op: op, Err: err}
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes every *Error match ErrStorageFailure.
func (e *Error) Is(target error) bool {
	return target == ErrStorageFailure
}
