package store

import (
	"errors"
	"fmt"
)

// StoreError wraps any failure originating in the persistent store: disk,
// schema, constraint, or I/O. It is fatal to the calling operation and is
// never retried automatically.
type StoreError struct {
	// Op names the store operation that failed ("upsert exact", "scan
	// ranges", ...).
	Op string

	// Err is the underlying driver error.
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsStoreError reports whether err is (or wraps) a StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

// storeErr wraps a driver error with the failing operation name. Returns
// nil when err is nil so callers can wrap unconditionally.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
