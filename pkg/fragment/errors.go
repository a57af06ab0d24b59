package fragment

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownStore is returned when the configured store is not registered.
	ErrUnknownStore = errors.New("unknown cache store")

	// ErrNoRegistry is returned by New without a store registry.
	ErrNoRegistry = errors.New("store registry cannot be nil")

	// ErrUnrenderable is returned when a builder produces a value that has
	// no HTML form.
	ErrUnrenderable = errors.New("builder output is not renderable")

	// ErrCaptureClosed is returned when a Capture is ended twice.
	ErrCaptureClosed = errors.New("capture already ended")
)

// BackendError reports a failed administrative store operation.
type BackendError struct {
	Store     string
	Operation string
	Err       error
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	return fmt.Sprintf("fragment cache %s on store %q: %v", e.Operation, e.Store, e.Err)
}

// Unwrap returns the underlying error.
func (e *BackendError) Unwrap() error {
	return e.Err
}
