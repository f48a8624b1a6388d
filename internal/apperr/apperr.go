// Package apperr defines the error taxonomy shared by guards, stores and
// transports. Handlers map these onto HTTP statuses; anything unclassified is
// treated as an internal error and never leaks detail to the client.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks missing or malformed caller input (HTTP 400).
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an absent referenced record (HTTP 404).
	ErrNotFound = errors.New("not found")
	// ErrForbidden marks a cross-location access attempt (HTTP 403).
	ErrForbidden = errors.New("cross-location access denied")
	// ErrTimeout marks a bounded wait that elapsed (HTTP 504).
	ErrTimeout = errors.New("timed out")
	// ErrTransport marks a datagram send failure (HTTP 500).
	ErrTransport = errors.New("transport failure")
)

// Validationf wraps ErrValidation with a caller-visible message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

// NotFoundf wraps ErrNotFound with a caller-visible message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrNotFound}, args...)...)
}

// Transportf wraps ErrTransport with the underlying send error.
func Transportf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrTransport}, args...)...)
}
