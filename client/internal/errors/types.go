// Package errors provides error classification for the client SDK.
// It lets callers tell "the server said no" apart from "the request never landed".
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrNotFound matches any classified error carrying HTTP 404.
var ErrNotFound = stderrors.New("not found")

// ErrorCategory determines how errors should be handled by retry logic.
type ErrorCategory int

const (
	// Recoverable errors may succeed if the same request is sent again.
	// Examples: 500 Internal Server Error, network timeouts, connection failures.
	Recoverable ErrorCategory = iota

	// Irrecoverable errors fail the same way on every attempt.
	// Examples: 401 Unauthorized, 403 Forbidden, 404 Not Found.
	Irrecoverable
)

// String returns a human-readable representation of the error category.
func (c ErrorCategory) String() string {
	switch c {
	case Recoverable:
		return "Recoverable"
	case Irrecoverable:
		return "Irrecoverable"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// ClassifiedError wraps an error with categorization metadata for retry policies.
type ClassifiedError struct {
	Category   ErrorCategory
	StatusCode int    // HTTP status code (0 for non-HTTP errors)
	Body       string // Response body for debugging
	Underlying error  // The original error
}

// Error implements the error interface.
func (e *ClassifiedError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%s] HTTP %d: %v", e.Category, e.StatusCode, e.Underlying)
	}
	return fmt.Sprintf("[%s] %v", e.Category, e.Underlying)
}

// Unwrap returns the underlying error for error chain compatibility.
func (e *ClassifiedError) Unwrap() error {
	return e.Underlying
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *ClassifiedError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// IsIrrecoverable returns true if the error should not be retried.
func IsIrrecoverable(err error) bool {
	var classified *ClassifiedError
	if stderrors.As(err, &classified) {
		return classified.Category == Irrecoverable
	}
	return false
}

// IsRecoverable returns true only for classified errors marked Recoverable.
// Unclassified errors (validation, decoding) are not considered recoverable.
func IsRecoverable(err error) bool {
	var classified *ClassifiedError
	if stderrors.As(err, &classified) {
		return classified.Category == Recoverable
	}
	return false
}

// IsNotFound reports whether err carries an HTTP 404.
func IsNotFound(err error) bool { return stderrors.Is(err, ErrNotFound) }

// StatusCode extracts the HTTP status from a classified error, or 0.
func StatusCode(err error) int {
	var classified *ClassifiedError
	if stderrors.As(err, &classified) {
		return classified.StatusCode
	}
	return 0
}
