package errors

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxBodySnippet bounds how much of an error body is kept for debugging.
const maxBodySnippet = 4 << 10

// ClassifyHTTPError determines whether an HTTP error should be retried.
// - 4xx client errors (except 408 and 429) are irrecoverable
// - 5xx server errors are recoverable
// - Network-level errors are recoverable
func ClassifyHTTPError(statusCode int, body string, underlyingErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:   getHTTPErrorCategory(statusCode),
		StatusCode: statusCode,
		Body:       body,
		Underlying: underlyingErr,
	}
}

// getHTTPErrorCategory maps HTTP status codes to error categories.
func getHTTPErrorCategory(statusCode int) ErrorCategory {
	switch {
	case statusCode >= 400 && statusCode < 500:
		switch statusCode {
		case http.StatusRequestTimeout, http.StatusTooManyRequests:
			return Recoverable
		default:
			return Irrecoverable
		}
	case statusCode >= 500 && statusCode < 600:
		return Recoverable
	default:
		// Unexpected status codes - be conservative and retry
		return Recoverable
	}
}

// NewHTTPError creates a classified error for HTTP failures.
func NewHTTPError(statusCode int, body string, operation string) *ClassifiedError {
	underlyingErr := fmt.Errorf("%s failed: HTTP %d", operation, statusCode)
	return ClassifyHTTPError(statusCode, body, underlyingErr)
}

// FromResponse reads a bounded snippet of resp.Body and classifies the failure.
// The caller still owns closing the body.
func FromResponse(resp *http.Response, operation string) *ClassifiedError {
	var body string
	if resp.Body != nil {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySnippet))
		body = strings.TrimSpace(string(b))
	}
	return NewHTTPError(resp.StatusCode, body, operation)
}

// NewNetworkError creates a classified error for network-level failures.
// Network errors are always recoverable as they may be transient.
func NewNetworkError(operation string, err error) *ClassifiedError {
	return &ClassifiedError{
		Category:   Recoverable,
		StatusCode: 0,
		Body:       "",
		Underlying: fmt.Errorf("%s network error: %w", operation, err),
	}
}
