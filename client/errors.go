package client

import (
	"errors"

	"github.com/paul-bokelman/hem/client/internal/api"
	clienterrors "github.com/paul-bokelman/hem/client/internal/errors"
	"github.com/paul-bokelman/hem/client/internal/identity"
	"github.com/paul-bokelman/hem/client/internal/querycache"
)

var (
	// ErrUnresolved is returned by identity-scoped operations before an identity is resolved.
	ErrUnresolved = errors.New("identity not resolved")
	// ErrIdentityMismatch is returned when deleting an identity other than the current one.
	ErrIdentityMismatch = errors.New("identity does not match the current identity")
	// ErrAdminKeyRequired is returned by action writes when no admin key is configured.
	ErrAdminKeyRequired = errors.New("admin key required")
)

// Re-exported so callers compare against a single symbol.
var (
	ErrNotFound   = clienterrors.ErrNotFound
	ErrDisabled   = querycache.ErrDisabled
	ErrFailed     = identity.ErrFailed
	ErrEmptyAudio = api.ErrEmptyAudio
)

// ClassifiedError is the error type of every failed HTTP round trip.
type ClassifiedError = clienterrors.ClassifiedError

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool { return clienterrors.IsNotFound(err) }

// IsDisabled reports whether a read was skipped because its gate was closed.
func IsDisabled(err error) bool { return querycache.IsDisabled(err) }

// IsRecoverable reports whether err is transient (network, 408, 429, 5xx).
func IsRecoverable(err error) bool { return clienterrors.IsRecoverable(err) }

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int { return clienterrors.StatusCode(err) }
