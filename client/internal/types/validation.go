package types

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ------------------------------
// Shared Interfaces
// ------------------------------

// HTTPClient interface for dependency injection
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ------------------------------
// Validation
// ------------------------------

// ValidateUserID reports whether id looks like a server-assigned identity id.
// The backend issues UUIDs and rejects anything else.
func ValidateUserID(id string) error {
	if id == "" {
		return fmt.Errorf("userId is required")
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("userId %q is not a valid id: %w", id, err)
	}
	return nil
}

// ValidateIDPresent ensures an id is non-empty after trimming.
func ValidateIDPresent(id, field string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}
