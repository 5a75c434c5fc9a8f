package api

import (
	"errors"
	"fmt"
	"net/http"

	clienterrors "github.com/paul-bokelman/hem/client/internal/errors"
)

// errRT is an http.RoundTripper that always returns an error (simulates network failure).
type errRT struct{}

func (e *errRT) RoundTrip(*http.Request) (*http.Response, error) { return nil, fmt.Errorf("boom") }

const testUserID = "3ea7a8b3-93b4-44d1-b18e-f0a5b76ae31c"

func asClassified(err error, target **clienterrors.ClassifiedError) bool {
	return errors.As(err, target)
}
