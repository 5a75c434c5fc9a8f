package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPCategory(t *testing.T) {
	t.Parallel()
	cases := map[int]ErrorCategory{
		http.StatusBadRequest:          Irrecoverable,
		http.StatusUnauthorized:        Irrecoverable,
		http.StatusForbidden:           Irrecoverable,
		http.StatusNotFound:            Irrecoverable,
		http.StatusRequestTimeout:      Recoverable,
		http.StatusTooManyRequests:     Recoverable,
		http.StatusInternalServerError: Recoverable,
		http.StatusBadGateway:          Recoverable,
		http.StatusFound:               Recoverable,
	}
	for code, want := range cases {
		assert.Equal(t, want, NewHTTPError(code, "", "op").Category, "status %d", code)
	}
}

func TestNotFoundMatching(t *testing.T) {
	t.Parallel()
	err := fmt.Errorf("confirm: %w", NewHTTPError(http.StatusNotFound, "", "get user"))
	assert.True(t, IsNotFound(err))
	assert.True(t, stderrors.Is(err, ErrNotFound))
	assert.True(t, IsIrrecoverable(err))
	assert.False(t, IsRecoverable(err))
	assert.Equal(t, http.StatusNotFound, StatusCode(err))

	other := NewHTTPError(http.StatusForbidden, "", "get user")
	assert.False(t, IsNotFound(other))
}

func TestNetworkErrorIsRecoverable(t *testing.T) {
	t.Parallel()
	cause := stderrors.New("connection refused")
	err := NewNetworkError("get user", cause)
	assert.True(t, IsRecoverable(err))
	assert.False(t, IsNotFound(err))
	assert.ErrorIs(t, err, cause)
	assert.Zero(t, StatusCode(err))
	assert.Contains(t, err.Error(), "[Recoverable]")
}

func TestUnclassifiedErrors(t *testing.T) {
	t.Parallel()
	plain := stderrors.New("decode failed")
	assert.False(t, IsRecoverable(plain))
	assert.False(t, IsIrrecoverable(plain))
}

func TestFromResponse(t *testing.T) {
	t.Parallel()
	resp := &http.Response{
		StatusCode: http.StatusServiceUnavailable,
		Body:       io.NopCloser(strings.NewReader("  try later \n")),
	}
	err := FromResponse(resp, "list actions")
	require.NotNil(t, err)
	assert.Equal(t, "try later", err.Body)
	assert.Equal(t, Recoverable, err.Category)
	assert.Contains(t, err.Error(), "HTTP 503")
}

func TestCategoryString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Recoverable", Recoverable.String())
	assert.Equal(t, "Irrecoverable", Irrecoverable.String())
	assert.Equal(t, "Unknown(7)", ErrorCategory(7).String())
}
