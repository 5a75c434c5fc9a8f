package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/paul-bokelman/hem/client/internal/types"
)

// CreateUser asks the backend for a fresh anonymous identity.
// The call is not idempotent; every success is a new user.
func CreateUser(ctx context.Context, hc types.HTTPClient, baseURL string) (*types.User, error) {
	var user types.User
	err := do(ctx, hc, request{
		op:     "create user",
		method: http.MethodPost,
		url:    fmt.Sprintf("%s/users", baseURL),
		want:   http.StatusCreated,
	}, &user)
	if err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(user.ID, "id"); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// GetUser confirms that a user exists. A missing user yields an error matching ErrNotFound.
func GetUser(ctx context.Context, hc types.HTTPClient, baseURL, userID string) (*types.User, error) {
	if err := types.ValidateIDPresent(userID, "userId"); err != nil {
		return nil, err
	}
	var user types.User
	err := do(ctx, hc, request{
		op:     "get user",
		method: http.MethodGet,
		url:    fmt.Sprintf("%s/users/%s", baseURL, url.PathEscape(userID)),
		want:   http.StatusOK,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes a user and, server side, everything it owns.
func DeleteUser(ctx context.Context, hc types.HTTPClient, baseURL, userID string) error {
	if err := types.ValidateIDPresent(userID, "userId"); err != nil {
		return err
	}
	return do(ctx, hc, request{
		op:     "delete user",
		method: http.MethodDelete,
		url:    fmt.Sprintf("%s/users/%s", baseURL, url.PathEscape(userID)),
		want:   http.StatusNoContent,
	}, nil)
}

// ListUserMacros returns the macros owned by userID.
func ListUserMacros(ctx context.Context, hc types.HTTPClient, baseURL, userID string) ([]types.Macro, error) {
	if err := types.ValidateIDPresent(userID, "userId"); err != nil {
		return nil, err
	}
	var macros []types.Macro
	err := do(ctx, hc, request{
		op:     "list user macros",
		method: http.MethodGet,
		url:    fmt.Sprintf("%s/users/%s/macros", baseURL, url.PathEscape(userID)),
		want:   http.StatusOK,
	}, &macros)
	if err != nil {
		return nil, err
	}
	if macros == nil {
		macros = []types.Macro{}
	}
	return macros, nil
}
