package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/paul-bokelman/hem/client/internal/types"
)

// ListActions returns every built-in action.
func ListActions(ctx context.Context, hc types.HTTPClient, baseURL string) ([]types.Action, error) {
	var actions []types.Action
	err := do(ctx, hc, request{
		op:     "list actions",
		method: http.MethodGet,
		url:    fmt.Sprintf("%s/actions", baseURL),
		want:   http.StatusOK,
	}, &actions)
	if err != nil {
		return nil, err
	}
	if actions == nil {
		actions = []types.Action{}
	}
	return actions, nil
}

// CreateAction registers a new action. Requires the admin key.
func CreateAction(ctx context.Context, hc types.HTTPClient, baseURL, adminKey string, in types.ActionInput) (*types.Action, error) {
	if err := types.ValidateIDPresent(in.Name, "name"); err != nil {
		return nil, err
	}
	var action types.Action
	err := do(ctx, hc, request{
		op:       "create action",
		method:   http.MethodPost,
		url:      fmt.Sprintf("%s/actions", baseURL),
		body:     in,
		adminKey: adminKey,
		want:     http.StatusCreated,
	}, &action)
	if err != nil {
		return nil, err
	}
	return &action, nil
}

// EditAction updates an action's name and description. Requires the admin key.
func EditAction(ctx context.Context, hc types.HTTPClient, baseURL, adminKey, actionID string, in types.ActionInput) (*types.Action, error) {
	if err := types.ValidateIDPresent(actionID, "actionId"); err != nil {
		return nil, err
	}
	var action types.Action
	err := do(ctx, hc, request{
		op:       "edit action",
		method:   http.MethodPut,
		url:      fmt.Sprintf("%s/actions/%s", baseURL, url.PathEscape(actionID)),
		body:     in,
		adminKey: adminKey,
		want:     http.StatusOK,
	}, &action)
	if err != nil {
		return nil, err
	}
	return &action, nil
}

// DeleteAction removes an action. Requires the admin key.
func DeleteAction(ctx context.Context, hc types.HTTPClient, baseURL, adminKey, actionID string) error {
	if err := types.ValidateIDPresent(actionID, "actionId"); err != nil {
		return err
	}
	return do(ctx, hc, request{
		op:       "delete action",
		method:   http.MethodDelete,
		url:      fmt.Sprintf("%s/actions/%s", baseURL, url.PathEscape(actionID)),
		adminKey: adminKey,
		want:     http.StatusNoContent,
	}, nil)
}
