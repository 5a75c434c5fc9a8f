package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/paul-bokelman/hem/client/internal/types"
)

// The backend authorizes macro writes by the X-User-ID header, so the owner
// travels out of band rather than in the payload.

// CreateMacro creates a macro owned by userID.
func CreateMacro(ctx context.Context, hc types.HTTPClient, baseURL, userID string, in types.MacroInput) (*types.Macro, error) {
	if err := types.ValidateIDPresent(userID, "userId"); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(in.Name, "name"); err != nil {
		return nil, err
	}
	var macro types.Macro
	err := do(ctx, hc, request{
		op:     "create macro",
		method: http.MethodPost,
		url:    fmt.Sprintf("%s/macros", baseURL),
		body:   normalizeInput(in),
		userID: userID,
		want:   http.StatusCreated,
	}, &macro)
	if err != nil {
		return nil, err
	}
	return &macro, nil
}

// EditMacro replaces the editable fields of macroID.
func EditMacro(ctx context.Context, hc types.HTTPClient, baseURL, userID, macroID string, in types.MacroInput) (*types.Macro, error) {
	if err := types.ValidateIDPresent(userID, "userId"); err != nil {
		return nil, err
	}
	if err := types.ValidateIDPresent(macroID, "macroId"); err != nil {
		return nil, err
	}
	var macro types.Macro
	err := do(ctx, hc, request{
		op:     "edit macro",
		method: http.MethodPut,
		url:    fmt.Sprintf("%s/macros/%s", baseURL, url.PathEscape(macroID)),
		body:   normalizeInput(in),
		userID: userID,
		want:   http.StatusOK,
	}, &macro)
	if err != nil {
		return nil, err
	}
	return &macro, nil
}

// DeleteMacro removes macroID. userID must be the owner.
func DeleteMacro(ctx context.Context, hc types.HTTPClient, baseURL, userID, macroID string) error {
	if err := types.ValidateIDPresent(userID, "userId"); err != nil {
		return err
	}
	if err := types.ValidateIDPresent(macroID, "macroId"); err != nil {
		return err
	}
	return do(ctx, hc, request{
		op:     "delete macro",
		method: http.MethodDelete,
		url:    fmt.Sprintf("%s/macros/%s", baseURL, url.PathEscape(macroID)),
		userID: userID,
		want:   http.StatusNoContent,
	}, nil)
}

// normalizeInput sends [] instead of null so the backend clears required actions.
func normalizeInput(in types.MacroInput) types.MacroInput {
	if in.RequiredActions == nil {
		in.RequiredActions = []string{}
	}
	return in
}
