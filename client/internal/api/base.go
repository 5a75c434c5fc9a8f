package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	clienterrors "github.com/paul-bokelman/hem/client/internal/errors"
	"github.com/paul-bokelman/hem/client/internal/types"
)

const (
	// HeaderUserID carries the anonymous identity on identity-scoped calls.
	HeaderUserID = "X-User-ID"
	// HeaderAdminKey carries the admin credential for action management.
	HeaderAdminKey = "X-Admin-Key"
)

// request describes one JSON round trip.
type request struct {
	op       string
	method   string
	url      string
	body     any // marshalled as JSON when non-nil
	userID   string
	adminKey string
	want     int
}

// do sends r and decodes a successful response into out (skipped when out is nil).
// Transport failures become recoverable classified errors; unexpected statuses are
// classified by code.
func do(ctx context.Context, hc types.HTTPClient, r request, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("%s: encode: %w", r.op, err)
		}
		body = bytes.NewReader(b)
	}
	httpReq, err := http.NewRequestWithContext(ctx, r.method, r.url, body)
	if err != nil {
		return err
	}
	if r.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	setIdentityHeaders(httpReq, r.userID, r.adminKey)

	resp, err := hc.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return clienterrors.NewNetworkError(r.op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != r.want {
		return clienterrors.FromResponse(resp, r.op)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode: %w", r.op, err)
	}
	return nil
}

func setIdentityHeaders(req *http.Request, userID, adminKey string) {
	if userID != "" {
		req.Header.Set(HeaderUserID, userID)
	}
	if adminKey != "" {
		req.Header.Set(HeaderAdminKey, adminKey)
	}
}
