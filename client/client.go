package client

import (
	"context"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/paul-bokelman/hem/client/internal/api"
)

// DefaultUserAgent is sent when WithUserAgent is not used.
const DefaultUserAgent = "hem-go-client"

// --------------------------------------------------------------------
// Client core
// --------------------------------------------------------------------

// Client is a thin wrapper over the assistant REST API. It holds no
// identity or cache state; see Session for that.
type Client struct {
	baseURL   string
	http      *http.Client
	adminKey  string // action management credential, optional
	userAgent string
	transport http.RoundTripper
	debug     bool

	closedOnce uint32 // ensures Close is idempotent
}

// New constructs a Client for baseURL. It panics on an empty baseURL or an
// invalid option.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		panic("baseURL cannot be empty")
	}

	c := &Client{
		baseURL:   baseURL,
		userAgent: DefaultUserAgent,
		http:      &http.Client{Timeout: 30 * time.Second},
	}

	// Auto-enable debug via env variable without changing code.
	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			panic(err)
		}
	}

	c.installTransport()
	return c
}

// installTransport builds base -> debug -> user agent.
func (c *Client) installTransport() {
	base := c.transport
	if base == nil {
		base = http.DefaultTransport
	}
	if c.debug {
		base = &debugTransport{base: base}
	}
	c.http.Transport = &userAgentTransport{base: base, userAgent: c.userAgent}
}

// userAgentTransport stamps the User-Agent header on every request.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	cloned := req.Clone(req.Context())
	cloned.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(cloned)
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Close releases idle connections. Safe to call multiple times.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapUint32(&c.closedOnce, 0, 1) {
		return nil
	}
	c.http.CloseIdleConnections()
	return nil
}

func (c *Client) requireAdmin() error {
	if c.adminKey == "" {
		return ErrAdminKeyRequired
	}
	return nil
}

// --------------------------------------------------------------------
// User operations
// --------------------------------------------------------------------

// CreateUser creates a fresh anonymous identity.
func (c *Client) CreateUser(ctx context.Context) (*User, error) {
	return api.CreateUser(ctx, c.http, c.baseURL)
}

// GetUser confirms that userID exists. A missing user matches ErrNotFound.
func (c *Client) GetUser(ctx context.Context, userID string) (*User, error) {
	return api.GetUser(ctx, c.http, c.baseURL, userID)
}

// DeleteUser deletes userID and everything it owns server side.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	return api.DeleteUser(ctx, c.http, c.baseURL, userID)
}

// ListUserMacros returns the macros owned by userID.
func (c *Client) ListUserMacros(ctx context.Context, userID string) ([]Macro, error) {
	return api.ListUserMacros(ctx, c.http, c.baseURL, userID)
}

// --------------------------------------------------------------------
// Action operations
// --------------------------------------------------------------------

// ListActions returns every built-in action.
func (c *Client) ListActions(ctx context.Context) ([]Action, error) {
	return api.ListActions(ctx, c.http, c.baseURL)
}

// CreateAction adds an action. Requires WithAdminKey.
func (c *Client) CreateAction(ctx context.Context, in ActionInput) (*Action, error) {
	if err := c.requireAdmin(); err != nil {
		return nil, err
	}
	return api.CreateAction(ctx, c.http, c.baseURL, c.adminKey, in)
}

// EditAction updates actionID. Requires WithAdminKey.
func (c *Client) EditAction(ctx context.Context, actionID string, in ActionInput) (*Action, error) {
	if err := c.requireAdmin(); err != nil {
		return nil, err
	}
	return api.EditAction(ctx, c.http, c.baseURL, c.adminKey, actionID, in)
}

// DeleteAction removes actionID. Requires WithAdminKey.
func (c *Client) DeleteAction(ctx context.Context, actionID string) error {
	if err := c.requireAdmin(); err != nil {
		return err
	}
	return api.DeleteAction(ctx, c.http, c.baseURL, c.adminKey, actionID)
}

// --------------------------------------------------------------------
// Macro operations
// --------------------------------------------------------------------

// CreateMacro creates a macro owned by userID.
func (c *Client) CreateMacro(ctx context.Context, userID string, in MacroInput) (*Macro, error) {
	return api.CreateMacro(ctx, c.http, c.baseURL, userID, in)
}

// EditMacro replaces the editable fields of macroID.
func (c *Client) EditMacro(ctx context.Context, userID, macroID string, in MacroInput) (*Macro, error) {
	return api.EditMacro(ctx, c.http, c.baseURL, userID, macroID, in)
}

// DeleteMacro deletes macroID on behalf of its owner userID.
func (c *Client) DeleteMacro(ctx context.Context, userID, macroID string) error {
	return api.DeleteMacro(ctx, c.http, c.baseURL, userID, macroID)
}

// --------------------------------------------------------------------
// Audio operations
// --------------------------------------------------------------------

// Respond sends a recording to the assistant and returns its spoken reply.
// An empty filename defaults to DefaultRecordingName.
func (c *Client) Respond(ctx context.Context, userID string, audio io.Reader, filename string) (*Audio, error) {
	return api.Respond(ctx, c.http, c.baseURL, userID, audio, filename)
}

// UploadAudio stores a recording without processing it.
func (c *Client) UploadAudio(ctx context.Context, userID string, audio io.Reader, filename string) (*Upload, error) {
	return api.UploadAudio(ctx, c.http, c.baseURL, userID, audio, filename)
}
