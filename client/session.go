package client

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/paul-bokelman/hem/client/internal/identity"
	"github.com/paul-bokelman/hem/client/internal/querycache"
)

// Cache keys. The identity id is key material only for identity-owned data.
func userMacrosKey(userID string) querycache.Key { return querycache.NewKey("userMacros", userID) }

func actionsKey() querycache.Key { return querycache.NewKey("actions") }

// Session ties one device identity to a query cache. All identity-scoped
// operations use the identity resolved by Bootstrap.
type Session struct {
	client   *Client
	store    IdentityStore
	cache    *querycache.Cache
	resolver *identity.Resolver
	log      zerolog.Logger
}

type sessionConfig struct {
	store           IdentityStore
	log             zerolog.Logger
	staleTime       time.Duration
	confirmAttempts int
	retryInterval   time.Duration
	observe         func(from, to IdentityState)
}

// SessionOption configures NewSession.
type SessionOption func(*sessionConfig)

// WithStore persists the identity id in store. Without it the id lives in
// memory and every process start creates a new identity.
func WithStore(store IdentityStore) SessionOption {
	return func(c *sessionConfig) { c.store = store }
}

// WithLogger sets the session logger.
func WithLogger(l zerolog.Logger) SessionOption {
	return func(c *sessionConfig) { c.log = l }
}

// WithStaleTime makes cached reads refetch once older than d. Zero keeps
// entries fresh until a mutation invalidates them.
func WithStaleTime(d time.Duration) SessionOption {
	return func(c *sessionConfig) { c.staleTime = d }
}

// WithConfirmRetry bounds retries of transient failures while confirming a
// persisted identity. attempts includes the first try.
func WithConfirmRetry(attempts int, initialInterval time.Duration) SessionOption {
	return func(c *sessionConfig) {
		c.confirmAttempts = attempts
		c.retryInterval = initialInterval
	}
}

// WithStateObserver is called on every identity state change.
func WithStateObserver(fn func(from, to IdentityState)) SessionOption {
	return func(c *sessionConfig) { c.observe = fn }
}

// NewSession returns a session in the Unresolved state. Nothing is fetched
// until Bootstrap or an operation that needs the identity.
func NewSession(c *Client, opts ...SessionOption) *Session {
	if c == nil {
		panic("client cannot be nil")
	}
	cfg := sessionConfig{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.store == nil {
		cfg.store = NewMemoryStore("")
	}

	cache := querycache.New(
		querycache.WithStaleTime(cfg.staleTime),
		querycache.WithLogger(cfg.log),
	)

	observe := recordTransition
	if cfg.observe != nil {
		user := cfg.observe
		observe = func(from, to identity.State) {
			recordTransition(from, to)
			user(from, to)
		}
	}
	ropts := []identity.Option{
		identity.WithCache(cache),
		identity.WithLogger(cfg.log),
		identity.WithObserver(observe),
	}
	if cfg.confirmAttempts > 0 {
		ropts = append(ropts, identity.WithConfirmRetry(cfg.confirmAttempts, cfg.retryInterval))
	}

	return &Session{
		client:   c,
		store:    cfg.store,
		cache:    cache,
		resolver: identity.New(c, cfg.store, ropts...),
		log:      cfg.log,
	}
}

// Client returns the underlying REST client.
func (s *Session) Client() *Client { return s.client }

// --------------------------------------------------------------------
// Identity
// --------------------------------------------------------------------

// Bootstrap resolves the device identity, confirming a persisted id or
// creating a new one. It runs once per session; later calls return the same
// outcome. ctx bounds only this caller's wait.
func (s *Session) Bootstrap(ctx context.Context) (*User, error) {
	return s.resolver.Resolve(ctx)
}

// CurrentUser returns the resolved identity, if any.
func (s *Session) CurrentUser() (User, bool) { return s.resolver.Current() }

// State returns the identity state.
func (s *Session) State() IdentityState { return s.resolver.State() }

// Err returns the bootstrap failure, if the identity state is Failed.
func (s *Session) Err() error { return s.resolver.Err() }

func (s *Session) currentID() (string, error) {
	u, ok := s.resolver.Current()
	if !ok {
		return "", ErrUnresolved
	}
	return u.ID, nil
}

// DeleteIdentity deletes the current identity on the backend. On success the
// identity's cache entries are removed, the persisted id is cleared, and the
// session returns to Unresolved so the next Bootstrap creates a new identity.
// On failure nothing local changes.
func (s *Session) DeleteIdentity(ctx context.Context, userID string) error {
	cur, err := s.currentID()
	if err != nil {
		return err
	}
	if userID != cur {
		return fmt.Errorf("%w: delete %s, current %s", ErrIdentityMismatch, userID, cur)
	}

	err = querycache.Exec(ctx, s.cache,
		func(ctx context.Context) error { return s.client.DeleteUser(ctx, userID) },
		querycache.RemoveEffect(userMacrosKey(userID)),
		querycache.RemoveEffect(identity.CurrentUserKey(userID)),
	)
	if err != nil {
		return err
	}

	if err := s.store.Clear(ctx); err != nil {
		// A leftover id fails confirmation next start and a new identity is created.
		s.log.Error().Err(err).Str("user_id", userID).Msg("cannot clear persisted identity")
	}
	s.resolver.Reset()
	identityDeletionsTotal.Inc()
	s.log.Info().Str("user_id", userID).Msg("identity deleted")
	return nil
}

// --------------------------------------------------------------------
// Macros
// --------------------------------------------------------------------

// UserMacros returns the current identity's macros. Before the identity is
// resolved it returns ErrDisabled without contacting the backend.
func (s *Session) UserMacros(ctx context.Context) ([]Macro, error) {
	u, ok := s.resolver.Current()
	return querycache.Read(ctx, s.cache, userMacrosKey(u.ID),
		func(ctx context.Context) ([]Macro, error) { return s.client.ListUserMacros(ctx, u.ID) },
		querycache.Enabled(ok),
	)
}

// CreateMacro creates a macro owned by the current identity.
func (s *Session) CreateMacro(ctx context.Context, in MacroInput) (*Macro, error) {
	userID, err := s.currentID()
	if err != nil {
		return nil, err
	}
	return querycache.Mutate(ctx, s.cache,
		func(ctx context.Context) (*Macro, error) { return s.client.CreateMacro(ctx, userID, in) },
		querycache.InvalidateEffect(userMacrosKey(userID)),
	)
}

// EditMacro saves m, which must belong to the current identity.
func (s *Session) EditMacro(ctx context.Context, m Macro) (*Macro, error) {
	userID, err := s.currentID()
	if err != nil {
		return nil, err
	}
	in := InputFromMacro(m)
	return querycache.Mutate(ctx, s.cache,
		func(ctx context.Context) (*Macro, error) { return s.client.EditMacro(ctx, userID, m.ID, in) },
		querycache.InvalidateEffect(userMacrosKey(userID)),
	)
}

// DeleteMacro deletes macroID on behalf of userID.
func (s *Session) DeleteMacro(ctx context.Context, macroID, userID string) error {
	return querycache.Exec(ctx, s.cache,
		func(ctx context.Context) error { return s.client.DeleteMacro(ctx, userID, macroID) },
		querycache.InvalidateEffect(userMacrosKey(userID)),
	)
}

// --------------------------------------------------------------------
// Actions
// --------------------------------------------------------------------

// Actions returns the built-in actions.
func (s *Session) Actions(ctx context.Context) ([]Action, error) {
	return querycache.Read(ctx, s.cache, actionsKey(), s.client.ListActions)
}

// CreateAction adds an action. The client needs WithAdminKey.
func (s *Session) CreateAction(ctx context.Context, in ActionInput) (*Action, error) {
	return querycache.Mutate(ctx, s.cache,
		func(ctx context.Context) (*Action, error) { return s.client.CreateAction(ctx, in) },
		querycache.InvalidateEffect(actionsKey()),
	)
}

// EditAction updates actionID. The client needs WithAdminKey.
func (s *Session) EditAction(ctx context.Context, actionID string, in ActionInput) (*Action, error) {
	return querycache.Mutate(ctx, s.cache,
		func(ctx context.Context) (*Action, error) { return s.client.EditAction(ctx, actionID, in) },
		querycache.InvalidateEffect(actionsKey()),
	)
}

// DeleteAction removes actionID. The client needs WithAdminKey.
func (s *Session) DeleteAction(ctx context.Context, actionID string) error {
	return querycache.Exec(ctx, s.cache,
		func(ctx context.Context) error { return s.client.DeleteAction(ctx, actionID) },
		querycache.InvalidateEffect(actionsKey()),
	)
}

// --------------------------------------------------------------------
// Audio
// --------------------------------------------------------------------

// Respond sends a recording as the current identity and returns the reply audio.
func (s *Session) Respond(ctx context.Context, audio io.Reader, filename string) (*Audio, error) {
	userID, err := s.currentID()
	if err != nil {
		return nil, err
	}
	return s.client.Respond(ctx, userID, audio, filename)
}

// UploadAudio stores a recording as the current identity.
func (s *Session) UploadAudio(ctx context.Context, audio io.Reader, filename string) (*Upload, error) {
	userID, err := s.currentID()
	if err != nil {
		return nil, err
	}
	return s.client.UploadAudio(ctx, userID, audio, filename)
}
