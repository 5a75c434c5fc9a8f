// Package identity resolves the anonymous per-device user.
//
// On first use the Resolver reads the persisted id; a persisted id is confirmed
// against the backend and adopted, anything else leads to a freshly created
// identity whose id is persisted. The bootstrap runs at most once per session:
// every concurrent or later caller shares its outcome until Reset.
package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	clienterrors "github.com/paul-bokelman/hem/client/internal/errors"
	"github.com/paul-bokelman/hem/client/internal/querycache"
	"github.com/paul-bokelman/hem/client/internal/types"
)

// ErrFailed wraps the cause of a bootstrap that ended in the Failed state.
var ErrFailed = errors.New("identity bootstrap failed")

// State is a step of the resolution state machine.
type State int

const (
	Unresolved State = iota
	Resolving
	Resolved
	Failed
)

func (s State) String() string {
	switch s {
	case Unresolved:
		return "unresolved"
	case Resolving:
		return "resolving"
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Remote is the slice of the REST API the resolver needs.
type Remote interface {
	CreateUser(ctx context.Context) (*types.User, error)
	GetUser(ctx context.Context, userID string) (*types.User, error)
}

// Store persists the identity id on this device.
type Store interface {
	Load(ctx context.Context) (id string, ok bool, err error)
	Save(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

// CurrentUserKey is the cache key holding the resolved user.
func CurrentUserKey(userID string) querycache.Key {
	return querycache.NewKey("currentUser", userID)
}

// run is one bootstrap attempt. done is closed once user/err are final.
type run struct {
	done chan struct{}
	user *types.User
	err  error
}

// Resolver owns the current identity.
type Resolver struct {
	remote Remote
	store  Store
	cache  *querycache.Cache
	log    zerolog.Logger

	confirmAttempts int
	retryInterval   time.Duration
	observe         func(from, to State)

	mu      sync.Mutex
	state   State
	user    *types.User
	err     error
	current *run
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCache seeds ("currentUser", id) whenever an identity is adopted.
func WithCache(c *querycache.Cache) Option {
	return func(r *Resolver) { r.cache = c }
}

// WithLogger sets the logger for bootstrap events.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Resolver) { r.log = l }
}

// WithConfirmRetry bounds how often a transient confirmation failure is retried.
// attempts counts the first try; values below 1 are treated as 1.
func WithConfirmRetry(attempts int, initialInterval time.Duration) Option {
	return func(r *Resolver) {
		if attempts < 1 {
			attempts = 1
		}
		r.confirmAttempts = attempts
		if initialInterval > 0 {
			r.retryInterval = initialInterval
		}
	}
}

// WithObserver registers a callback invoked on every state change, outside
// the resolver's lock.
func WithObserver(fn func(from, to State)) Option {
	return func(r *Resolver) { r.observe = fn }
}

// New returns a resolver in the Unresolved state.
func New(remote Remote, store Store, opts ...Option) *Resolver {
	r := &Resolver{
		remote:          remote,
		store:           store,
		log:             zerolog.Nop(),
		confirmAttempts: 3,
		retryInterval:   200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the current state.
func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Current returns the resolved identity, if any.
func (r *Resolver) Current() (types.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != Resolved || r.user == nil {
		return types.User{}, false
	}
	return *r.user, true
}

// Err returns the failure that moved the resolver to Failed, or nil.
func (r *Resolver) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Set adopts u as the current identity without touching the backend or local
// persistence. A bootstrap still in flight is superseded.
func (r *Resolver) Set(u types.User) {
	r.mu.Lock()
	from := r.state
	r.current = nil
	r.state = Resolved
	r.user = &u
	r.err = nil
	r.mu.Unlock()

	r.seed(u)
	r.transition(from, Resolved)
}

// Reset returns to Unresolved so the next Resolve bootstraps again. Callers
// waiting on an in-flight bootstrap still receive its outcome, but that
// outcome is no longer adopted.
func (r *Resolver) Reset() {
	r.mu.Lock()
	from := r.state
	r.current = nil
	r.state = Unresolved
	r.user = nil
	r.err = nil
	r.mu.Unlock()

	r.transition(from, Unresolved)
}

// Resolve returns the current identity, running the bootstrap if nothing has
// been resolved yet this session. The bootstrap itself is detached from ctx
// cancellation; ctx only bounds how long this caller waits.
func (r *Resolver) Resolve(ctx context.Context) (*types.User, error) {
	r.mu.Lock()
	switch r.state {
	case Resolved:
		u := *r.user
		r.mu.Unlock()
		return &u, nil
	case Failed:
		err := r.err
		r.mu.Unlock()
		return nil, err
	}

	cur := r.current
	started := false
	if cur == nil {
		cur = &run{done: make(chan struct{})}
		r.current = cur
		r.state = Resolving
		started = true
	}
	r.mu.Unlock()

	if started {
		r.transition(Unresolved, Resolving)
		go r.execute(context.WithoutCancel(ctx), cur)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-cur.done:
	}
	if cur.err != nil {
		return nil, cur.err
	}
	u := *cur.user
	return &u, nil
}

func (r *Resolver) execute(ctx context.Context, cur *run) {
	user, err := r.bootstrap(ctx)

	r.mu.Lock()
	adopted := r.current == cur
	to := Resolved
	if adopted {
		r.current = nil
		if err != nil {
			to = Failed
			r.state = Failed
			r.err = err
		} else {
			r.state = Resolved
			r.user = user
		}
	}
	cur.user, cur.err = user, err
	r.mu.Unlock()
	defer close(cur.done)

	if !adopted {
		r.log.Debug().Msg("identity bootstrap superseded; result discarded")
		return
	}
	if err != nil {
		r.log.Error().Err(err).Msg("identity bootstrap failed")
	} else {
		r.seed(*user)
		r.log.Info().Str("user_id", user.ID).Msg("identity resolved")
	}
	r.transition(Resolving, to)
}

// bootstrap implements confirm-or-create.
func (r *Resolver) bootstrap(ctx context.Context) (*types.User, error) {
	id, ok, err := r.store.Load(ctx)
	if err != nil {
		r.log.Warn().Err(err).Msg("cannot read persisted identity; treating as absent")
		ok = false
	}
	if ok {
		if verr := types.ValidateUserID(id); verr != nil {
			r.log.Warn().Err(verr).Msg("persisted identity is malformed; treating as absent")
			ok = false
		}
	}

	if ok {
		u, err := r.confirm(ctx, id)
		switch {
		case err == nil:
			if u.ID == "" {
				u.ID = id
			}
			return u, nil
		case clienterrors.IsRecoverable(err):
			// Creating here could leave the device with several identities
			// when the network is flaky. Keep the persisted id for next time.
			return nil, fmt.Errorf("%w: confirm identity %s: %w", ErrFailed, id, err)
		default:
			r.log.Info().Err(err).Str("user_id", id).Msg("persisted identity not confirmed; creating a new one")
		}
	}

	u, err := r.remote.CreateUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create identity: %w", ErrFailed, err)
	}
	if err := r.store.Save(ctx, u.ID); err != nil {
		// The identity is usable for this session; only the next start is affected.
		r.log.Error().Err(err).Str("user_id", u.ID).Msg("cannot persist new identity")
	}
	return u, nil
}

// confirm checks that id still exists, retrying only recoverable failures.
func (r *Resolver) confirm(ctx context.Context, id string) (*types.User, error) {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = r.retryInterval
	exp.Multiplier = 2
	exp.MaxInterval = 5 * time.Second
	exp.Reset()

	b := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(r.confirmAttempts-1)), ctx)

	op := func() (*types.User, error) {
		u, err := r.remote.GetUser(ctx, id)
		if err != nil && !clienterrors.IsRecoverable(err) {
			return nil, backoff.Permanent(err)
		}
		return u, err
	}
	notify := func(err error, wait time.Duration) {
		r.log.Warn().Err(err).Str("user_id", id).Dur("retry_in", wait).Msg("identity confirmation failed; retrying")
	}
	return backoff.RetryNotifyWithData(op, b, notify)
}

func (r *Resolver) seed(u types.User) {
	if r.cache != nil {
		r.cache.Set(CurrentUserKey(u.ID), u)
	}
}

func (r *Resolver) transition(from, to State) {
	if r.observe != nil && from != to {
		r.observe(from, to)
	}
}
