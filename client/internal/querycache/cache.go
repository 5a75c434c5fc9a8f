// Package querycache is a process-wide cache of remotely fetched values.
//
// Values are keyed by structured tuples (Key). A read returns a fresh entry if
// one exists, otherwise it runs the supplied fetcher; concurrent reads of the
// same key share a single in-flight fetch. Mutations declare which keys they
// invalidate (mark stale, refetch on next read) or remove (drop outright), and
// those effects are applied before the mutation returns to its caller.
//
// The cache never retries. A failed fetch is returned to every caller that
// waited on it and leaves no entry behind.
package querycache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrDisabled is returned by Read when the Enabled gate is false.
	// It means "not yet available", not that anything failed.
	ErrDisabled = errors.New("query disabled")

	// ErrEmptyKey is returned for reads and writes with a zero-length key.
	ErrEmptyKey = errors.New("empty cache key")
)

// IsDisabled reports whether err is the gate's "not yet available" result.
func IsDisabled(err error) bool { return errors.Is(err, ErrDisabled) }

// entry is one cached value.
type entry struct {
	value   any
	stale   bool
	updated time.Time
}

// slot tracks a key the cache has seen. gen increases on every invalidation,
// removal, or Set, so a fetch that started under an older generation cannot
// overwrite what happened after it began.
type slot struct {
	key   Key
	gen   uint64
	entry *entry
}

// Cache holds entries and coordinates in-flight fetches. The zero value is not
// usable; construct with New.
type Cache struct {
	mu    sync.Mutex
	slots map[string]*slot
	group singleflight.Group

	staleTime time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithStaleTime makes entries stale d after they were stored. Zero keeps
// entries fresh until a mutation invalidates them.
func WithStaleTime(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.staleTime = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger used for debug events.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Cache) { c.log = l }
}

// New returns an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		slots: make(map[string]*slot),
		now:   time.Now,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ReadOption configures a single Read.
type ReadOption func(*readOptions)

type readOptions struct {
	enabled bool
}

// Enabled gates the read. When false, Read returns ErrDisabled without
// touching the cache or calling the fetcher.
func Enabled(enabled bool) ReadOption {
	return func(o *readOptions) { o.enabled = enabled }
}

// Read returns the value for key, fetching it when there is no fresh entry.
//
// The fetcher runs detached from the caller's cancellation so that one caller
// giving up does not fail the others sharing the fetch; each caller still
// stops waiting when its own ctx is done.
func Read[T any](ctx context.Context, c *Cache, key Key, fetch func(context.Context) (T, error), opts ...ReadOption) (T, error) {
	var zero T
	o := readOptions{enabled: true}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.enabled {
		return zero, ErrDisabled
	}
	if len(key) == 0 {
		return zero, ErrEmptyKey
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	if v, ok := c.fresh(key); ok {
		hitsTotal.WithLabelValues(key.resource()).Inc()
		return cast[T](key, v)
	}
	missesTotal.WithLabelValues(key.resource()).Inc()

	ks := key.String()
	ch := c.group.DoChan(ks, func() (any, error) {
		gen := c.begin(key)
		fetchesTotal.WithLabelValues(key.resource()).Inc()
		v, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			fetchErrorsTotal.WithLabelValues(key.resource()).Inc()
			c.log.Debug().Err(err).Strs("key", key).Msg("cache fetch failed")
			return nil, err
		}
		c.store(key, v, gen)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return cast[T](key, res.Val)
	}
}

func cast[T any](key Key, v any) (T, error) {
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cache entry %v holds %T, not %T", []string(key), v, zero)
	}
	return t, nil
}

// fresh returns the entry value for key when it exists and is not stale.
func (c *Cache) fresh(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.slots[key.String()]
	if !ok || s.entry == nil || c.isStaleLocked(s.entry) {
		return nil, false
	}
	return s.entry.value, true
}

func (c *Cache) isStaleLocked(e *entry) bool {
	if e.stale {
		return true
	}
	return c.staleTime > 0 && c.now().Sub(e.updated) >= c.staleTime
}

// begin registers key and returns its current generation.
func (c *Cache) begin(key Key) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slotLocked(key).gen
}

// store saves a fetched value unless the key changed generation while the
// fetch was running.
func (c *Cache) store(key Key, v any, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.slotLocked(key)
	if s.gen != gen {
		c.log.Debug().Strs("key", key).Msg("discarding fetch superseded by a mutation")
		return
	}
	s.entry = &entry{value: v, updated: c.now()}
}

func (c *Cache) slotLocked(key Key) *slot {
	ks := key.String()
	s, ok := c.slots[ks]
	if !ok {
		s = &slot{key: NewKey(key...)}
		c.slots[ks] = s
	}
	return s
}

// Set stores v under key as a fresh entry, superseding any in-flight fetch.
func (c *Cache) Set(key Key, v any) {
	if len(key) == 0 {
		return
	}
	c.mu.Lock()
	s := c.slotLocked(key)
	s.gen++
	s.entry = &entry{value: v, updated: c.now()}
	c.mu.Unlock()
	c.group.Forget(key.String())
}

// Lookup returns the raw entry for key without fetching.
func (c *Cache) Lookup(key Key) (v any, stale bool, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, found := c.slots[key.String()]
	if !found || s.entry == nil {
		return nil, false, false
	}
	return s.entry.value, c.isStaleLocked(s.entry), true
}

// Len returns the number of stored entries, stale ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, s := range c.slots {
		if s.entry != nil {
			n++
		}
	}
	return n
}

// Invalidate marks every entry whose key starts with prefix as stale and
// detaches in-flight fetches for those keys, so the next Read fetches anew.
// It returns the number of entries marked.
func (c *Cache) Invalidate(prefix Key) int {
	return c.sweep(prefix, func(s *slot) bool {
		if s.entry == nil {
			return false
		}
		s.entry.stale = true
		invalidatedTotal.WithLabelValues(s.key.resource()).Inc()
		return true
	})
}

// Remove deletes every entry whose key starts with prefix and discards the
// results of in-flight fetches for those keys. It returns the number of
// entries deleted.
func (c *Cache) Remove(prefix Key) int {
	return c.sweep(prefix, func(s *slot) bool {
		if s.entry == nil {
			return false
		}
		s.entry = nil
		removedTotal.WithLabelValues(s.key.resource()).Inc()
		return true
	})
}

func (c *Cache) sweep(prefix Key, apply func(*slot) bool) int {
	var forget []string
	n := 0
	c.mu.Lock()
	for ks, s := range c.slots {
		if !s.key.HasPrefix(prefix) {
			continue
		}
		s.gen++
		if apply(s) {
			n++
		}
		forget = append(forget, ks)
	}
	c.mu.Unlock()

	for _, ks := range forget {
		c.group.Forget(ks)
	}
	c.log.Debug().Strs("prefix", prefix).Int("entries", n).Msg("cache sweep")
	return n
}
