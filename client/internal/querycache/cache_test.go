package querycache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyPrefixAndString(t *testing.T) {
	t.Parallel()
	k := NewKey("userMacros", "u1")
	assert.True(t, k.HasPrefix(NewKey("userMacros")))
	assert.True(t, k.HasPrefix(NewKey("userMacros", "u1")))
	assert.True(t, k.HasPrefix(Key{}))
	assert.False(t, k.HasPrefix(NewKey("userMacros", "u2")))
	assert.False(t, k.HasPrefix(NewKey("userMacros", "u1", "x")))
	assert.True(t, k.Equal(NewKey("userMacros", "u1")))
	assert.False(t, k.Equal(NewKey("userMacros")))

	assert.NotEqual(t, NewKey("a:b").String(), NewKey("a", "b").String())
	assert.NotEqual(t, NewKey("ab").String(), NewKey("a", "b").String())
}

func TestNewKeyCopiesParts(t *testing.T) {
	t.Parallel()
	parts := []string{"actions"}
	k := NewKey(parts...)
	parts[0] = "mutated"
	assert.Equal(t, "actions", k[0])
}

func TestReadCachesUntilInvalidated(t *testing.T) {
	t.Parallel()
	c := New()
	key := NewKey("actions")
	var calls int32
	fetch := func(context.Context) ([]string, error) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			return []string{"lamp"}, nil
		}
		return []string{"lamp", "blinds"}, nil
	}

	v, err := Read(context.Background(), c, key, fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{"lamp"}, v)

	v, err = Read(context.Background(), c, key, fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{"lamp"}, v)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	assert.Equal(t, 1, c.Invalidate(NewKey("actions")))
	_, stale, ok := c.Lookup(key)
	require.True(t, ok)
	assert.True(t, stale)

	v, err = Read(context.Background(), c, key, fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{"lamp", "blinds"}, v)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestReadDisabledDoesNotFetch(t *testing.T) {
	t.Parallel()
	c := New()
	called := false
	_, err := Read(context.Background(), c, NewKey("userMacros", ""), func(context.Context) (int, error) {
		called = true
		return 1, nil
	}, Enabled(false))
	require.ErrorIs(t, err, ErrDisabled)
	assert.True(t, IsDisabled(err))
	assert.False(t, called)
	assert.Zero(t, c.Len())
}

func TestReadEmptyKey(t *testing.T) {
	t.Parallel()
	_, err := Read(context.Background(), New(), Key{}, func(context.Context) (int, error) { return 1, nil })
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestConcurrentReadsShareOneFetch(t *testing.T) {
	t.Parallel()
	c := New()
	key := NewKey("userMacros", "u1")
	started := make(chan struct{})
	release := make(chan struct{})
	var calls int32
	fetch := func(context.Context) (string, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
		}
		<-release
		return "shared", nil
	}

	const n = 16
	results := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = Read(context.Background(), c, key, fetch)
	}()
	<-started
	for i := 1; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = Read(context.Background(), c, key, fetch)
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "shared", results[i])
	}
}

func TestFetchErrorIsNotCached(t *testing.T) {
	t.Parallel()
	c := New()
	key := NewKey("actions")
	boom := errors.New("boom")
	var calls int32
	fetch := func(context.Context) (int, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return 0, boom
		}
		return 7, nil
	}

	_, err := Read(context.Background(), c, key, fetch)
	require.ErrorIs(t, err, boom)
	_, _, ok := c.Lookup(key)
	assert.False(t, ok)

	v, err := Read(context.Background(), c, key, fetch)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestInvalidateDuringFetchDiscardsResult(t *testing.T) {
	t.Parallel()
	c := New()
	key := NewKey("userMacros", "u1")
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan string)
	go func() {
		v, _ := Read(context.Background(), c, key, func(context.Context) (string, error) {
			close(started)
			<-release
			return "before", nil
		})
		done <- v
	}()
	<-started
	c.Invalidate(NewKey("userMacros", "u1"))

	// A read after the invalidation must not join the superseded fetch.
	v, err := Read(context.Background(), c, key, func(context.Context) (string, error) {
		return "after", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "after", v)

	close(release)
	assert.Equal(t, "before", <-done)

	got, stale, ok := c.Lookup(key)
	require.True(t, ok)
	assert.False(t, stale)
	assert.Equal(t, "after", got)
}

func TestRemoveDuringFetchLeavesNoEntry(t *testing.T) {
	t.Parallel()
	c := New()
	key := NewKey("currentUser", "u1")
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = Read(context.Background(), c, key, func(context.Context) (string, error) {
			close(started)
			<-release
			return "ghost", nil
		})
	}()
	<-started
	c.Remove(NewKey("currentUser"))
	close(release)
	<-done

	_, _, ok := c.Lookup(key)
	assert.False(t, ok)
}

func TestRemoveByPrefix(t *testing.T) {
	t.Parallel()
	c := New()
	c.Set(NewKey("userMacros", "u1"), 1)
	c.Set(NewKey("userMacros", "u2"), 2)
	c.Set(NewKey("currentUser", "u1"), 3)
	c.Set(NewKey("actions"), 4)

	assert.Equal(t, 1, c.Remove(NewKey("userMacros", "u1")))
	assert.Equal(t, 1, c.Remove(NewKey("currentUser")))
	assert.Equal(t, 2, c.Len())

	_, _, ok := c.Lookup(NewKey("userMacros", "u2"))
	assert.True(t, ok)
	_, _, ok = c.Lookup(NewKey("actions"))
	assert.True(t, ok)
	assert.Zero(t, c.Remove(NewKey("nothing")))
}

func TestCallerCancelDoesNotFailJoiners(t *testing.T) {
	t.Parallel()
	c := New()
	key := NewKey("actions")
	started := make(chan struct{})
	release := make(chan struct{})
	var fetchCtxErr atomic.Value
	fetch := func(ctx context.Context) (string, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			fetchCtxErr.Store(err)
		}
		return "ok", nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := Read(ctx, c, key, fetch)
		firstErr <- err
	}()
	<-started

	second := make(chan string, 1)
	go func() {
		v, _ := Read(context.Background(), c, key, fetch)
		second <- v
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)
	close(release)
	assert.Equal(t, "ok", <-second)
	assert.Nil(t, fetchCtxErr.Load())
}

func TestStaleTime(t *testing.T) {
	t.Parallel()
	now := time.Unix(1_700_000_000, 0)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		mu.Lock()
		now = now.Add(d)
		mu.Unlock()
	}

	c := New(WithStaleTime(time.Minute), WithClock(clock))
	key := NewKey("actions")
	var calls int32
	fetch := func(context.Context) (int32, error) { return atomic.AddInt32(&calls, 1), nil }

	v, err := Read(context.Background(), c, key, fetch)
	require.NoError(t, err)
	assert.EqualValues(t, 1, v)

	advance(30 * time.Second)
	v, _ = Read(context.Background(), c, key, fetch)
	assert.EqualValues(t, 1, v)

	advance(31 * time.Second)
	v, _ = Read(context.Background(), c, key, fetch)
	assert.EqualValues(t, 2, v)
}

func TestReadTypeMismatch(t *testing.T) {
	t.Parallel()
	c := New()
	key := NewKey("currentUser", "u1")
	c.Set(key, "a string")
	_, err := Read(context.Background(), c, key, func(context.Context) (int, error) { return 1, nil })
	assert.Error(t, err)
}

func TestSetSupersedesInFlightFetch(t *testing.T) {
	t.Parallel()
	c := New()
	key := NewKey("currentUser", "u1")
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = Read(context.Background(), c, key, func(context.Context) (string, error) {
			close(started)
			<-release
			return "fetched", nil
		})
	}()
	<-started
	c.Set(key, "set")
	close(release)
	<-done

	v, _, ok := c.Lookup(key)
	require.True(t, ok)
	assert.Equal(t, "set", v)
}
