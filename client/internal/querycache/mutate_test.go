package querycache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutateInvalidatesBeforeReturning(t *testing.T) {
	t.Parallel()
	c := New()
	key := NewKey("userMacros", "u1")
	server := []string{"lights"}
	fetch := func(context.Context) ([]string, error) {
		out := make([]string, len(server))
		copy(out, server)
		return out, nil
	}

	before, err := Read(context.Background(), c, key, fetch)
	require.NoError(t, err)
	require.Equal(t, []string{"lights"}, before)

	created, err := Mutate(context.Background(), c, func(context.Context) (string, error) {
		server = append(server, "music")
		return "music", nil
	}, InvalidateEffect(NewKey("userMacros", "u1")))
	require.NoError(t, err)
	assert.Equal(t, "music", created)

	_, stale, ok := c.Lookup(key)
	require.True(t, ok)
	assert.True(t, stale, "invalidation must be applied by the time Mutate returns")

	after, err := Read(context.Background(), c, key, fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{"lights", "music"}, after)
}

func TestMutateFailureLeavesCacheUntouched(t *testing.T) {
	t.Parallel()
	c := New()
	c.Set(NewKey("userMacros", "u1"), []string{"lights"})
	c.Set(NewKey("currentUser", "u1"), "u1")
	boom := errors.New("boom")

	err := Exec(context.Background(), c, func(context.Context) error { return boom },
		RemoveEffect(NewKey("userMacros", "u1")),
		RemoveEffect(NewKey("currentUser", "u1")),
	)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, c.Len())
	_, stale, _ := c.Lookup(NewKey("userMacros", "u1"))
	assert.False(t, stale)
}

func TestExecRemoveEffects(t *testing.T) {
	t.Parallel()
	c := New()
	c.Set(NewKey("userMacros", "u1"), []string{"lights"})
	c.Set(NewKey("currentUser", "u1"), "u1")
	c.Set(NewKey("actions"), []string{"lamp"})

	err := Exec(context.Background(), c, func(context.Context) error { return nil },
		RemoveEffect(NewKey("userMacros", "u1")),
		RemoveEffect(NewKey("currentUser", "u1")),
	)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
	_, _, ok := c.Lookup(NewKey("actions"))
	assert.True(t, ok)
}

func TestMutateCanceledContextSkipsWrite(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	_, err := Mutate(ctx, New(), func(context.Context) (int, error) {
		called = true
		return 1, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
