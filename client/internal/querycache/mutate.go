package querycache

import "context"

type effectKind int

const (
	effectInvalidate effectKind = iota
	effectRemove
)

// Effect is a cache change declared by a mutation and applied only when the
// mutation's remote write succeeds.
type Effect struct {
	kind   effectKind
	prefix Key
}

// InvalidateEffect marks entries under prefix stale.
func InvalidateEffect(prefix Key) Effect { return Effect{kind: effectInvalidate, prefix: prefix} }

// RemoveEffect deletes entries under prefix.
func RemoveEffect(prefix Key) Effect { return Effect{kind: effectRemove, prefix: prefix} }

// Apply runs effects in order.
func (c *Cache) Apply(effects ...Effect) {
	for _, e := range effects {
		switch e.kind {
		case effectInvalidate:
			c.Invalidate(e.prefix)
		case effectRemove:
			c.Remove(e.prefix)
		}
	}
}

// Mutate runs write and, on success, applies effects before returning. A
// failed write leaves the cache exactly as it was.
func Mutate[T any](ctx context.Context, c *Cache, write func(context.Context) (T, error), effects ...Effect) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}
	v, err := write(ctx)
	if err != nil {
		return v, err
	}
	c.Apply(effects...)
	return v, nil
}

// Exec is Mutate for writes that return nothing.
func Exec(ctx context.Context, c *Cache, write func(context.Context) error, effects ...Effect) error {
	_, err := Mutate(ctx, c, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, write(ctx)
	}, effects...)
	return err
}
