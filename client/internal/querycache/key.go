package querycache

import (
	"strconv"
	"strings"
)

// Key identifies one cached value as an ordered tuple, e.g. ("userMacros", userID).
// Invalidation and removal match keys by prefix, so the order of parts matters:
// put the resource name first and narrower scopes after it.
type Key []string

// NewKey builds a Key from its parts.
func NewKey(parts ...string) Key {
	k := make(Key, len(parts))
	copy(k, parts)
	return k
}

// HasPrefix reports whether the first len(prefix) parts of k equal prefix.
// An empty prefix matches every key.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i, p := range prefix {
		if k[i] != p {
			return false
		}
	}
	return true
}

// Equal reports whether k and other have identical parts.
func (k Key) Equal(other Key) bool {
	return len(k) == len(other) && k.HasPrefix(other)
}

// String returns a canonical, unambiguous encoding of k. Each part is
// length-prefixed so ("a:b") and ("a", "b") never collide. It is used as a map
// and in-flight key only and is never parsed back.
func (k Key) String() string {
	var b strings.Builder
	for _, p := range k {
		b.WriteString(strconv.Itoa(len(p)))
		b.WriteByte(':')
		b.WriteString(p)
		b.WriteByte(';')
	}
	return b.String()
}

// resource is the first part of k; it labels metrics.
func (k Key) resource() string {
	if len(k) == 0 {
		return ""
	}
	return k[0]
}
