package localstate

import (
	"context"
	"sync"
)

// MemoryStore is a process-local identity store for tests and ephemeral sessions.
type MemoryStore struct {
	mu sync.Mutex
	id string
}

// NewMemoryStore returns a store preloaded with id (empty for none).
func NewMemoryStore(id string) *MemoryStore { return &MemoryStore{id: id} }

// Load returns the stored id, if any.
func (m *MemoryStore) Load(context.Context) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id, m.id != "", nil
}

// Save replaces the stored id.
func (m *MemoryStore) Save(_ context.Context, id string) error {
	m.mu.Lock()
	m.id = id
	m.mu.Unlock()
	return nil
}

// Clear removes the stored id.
func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	m.id = ""
	m.mu.Unlock()
	return nil
}
