package client

import (
	"context"

	"github.com/paul-bokelman/hem/client/internal/localstate"
)

// OpenStateStore opens the SQLite identity store under dir. An empty dir
// means HEM_STATE_HOME, falling back to ~/.hem. The caller closes the store.
func OpenStateStore(ctx context.Context, dir string) (*SQLiteStore, error) {
	path, err := localstate.DBPath(dir)
	if err != nil {
		return nil, err
	}
	return localstate.OpenSQLiteStore(ctx, path)
}

// NewMemoryStore returns an identity store that lives only as long as the
// process, preloaded with id (empty for none).
func NewMemoryStore(id string) *MemoryStore { return localstate.NewMemoryStore(id) }
