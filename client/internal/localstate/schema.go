package localstate

import (
	"context"
	"database/sql"
)

// EnsureSchema creates the local state tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS LocalState (
            StateKey TEXT PRIMARY KEY,
            Value TEXT NOT NULL,
            UpdatedTime TIMESTAMP NOT NULL
        );`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
