// Package localstate persists the device's identity id between runs.
package localstate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// userIDKey is the fixed key under which the identity id is stored.
const userIDKey = "userId"

// Open opens (or creates) a SQLite database at the given path and enables WAL journal mode.
func Open(path string) (*sql.DB, error) {
	// ensure parent directory exists to avoid SQLITE_CANTOPEN errors
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// Simple ping to verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// SQLiteStore keeps the identity id in a single-row key/value table.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLiteStore opens the database at path and prepares its schema.
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("open local state %s: %w", path, err)
	}
	// One connection keeps read-modify-write on the single row serialized.
	db.SetMaxOpenConns(1)
	if err := EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("local state schema: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Load returns the persisted identity id, if any.
func (s *SQLiteStore) Load(ctx context.Context) (string, bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT Value FROM LocalState WHERE StateKey = ?`, userIDKey).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, id != "", nil
}

// Save persists id, overwriting any previous value.
func (s *SQLiteStore) Save(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO LocalState (StateKey, Value, UpdatedTime) VALUES (?, ?, ?)
         ON CONFLICT(StateKey) DO UPDATE SET Value = excluded.Value, UpdatedTime = excluded.UpdatedTime`,
		userIDKey, id, s.now().UTC())
	return err
}

// Clear forgets the persisted identity id.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM LocalState WHERE StateKey = ?`, userIDKey)
	return err
}

// Close releases the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
