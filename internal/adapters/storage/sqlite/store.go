// Package sqlite stores key/value slots in a SQLite database using the
// pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// DefaultTable is the table used when none is configured.
const DefaultTable = "kv"

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store is a ports.KeyValueStore backed by one SQLite table.
type Store struct {
	db    *sql.DB
	table string

	getQuery    string
	setQuery    string
	deleteQuery string
}

// Open opens (creating if needed) the database at path and prepares the table.
// The special path ":memory:" opens a private in-memory database.
func Open(ctx context.Context, path, table string) (*Store, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)

		err := os.MkdirAll(dir, 0o755)
		if err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// One connection serialises writers and keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if path != ":memory:" {
		_, err = db.ExecContext(ctx, "PRAGMA journal_mode=WAL")
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enabling WAL: %w", err)
		}
	}

	s, err := New(ctx, db, table)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// New wraps an open database and creates the table if it does not exist.
func New(ctx context.Context, db *sql.DB, table string) (*Store, error) {
	if table == "" {
		table = DefaultTable
	}

	if !identifierPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	quoted := `"` + table + `"`

	schema := `CREATE TABLE IF NOT EXISTS ` + quoted + ` (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`

	_, err := db.ExecContext(ctx, schema)
	if err != nil {
		return nil, fmt.Errorf("creating table %s: %w", table, err)
	}

	return &Store{
		db:          db,
		table:       table,
		getQuery:    `SELECT value FROM ` + quoted + ` WHERE key = ?`,
		setQuery:    `INSERT INTO ` + quoted + ` (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		deleteQuery: `DELETE FROM ` + quoted + ` WHERE key = ?`,
	}, nil
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string { return "sqlite" }

// Check implements ports.HealthChecker.
func (s *Store) Check(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Get returns the value under key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string

	err := s.db.QueryRowContext(ctx, s.getQuery, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}

	if err != nil {
		return "", false, fmt.Errorf("sqlite get %q: %w", key, err)
	}

	return value, true, nil
}

// Set creates or replaces key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, s.setQuery, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("sqlite set %q: %w", key, err)
	}

	return nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, s.deleteQuery, key)
	if err != nil {
		return fmt.Errorf("sqlite delete %q: %w", key, err)
	}

	return nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}
