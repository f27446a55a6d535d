// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// SQLite stores everything in a single file on disk. There is no
// network, no separate server process, and no installation beyond the
// driver. The record list is one row in a key/value table.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aanand-mishra/student-records/internal/config"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Storage.
// It holds a *sql.DB which is a connection pool managed by database/sql.
// A single *sql.DB is safe for concurrent use by multiple goroutines.
type SQLite struct {
	Db *sql.DB
}

// New opens the SQLite database at cfg.Storage.Path, creates the
// kv_store table if it does not already exist, and returns a ready-to-use
// *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	path := cfg.Storage.Path

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite.New: create dir: %w", err)
		}
	}

	// sql.Open does NOT open a real connection yet; it just validates
	// the driver name and data source name (DSN).
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// CREATE TABLE IF NOT EXISTS is idempotent, so safe to run on every
	// startup.
	//
	// Schema:
	//   key   : storage key, one row per key
	//   value : the opaque blob, replaced wholesale on every write
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS kv_store (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Get fetches the value stored under key.
//
// QueryRow returns exactly one row. If the query finds no match the error
// surfaces only when Scan is called, as sql.ErrNoRows, which here is not
// a failure but "nothing stored yet".
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT value FROM kv_store WHERE key = ? LIMIT 1",
	)
	if err != nil {
		return "", false, fmt.Errorf("Get: prepare: %w", err)
	}
	defer stmt.Close()

	var value string
	err = stmt.QueryRowContext(ctx, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("Get: scan: %w", err)
	}

	return value, true, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Set writes value under key, replacing whatever was there.
//
// The upsert keeps it one statement: a first write inserts the row, every
// later write overwrites the value column of the same row.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) Set(ctx context.Context, key, value string) error {
	stmt, err := s.Db.PrepareContext(ctx, `
		INSERT INTO kv_store (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`)
	if err != nil {
		return fmt.Errorf("Set: prepare: %w", err)
	}
	defer stmt.Close()

	// Argument order matches the ? order in the SQL: key, value.
	if _, err := stmt.ExecContext(ctx, key, value); err != nil {
		return fmt.Errorf("Set: exec: %w", err)
	}

	return nil
}

// Close releases the connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}
