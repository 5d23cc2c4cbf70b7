package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	// Registers the pure-Go "sqlite" driver.
	_ "modernc.org/sqlite"

	"github.com/jsamuelsen/quotesync/internal/domain"
)

// SQLiteStore keeps keys in a single kv table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and applies the schema.
// Use ":memory:" for a throwaway database.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("storage path is required")
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), fileDirPerm); err != nil {
			return nil, fmt.Errorf("creating storage directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite pragma %q: %w", p, err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite migration: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);`

	_, err := s.db.ExecContext(ctx, schema)

	return err
}

// Get implements ports.KeyValueStore.
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	var value string

	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.NewNotFoundError("key", key)
	}

	if err != nil {
		return "", fmt.Errorf("reading key %q: %w", key, err)
	}

	return value, nil
}

// Set implements ports.KeyValueStore.
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	return s.SetMany(ctx, map[string]string{key: value})
}

// SetMany implements ports.KeyValueStore. All entries commit in one transaction.
func (s *SQLiteStore) SetMany(ctx context.Context, entries map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const upsert = `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, datetime('now'))
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	for key, value := range entries {
		if _, err := tx.ExecContext(ctx, upsert, key, value); err != nil {
			return fmt.Errorf("writing key %q: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// Close implements ports.KeyValueStore.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Name implements ports.HealthChecker.
func (s *SQLiteStore) Name() string { return healthCheckName }

// Check implements ports.HealthChecker.
func (s *SQLiteStore) Check(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
