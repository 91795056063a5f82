package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (key index only)
// 1 - Added (key, request_digest, seq) index for argument matching
const currentSchemaVersion = 1

// ErrNotFound is returned by Get when no artifact has the requested ID.
var ErrNotFound = errors.New("artifact not found")

// MatchMode controls the fallback behavior of Lookup.
type MatchMode string

const (
	// MatchKey prefers an artifact with the same argument digest and falls
	// back to the latest artifact under the key.
	MatchKey MatchMode = "key"

	// MatchExact only returns artifacts with the same argument digest.
	MatchExact MatchMode = "exact"
)

// ParseMatchMode validates a match mode name. The empty string selects
// MatchKey.
func ParseMatchMode(name string) (MatchMode, error) {
	switch MatchMode(name) {
	case MatchKey, MatchExact:
		return MatchMode(name), nil
	case "":
		return MatchKey, nil
	default:
		return "", fmt.Errorf("unknown match mode %q", name)
	}
}

// Option configures a store.
type Option func(*options)

type options struct {
	match MatchMode
}

// WithMatchMode sets the Lookup fallback policy. Default: MatchKey.
func WithMatchMode(m MatchMode) Option {
	return func(o *options) {
		o.match = m
	}
}

func applyOptions(opts []Option) options {
	o := options{match: MatchKey}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// SQLite is the durable artifact store.
// Uses SQLite with WAL mode for concurrent read access.
type SQLite struct {
	db    *sql.DB
	match MatchMode
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// This function is idempotent - safe to call multiple times.
func Open(path string, opts ...Option) (*SQLite, error) {
	o := applyOptions(opts)
	if _, err := ParseMatchMode(string(o.match)); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLite{db: db, match: o.match}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using store methods when available.
func (s *SQLite) DB() *sql.DB {
	return s.db
}

// Ping checks that the database is reachable.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 adds the digest index used by argument-sensitive lookups.
func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_artifacts_key_digest
		ON artifacts(key, request_digest, seq)
	`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *SQLite) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
