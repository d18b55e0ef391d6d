// Package store persists configurations and run results in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a configuration or run id does not exist
var ErrNotFound = errors.New("not found")

const memoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS configurations (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	body TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	configuration_id TEXT NOT NULL REFERENCES configurations(id) ON DELETE CASCADE,
	kind TEXT NOT NULL,
	result BLOB NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_configuration ON runs(configuration_id, created_at);
`

// Store wraps the database connection
type Store struct {
	db   *sql.DB
	path string
	log  zerolog.Logger
	now  func() time.Time
}

// Open opens (creating if needed) the database at path and applies the
// schema. ":memory:" opens a private in-memory database.
func Open(path string, log zerolog.Logger) (*Store, error) {
	if path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if path == memoryPath {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(2)
	}

	s := &Store{
		db:   db,
		path: path,
		log:  log.With().Str("component", "store").Logger(),
		now:  time.Now,
	}
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	s.log.Debug().Str("path", path).Msg("Database opened")
	return s, nil
}

// Migrate creates the tables if they do not exist
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database location
func (s *Store) Path() string {
	return s.path
}

func (s *Store) timestamp() int64 {
	return s.now().UTC().UnixNano()
}
