package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/meetingsphere/internal/persistence"
	_ "modernc.org/sqlite"
)

// Store owns the SQLite connection shared by the repositories.
type Store struct {
	db *sql.DB
}

// Open establishes a SQLite connection for the given DSN.
func Open(dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "file::memory:?cache=shared"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// modernc.org/sqlite serializes writes per connection; a single
	// connection avoids SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)
	return &Store{db: db}, nil
}

// DB exposes the underlying connection for repositories and tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close releases the database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		uid          TEXT PRIMARY KEY,
		email        TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL,
		role         TEXT NOT NULL CHECK (role IN ('user', 'admin')),
		status       TEXT NOT NULL CHECK (status IN ('active', 'blocked')),
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS rooms (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		location   TEXT NOT NULL,
		capacity   INTEGER NOT NULL CHECK (capacity > 0),
		start_time TEXT NOT NULL,
		end_time   TEXT NOT NULL,
		is_active  INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id                TEXT PRIMARY KEY,
		room_id           TEXT NOT NULL REFERENCES rooms(id),
		user_id           TEXT NOT NULL,
		user_display_name TEXT NOT NULL,
		topic             TEXT NOT NULL,
		contact_number    TEXT NOT NULL,
		date              TEXT NOT NULL,
		start_time        TEXT NOT NULL,
		end_time          TEXT NOT NULL,
		created_at        TEXT NOT NULL,
		updated_at        TEXT NOT NULL
	)`,
	// The slot index closes the check-then-act race: two concurrent writers
	// for one room/date/start-time cannot both commit.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_slot
		ON bookings (room_id, date, start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_date ON bookings (date)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users(uid),
		token      TEXT NOT NULL UNIQUE,
		expires_at TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		revoked_at TEXT
	)`,
}

// Migrate applies the schema statements in order. Statements are idempotent
// so repeated startup runs are safe.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	for i, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}

// mapError translates driver errors into persistence sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if err == sql.ErrNoRows {
		return persistence.ErrNotFound
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "idx_bookings_slot"):
		return persistence.ErrSlotTaken
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return persistence.ErrDuplicate
	case strings.Contains(msg, "FOREIGN KEY constraint failed"),
		strings.Contains(msg, "CHECK constraint failed"):
		return persistence.ErrConstraintViolation
	}
	return err
}
