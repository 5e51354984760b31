package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection
type DB struct {
	*sql.DB
}

// NewSQLite opens (or creates) a SQLite database at the given path.
// Use ":memory:" for an ephemeral database in tests.
func NewSQLite(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// modernc's driver serializes access; a single connection avoids
	// SQLITE_BUSY under concurrent writes and keeps :memory: databases
	// from silently forking per connection.
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(1 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	log.Println("✅ SQLite database connected")

	return &DB{db}, nil
}

// Ping checks if the database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}

// Initialize creates all required tables and indexes.
func (db *DB) Initialize() error {
	log.Println("🔍 Checking database schema...")

	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id          TEXT PRIMARY KEY,
		username    TEXT NOT NULL UNIQUE,
		password    TEXT NOT NULL,
		email       TEXT,
		first_name  TEXT,
		last_name   TEXT,
		created_at  TIMESTAMP NOT NULL,
		updated_at  TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS ideas (
		id              TEXT PRIMARY KEY,
		user_id         TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title           TEXT NOT NULL,
		problem         TEXT NOT NULL,
		solution        TEXT NOT NULL,
		target_market   TEXT NOT NULL,
		business_model  TEXT NOT NULL,
		competition     TEXT NOT NULL,
		team            TEXT NOT NULL,
		viability_score INTEGER,
		feedback        TEXT NOT NULL DEFAULT '',
		status          TEXT NOT NULL DEFAULT 'draft',
		is_bookmarked   INTEGER NOT NULL DEFAULT 0,
		created_at      TIMESTAMP NOT NULL,
		updated_at      TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_ideas_user_updated ON ideas(user_id, updated_at);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	log.Println("✅ Database initialized successfully")
	return nil
}
