package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // Import postgres driver
)

func Connect(dsn string, timeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database handle: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database within %v: %w (close also failed: %v)", timeout, err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database within %v: %w", timeout, err)
	}

	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS bracket_sessions (
	id              SERIAL PRIMARY KEY,
	name            TEXT NOT NULL,
	status          TEXT NOT NULL DEFAULT 'open',
	bracket         JSONB,
	bracket_history JSONB NOT NULL DEFAULT '[]'::jsonb,
	match_queue     JSONB NOT NULL DEFAULT '[]'::jsonb,
	winner          TEXT,
	archive_key     TEXT,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT bracket_sessions_name_key UNIQUE (name),
	CONSTRAINT chk_bracket_sessions_status CHECK (status IN ('open', 'archived'))
);

CREATE INDEX IF NOT EXISTS idx_bracket_sessions_status_updated
	ON bracket_sessions (status, updated_at DESC);
`

// Migrate creates the bracket_sessions table if it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
