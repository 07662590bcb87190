package db

import (
	"fmt"
	"log/slog"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
)

// Connect opens the SQLite database at path and makes sure the schema exists.
func Connect(path string) (*sqlx.DB, error) {
	pool, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	// SQLite allows one writer; a single connection avoids "database is locked" under load.
	pool.SetMaxOpenConns(1)

	if err := InitializeSchema(pool); err != nil {
		pool.Close()
		return nil, err
	}

	slog.Info("Connected to sqlite database", "path", path)
	return pool, nil
}

// InitializeSchema creates the sessions table if it doesn't exist.
func InitializeSchema(db *sqlx.DB) error {
	sessionSchema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);`

	if _, err := db.Exec(sessionSchema); err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions (updated_at)`); err != nil {
		return fmt.Errorf("failed to create sessions index: %w", err)
	}
	return nil
}
