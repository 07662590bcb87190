package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ctchen222/tictactoe-bot/internal/game"

	"github.com/jmoiron/sqlx"
)

type sqliteSessionRepository struct {
	db *sqlx.DB
}

// NewSQLiteSessionRepository creates a SQLite-based SessionRepository.
// The sessions table is created by db.InitializeSchema.
func NewSQLiteSessionRepository(db *sqlx.DB) SessionRepository {
	return &sqliteSessionRepository{db: db}
}

// Create inserts a new session row.
func (r *sqliteSessionRepository) Create(ctx context.Context, s *game.Session) error {
	ctx, span := tracer.Start(ctx, "SessionRepository.Create")
	defer span.End()

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, data, updated_at) VALUES (?, ?, ?) ON CONFLICT(id) DO NOTHING`,
		s.ID, string(data), s.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSessionExists
	}
	return nil
}

// FindByID retrieves a session by its ID.
func (r *sqliteSessionRepository) FindByID(ctx context.Context, id string) (*game.Session, error) {
	ctx, span := tracer.Start(ctx, "SessionRepository.FindByID")
	defer span.End()

	var data string
	err := r.db.GetContext(ctx, &data, `SELECT data FROM sessions WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return decodeSession([]byte(data))
}

// Update applies fn inside a transaction.
func (r *sqliteSessionRepository) Update(ctx context.Context, id string, fn UpdateFunc) (*game.Session, error) {
	ctx, span := tracer.Start(ctx, "SessionRepository.Update")
	defer span.End()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var data string
	err = tx.GetContext(ctx, &data, `SELECT data FROM sessions WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session for update: %w", err)
	}

	s, err := decodeSession([]byte(data))
	if err != nil {
		return nil, err
	}
	if err := fn(s); err != nil {
		return nil, err
	}

	newData, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal updated session: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE sessions SET data = ?, updated_at = ? WHERE id = ?`,
		string(newData), s.UpdatedAt.UTC(), id); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit session update: %w", err)
	}
	return s, nil
}

// Delete removes a session row.
func (r *sqliteSessionRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "SessionRepository.Delete")
	defer span.End()

	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// PurgeStale deletes sessions not written since before.
func (r *sqliteSessionRepository) PurgeStale(ctx context.Context, before time.Time) (int64, error) {
	ctx, span := tracer.Start(ctx, "SessionRepository.PurgeStale")
	defer span.End()

	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < ?`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge stale sessions: %w", err)
	}
	return res.RowsAffected()
}
