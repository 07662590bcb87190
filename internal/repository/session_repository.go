package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ctchen222/tictactoe-bot/internal/game"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("repository.session")

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionExists    = errors.New("session already exists")
	ErrConcurrentUpdate = errors.New("session was modified concurrently")
)

// UpdateFunc mutates a loaded session. Returning an error aborts the update.
type UpdateFunc func(s *game.Session) error

// SessionRepository stores the current state of each live session.
type SessionRepository interface {
	Create(ctx context.Context, s *game.Session) error
	FindByID(ctx context.Context, id string) (*game.Session, error)
	// Update loads the session, applies fn and stores the result atomically.
	Update(ctx context.Context, id string, fn UpdateFunc) (*game.Session, error)
	Delete(ctx context.Context, id string) error
}

type redisSessionRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisSessionRepository creates a Redis-based SessionRepository. Keys expire ttl after the last write.
func NewRedisSessionRepository(rdb *redis.Client, ttl time.Duration) SessionRepository {
	return &redisSessionRepository{rdb: rdb, ttl: ttl}
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// Create stores a new session, failing if the ID is taken.
func (r *redisSessionRepository) Create(ctx context.Context, s *game.Session) error {
	ctx, span := tracer.Start(ctx, "SessionRepository.Create", trace.WithAttributes(
		attribute.String("session.id", s.ID),
	))
	defer span.End()

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	created, err := r.rdb.SetNX(ctx, sessionKey(s.ID), data, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to create session in redis: %w", err)
	}
	if !created {
		return ErrSessionExists
	}
	return nil
}

// FindByID retrieves the current session state from Redis.
func (r *redisSessionRepository) FindByID(ctx context.Context, id string) (*game.Session, error) {
	ctx, span := tracer.Start(ctx, "SessionRepository.FindByID", trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer span.End()

	data, err := r.rdb.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session from redis: %w", err)
	}
	return decodeSession(data)
}

// Update applies fn inside a WATCH transaction so concurrent writers cannot interleave.
func (r *redisSessionRepository) Update(ctx context.Context, id string, fn UpdateFunc) (*game.Session, error) {
	ctx, span := tracer.Start(ctx, "SessionRepository.Update", trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer span.End()

	key := sessionKey(id)
	var updated *game.Session

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}

		s, err := decodeSession(data)
		if err != nil {
			return err
		}
		if err := fn(s); err != nil {
			return err
		}

		newData, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("failed to marshal updated session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, newData, r.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		updated = s
		return nil
	}

	if err := r.rdb.Watch(ctx, txf, key); err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return nil, ErrConcurrentUpdate
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a session.
func (r *redisSessionRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "SessionRepository.Delete", trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer span.End()

	n, err := r.rdb.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session from redis: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func decodeSession(data []byte) (*game.Session, error) {
	var s game.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}
