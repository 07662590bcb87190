package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"ctchen222/tictactoe-bot/internal/game"
)

type memoryEntry struct {
	data      []byte
	updatedAt time.Time
}

type memorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
}

// NewMemorySessionRepository creates a process-local SessionRepository.
// Sessions are stored encoded so callers never share state with the store.
func NewMemorySessionRepository() SessionRepository {
	return &memorySessionRepository{sessions: make(map[string]memoryEntry)}
}

func (r *memorySessionRepository) Create(ctx context.Context, s *game.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[s.ID]; ok {
		return ErrSessionExists
	}
	r.sessions[s.ID] = memoryEntry{data: data, updatedAt: s.UpdatedAt}
	return nil
}

func (r *memorySessionRepository) FindByID(ctx context.Context, id string) (*game.Session, error) {
	r.mu.Lock()
	entry, ok := r.sessions[id]
	r.mu.Unlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	return decodeSession(entry.data)
}

func (r *memorySessionRepository) Update(ctx context.Context, id string, fn UpdateFunc) (*game.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s, err := decodeSession(entry.data)
	if err != nil {
		return nil, err
	}
	if err := fn(s); err != nil {
		return nil, err
	}

	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal updated session: %w", err)
	}
	r.sessions[id] = memoryEntry{data: data, updatedAt: s.UpdatedAt}
	return s, nil
}

func (r *memorySessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

// PurgeStale deletes sessions not written since before.
func (r *memorySessionRepository) PurgeStale(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var purged int64
	for id, entry := range r.sessions {
		if entry.updatedAt.Before(before) {
			delete(r.sessions, id)
			purged++
		}
	}
	return purged, nil
}
