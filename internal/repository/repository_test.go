package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"ctchen222/tictactoe-bot/internal/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runSessionRepositoryTests exercises the behaviour every SessionRepository must share.
// newRepo must return an empty store.
func runSessionRepositoryTests(t *testing.T, newRepo func(t *testing.T) SessionRepository) {
	t.Run("Create_FindByID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		// Given: a fresh session where the human plays O
		s := game.NewSession("s-1", game.PlayerO, "hard")
		s.UpdatedAt = time.Now()

		// When: it is stored and read back
		require.NoError(t, repo.Create(ctx, s))
		got, err := repo.FindByID(ctx, s.ID)

		// Then: the stored copy matches
		require.NoError(t, err)
		assert.Equal(t, s.ID, got.ID)
		assert.Equal(t, game.PlayerO, got.Human)
		assert.Equal(t, game.PlayerX, got.Computer)
		assert.Equal(t, game.PlayerX, got.Game.CurrentTurn)
		assert.Equal(t, "hard", got.Difficulty)
	})

	t.Run("Create_Duplicate", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		s := game.NewSession("dup", game.PlayerX, "easy")
		require.NoError(t, repo.Create(ctx, s))
		assert.ErrorIs(t, repo.Create(ctx, s), ErrSessionExists)
	})

	t.Run("FindByID_NotFound", func(t *testing.T) {
		repo := newRepo(t)

		got, err := repo.FindByID(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrSessionNotFound)
		assert.Nil(t, got)
	})

	t.Run("Update_AppliesAndPersists", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		s := game.NewSession("upd", game.PlayerX, "hard")
		require.NoError(t, repo.Create(ctx, s))

		updated, err := repo.Update(ctx, s.ID, func(s *game.Session) error {
			return s.Game.Move(game.PlayerX, 4)
		})
		require.NoError(t, err)
		assert.Equal(t, game.PlayerX, updated.Game.Board[4])

		got, err := repo.FindByID(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, game.PlayerX, got.Game.Board[4])
		assert.Equal(t, game.PlayerO, got.Game.CurrentTurn)
	})

	t.Run("Update_ErrorLeavesSessionUntouched", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		s := game.NewSession("abort", game.PlayerX, "hard")
		require.NoError(t, repo.Create(ctx, s))

		boom := errors.New("boom")
		_, err := repo.Update(ctx, s.ID, func(s *game.Session) error {
			s.Game.Board[0] = game.PlayerX
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := repo.FindByID(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, game.None, got.Game.Board[0])
	})

	t.Run("Update_NotFound", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Update(context.Background(), "missing", func(*game.Session) error { return nil })
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		s := game.NewSession("del", game.PlayerX, "hard")
		require.NoError(t, repo.Create(ctx, s))

		require.NoError(t, repo.Delete(ctx, s.ID))
		_, err := repo.FindByID(ctx, s.ID)
		assert.ErrorIs(t, err, ErrSessionNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, s.ID), ErrSessionNotFound)
	})
}

func runPurgerTests(t *testing.T, newRepo func(t *testing.T) SessionRepository) {
	repo := newRepo(t)
	purger, ok := repo.(Purger)
	require.True(t, ok, "repository should implement Purger")
	ctx := context.Background()

	now := time.Now()
	stale := game.NewSession("stale", game.PlayerX, "hard")
	stale.UpdatedAt = now.Add(-2 * time.Hour)
	fresh := game.NewSession("fresh", game.PlayerX, "hard")
	fresh.UpdatedAt = now

	require.NoError(t, repo.Create(ctx, stale))
	require.NoError(t, repo.Create(ctx, fresh))

	n, err := purger.PurgeStale(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.FindByID(ctx, "stale")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = repo.FindByID(ctx, "fresh")
	assert.NoError(t, err)
}
