package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ctchen222/tictactoe-bot/internal/bot"
	"ctchen222/tictactoe-bot/internal/game"
	"ctchen222/tictactoe-bot/internal/repository"
	"ctchen222/tictactoe-bot/internal/repository/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// firstRandom always draws the first candidate.
type firstRandom struct{}

func (firstRandom) IntN(int) int { return 0 }

var fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *mock.MockSessionRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mock.NewMockSessionRepository(ctrl)

	svc := NewService(repo, bot.New(bot.Options{Random: firstRandom{}}))
	svc.now = func() time.Time { return fixedNow }
	return svc, repo
}

// expectUpdate makes repo.Update run fn against stored, like a real store would.
func expectUpdate(repo *mock.MockSessionRepository, stored *game.Session, times int) {
	repo.EXPECT().
		Update(gomock.Any(), stored.ID, gomock.Any()).
		Times(times).
		DoAndReturn(func(ctx context.Context, id string, fn repository.UpdateFunc) (*game.Session, error) {
			if err := fn(stored); err != nil {
				return nil, err
			}
			return stored, nil
		})
}

func TestService_Start(t *testing.T) {
	t.Run("Human plays X and opens", func(t *testing.T) {
		svc, repo := newTestService(t)

		var created *game.Session
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, s *game.Session) error {
				created = s
				return nil
			})

		sess, err := svc.Start(context.Background(), game.PlayerX, bot.Hard)
		require.NoError(t, err)
		require.Same(t, created, sess)

		assert.NotEmpty(t, sess.ID)
		assert.Equal(t, game.PlayerO, sess.Computer)
		assert.Equal(t, game.Board{}, sess.Game.Board)
		assert.Equal(t, game.PlayerX, sess.Game.CurrentTurn)
		assert.Nil(t, sess.ComputerMove)
		assert.Equal(t, fixedNow, sess.UpdatedAt)
	})

	t.Run("Human plays O and the computer opens", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

		sess, err := svc.Start(context.Background(), game.PlayerO, bot.Hard)
		require.NoError(t, err)

		assert.Equal(t, 1, sess.Game.Board.MoveCount())
		require.NotNil(t, sess.ComputerMove)
		assert.Equal(t, game.PlayerX, sess.Game.Board[*sess.ComputerMove])
		assert.Equal(t, game.PlayerO, sess.Game.CurrentTurn)
	})

	t.Run("Invalid mark", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.Start(context.Background(), "Z", bot.Hard)
		assert.ErrorIs(t, err, game.ErrInvalidPlayer)
	})

	t.Run("Store failure", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(repository.ErrSessionExists)

		_, err := svc.Start(context.Background(), game.PlayerX, bot.Easy)
		assert.ErrorIs(t, err, repository.ErrSessionExists)
	})
}

func TestService_Play(t *testing.T) {
	t.Run("Human move gets a computer reply", func(t *testing.T) {
		svc, repo := newTestService(t)
		stored := game.NewSession("s1", game.PlayerX, "hard")
		expectUpdate(repo, stored, 2)

		sess, err := svc.Play(context.Background(), "s1", 4)
		require.NoError(t, err)

		// center taken on the first move: the computer answers in the first corner
		assert.Equal(t, game.PlayerX, sess.Game.Board[4])
		assert.Equal(t, game.PlayerO, sess.Game.Board[0])
		require.NotNil(t, sess.ComputerMove)
		assert.Equal(t, 0, *sess.ComputerMove)
		assert.Equal(t, game.PlayerX, sess.Game.CurrentTurn)
		assert.Equal(t, fixedNow, sess.UpdatedAt)
	})

	t.Run("Computer blocks", func(t *testing.T) {
		svc, repo := newTestService(t)
		stored := game.NewSession("s1", game.PlayerX, "medium")
		require.NoError(t, stored.Game.Move(game.PlayerX, 0))
		require.NoError(t, stored.Game.Move(game.PlayerO, 4))
		expectUpdate(repo, stored, 2)

		sess, err := svc.Play(context.Background(), "s1", 1)
		require.NoError(t, err)
		require.NotNil(t, sess.ComputerMove)
		assert.Equal(t, 2, *sess.ComputerMove)
	})

	t.Run("Winning move ends the game without a reply", func(t *testing.T) {
		svc, repo := newTestService(t)
		stored := game.NewSession("s1", game.PlayerX, "hard")
		for _, m := range []struct {
			mark  game.PlayerMark
			index int
		}{{game.PlayerX, 0}, {game.PlayerO, 3}, {game.PlayerX, 1}, {game.PlayerO, 4}} {
			require.NoError(t, stored.Game.Move(m.mark, m.index))
		}
		expectUpdate(repo, stored, 1)

		sess, err := svc.Play(context.Background(), "s1", 2)
		require.NoError(t, err)
		assert.Equal(t, game.PlayerX, sess.Game.Winner)
		assert.Equal(t, []int{0, 1, 2}, sess.Game.WinningLine)
		assert.Nil(t, sess.ComputerMove)
		assert.Equal(t, game.None, sess.Game.Board[5])
	})

	t.Run("Occupied cell", func(t *testing.T) {
		svc, repo := newTestService(t)
		stored := game.NewSession("s1", game.PlayerX, "hard")
		require.NoError(t, stored.Game.Move(game.PlayerX, 0))
		require.NoError(t, stored.Game.Move(game.PlayerO, 4))
		expectUpdate(repo, stored, 1)

		_, err := svc.Play(context.Background(), "s1", 4)
		assert.ErrorIs(t, err, game.ErrCellOccupied)
	})

	t.Run("Finished game", func(t *testing.T) {
		svc, repo := newTestService(t)
		stored := game.NewSession("s1", game.PlayerX, "hard")
		stored.Game.Winner = game.PlayerO
		expectUpdate(repo, stored, 1)

		_, err := svc.Play(context.Background(), "s1", 8)
		assert.ErrorIs(t, err, game.ErrGameOver)
	})

	t.Run("Unknown session", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().Update(gomock.Any(), "nope", gomock.Any()).Return(nil, repository.ErrSessionNotFound)

		_, err := svc.Play(context.Background(), "nope", 0)
		assert.ErrorIs(t, err, repository.ErrSessionNotFound)
	})
}

func TestService_Restart(t *testing.T) {
	svc, repo := newTestService(t)
	stored := game.NewSession("s1", game.PlayerO, "easy")
	stored.Game.Board = game.Board{
		game.PlayerX, game.PlayerX, game.PlayerX,
		game.PlayerO, game.PlayerO, game.None,
		game.None, game.None, game.None,
	}
	stored.Game.Winner = game.PlayerX
	expectUpdate(repo, stored, 2)

	sess, err := svc.Restart(context.Background(), "s1")
	require.NoError(t, err)

	assert.False(t, sess.Game.Over())
	assert.Equal(t, 1, sess.Game.Board.MoveCount())
	require.NotNil(t, sess.ComputerMove)
	assert.Equal(t, game.PlayerX, sess.Game.Board[*sess.ComputerMove])
	assert.Equal(t, game.PlayerO, sess.Game.CurrentTurn)
}

func TestService_GetAndDelete(t *testing.T) {
	svc, repo := newTestService(t)
	stored := game.NewSession("s1", game.PlayerX, "hard")

	repo.EXPECT().FindByID(gomock.Any(), "s1").Return(stored, nil)
	repo.EXPECT().Delete(gomock.Any(), "s1").Return(nil)
	repo.EXPECT().Delete(gomock.Any(), "s2").Return(repository.ErrSessionNotFound)

	got, err := svc.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Same(t, stored, got)

	assert.NoError(t, svc.Delete(context.Background(), "s1"))
	assert.ErrorIs(t, svc.Delete(context.Background(), "s2"), repository.ErrSessionNotFound)
}

func TestService_WithMemoryRepository(t *testing.T) {
	svc := NewService(repository.NewMemorySessionRepository(), bot.New(bot.Options{Random: bot.NewSeededRandom(3)}))
	ctx := context.Background()

	sess, err := svc.Start(ctx, game.PlayerX, bot.Hard)
	require.NoError(t, err)

	// play the first empty cell until the game ends
	for !sess.Game.Over() {
		empty := sess.Game.Board.EmptyCells()
		require.NotEmpty(t, empty)
		sess, err = svc.Play(ctx, sess.ID, empty[0])
		require.NoError(t, err)
	}

	stored, err := svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.Game, stored.Game)
}

// countingBot counts Think calls on top of a real bot.
type countingBot struct {
	*bot.Bot
	thinks atomic.Int32
}

func (b *countingBot) Think(ctx context.Context) error {
	b.thinks.Add(1)
	return b.Bot.Think(ctx)
}

func TestService_ThinksOnlyBeforeComputerMoves(t *testing.T) {
	calc := &countingBot{Bot: bot.New(bot.Options{Random: firstRandom{}})}
	svc := NewService(repository.NewMemorySessionRepository(), calc)
	ctx := context.Background()

	sess, err := svc.Start(ctx, game.PlayerX, bot.Hard)
	require.NoError(t, err)
	assert.Equal(t, int32(0), calc.thinks.Load())

	_, err = svc.Play(ctx, sess.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calc.thinks.Load())

	_, err = svc.Play(ctx, sess.ID, 4)
	assert.ErrorIs(t, err, game.ErrCellOccupied)
	assert.Equal(t, int32(1), calc.thinks.Load())

	_, err = svc.Start(ctx, game.PlayerO, bot.Hard)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calc.thinks.Load())
}

func TestService_ThinkingDoesNotBlockOtherSessions(t *testing.T) {
	const delay = 200 * time.Millisecond
	svc := NewService(repository.NewMemorySessionRepository(), bot.New(bot.Options{Random: firstRandom{}, ThinkDelay: delay}))
	ctx := context.Background()

	var ids []string
	for range 3 {
		sess, err := svc.Start(ctx, game.PlayerX, bot.Hard)
		require.NoError(t, err)
		ids = append(ids, sess.ID)
	}

	start := time.Now()
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range ids[:2] {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Play(ctx, id, 4)
		}()
	}

	// both computers are thinking now; reading a third session must not wait for them
	time.Sleep(delay / 4)
	readStart := time.Now()
	_, err := svc.Get(ctx, ids[2])
	require.NoError(t, err)
	assert.Less(t, time.Since(readStart), delay/2)

	wg.Wait()
	elapsed := time.Since(start)
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.GreaterOrEqual(t, elapsed, delay)
	assert.Less(t, elapsed, 2*delay, "plays on different sessions ran one after the other")

	for _, id := range ids[:2] {
		sess, err := svc.Get(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, sess.ComputerMove)
		assert.Equal(t, 0, *sess.ComputerMove)
	}
}
