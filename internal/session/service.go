package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ctchen222/tictactoe-bot/internal/bot"
	"ctchen222/tictactoe-bot/internal/game"
	"ctchen222/tictactoe-bot/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("session")

// MoveCalculator defines an interface for an agent that can calculate a game move.
type MoveCalculator interface {
	CalculateNextMove(ctx context.Context, board game.Board, mark game.PlayerMark, difficulty bot.Difficulty) (bot.Decision, error)
}

// Thinker is implemented by calculators that pause before moving, like *bot.Bot.
type Thinker interface {
	Think(ctx context.Context) error
}

// Service runs human-vs-computer sessions on top of a SessionRepository.
type Service struct {
	repo       repository.SessionRepository
	calculator MoveCalculator
	now        func() time.Time
}

// NewService creates a new Service.
func NewService(repo repository.SessionRepository, calculator MoveCalculator) *Service {
	return &Service{
		repo:       repo,
		calculator: calculator,
		now:        time.Now,
	}
}

// Start opens a session where the human plays human. X always opens, so the computer
// moves first when the human picks O.
func (s *Service) Start(ctx context.Context, human game.PlayerMark, difficulty bot.Difficulty) (*game.Session, error) {
	ctx, span := tracer.Start(ctx, "session.Start", trace.WithAttributes(
		attribute.String("session.human", string(human)),
		attribute.String("session.difficulty", string(difficulty)),
	))
	defer span.End()

	if !human.Valid() {
		return nil, fmt.Errorf("%w: %q", game.ErrInvalidPlayer, human)
	}

	sess := game.NewSession(uuid.New().String(), human, string(difficulty))
	span.SetAttributes(attribute.String("session.id", sess.ID))

	if err := s.think(ctx, sess); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Computer failed to open")
		return nil, err
	}
	if err := s.computerTurn(ctx, sess); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Computer failed to open")
		return nil, err
	}
	sess.UpdatedAt = s.now()

	if err := s.repo.Create(ctx, sess); err != nil {
		slog.ErrorContext(ctx, "Failed to store new session", "session.id", sess.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to store session")
		return nil, err
	}

	slog.InfoContext(ctx, "Session started", "session.id", sess.ID, "human", human, "difficulty", difficulty)
	return sess, nil
}

// Get returns the current state of a session.
func (s *Service) Get(ctx context.Context, id string) (*game.Session, error) {
	ctx, span := tracer.Start(ctx, "session.Get", trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer span.End()

	return s.repo.FindByID(ctx, id)
}

// Play applies the human's move at index and, unless that ended the game, the computer's reply.
// The two moves are stored by separate updates; the computer thinks between them.
func (s *Service) Play(ctx context.Context, id string, index int) (*game.Session, error) {
	ctx, span := tracer.Start(ctx, "session.Play", trace.WithAttributes(
		attribute.String("session.id", id),
		attribute.Int("move.index", index),
	))
	defer span.End()

	sess, err := s.repo.Update(ctx, id, func(sess *game.Session) error {
		if err := sess.Game.Move(sess.Human, index); err != nil {
			return err
		}
		sess.ComputerMove = nil
		sess.UpdatedAt = s.now()
		return nil
	})
	if err == nil && sess.ComputerToMove() {
		sess, err = s.reply(ctx, sess)
	}
	if err != nil {
		slog.WarnContext(ctx, "Move rejected", "session.id", id, "index", index, "error", err)
		span.SetAttributes(attribute.Bool("move.valid", false))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Move rejected")
		return nil, err
	}
	span.SetAttributes(attribute.Bool("move.valid", true))

	if sess.Game.Over() {
		slog.InfoContext(ctx, "Session finished", "session.id", id, "winner", sess.Game.Winner, "draw", sess.Game.Draw)
	}
	return sess, nil
}

// Restart clears the board, keeping both marks and the difficulty.
func (s *Service) Restart(ctx context.Context, id string) (*game.Session, error) {
	ctx, span := tracer.Start(ctx, "session.Restart", trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer span.End()

	sess, err := s.repo.Update(ctx, id, func(sess *game.Session) error {
		sess.Game.Reset()
		sess.ComputerMove = nil
		sess.UpdatedAt = s.now()
		return nil
	})
	if err == nil && sess.ComputerToMove() {
		sess, err = s.reply(ctx, sess)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to restart session")
		return nil, err
	}

	slog.InfoContext(ctx, "Session restarted", "session.id", id)
	return sess, nil
}

// reply waits for the computer to think, then stores its move. computerTurn re-checks the
// turn against the stored session, which may have been restarted meanwhile.
func (s *Service) reply(ctx context.Context, sess *game.Session) (*game.Session, error) {
	if err := s.think(ctx, sess); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, sess.ID, func(sess *game.Session) error {
		if err := s.computerTurn(ctx, sess); err != nil {
			return err
		}
		sess.UpdatedAt = s.now()
		return nil
	})
}

// Delete ends a session.
func (s *Service) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "session.Delete", trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer span.End()

	if err := s.repo.Delete(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete session")
		return err
	}
	return nil
}

func (s *Service) think(ctx context.Context, sess *game.Session) error {
	t, ok := s.calculator.(Thinker)
	if !ok || !sess.ComputerToMove() {
		return nil
	}
	return t.Think(ctx)
}

// computerTurn plays the computer's move if it is the computer's turn.
func (s *Service) computerTurn(ctx context.Context, sess *game.Session) error {
	if !sess.ComputerToMove() {
		return nil
	}

	difficulty, err := bot.ParseDifficulty(sess.Difficulty)
	if err != nil {
		return err
	}
	decision, err := s.calculator.CalculateNextMove(ctx, sess.Game.Board, sess.Computer, difficulty)
	if err != nil {
		return fmt.Errorf("computer move: %w", err)
	}
	if err := sess.Game.Move(sess.Computer, decision.Index); err != nil {
		return fmt.Errorf("computer move %d: %w", decision.Index, err)
	}

	index := decision.Index
	sess.ComputerMove = &index
	return nil
}
