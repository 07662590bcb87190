package bot

import (
	"context"
	"log/slog"
	"time"

	"ctchen222/tictactoe-bot/internal/game"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("bot")
	meter  = otel.Meter("bot")
)

// Options configures a Bot.
type Options struct {
	Random          Random
	StrictAdjacency bool
	ThinkDelay      time.Duration // Simulated thinking time, see Think
}

// Bot is the computer player used by game sessions.
type Bot struct {
	rng             Random
	strictAdjacency bool
	thinkDelay      time.Duration
	decisions       metric.Int64Counter
}

// New creates a Bot. A nil Random falls back to DefaultRandom.
func New(opts Options) *Bot {
	rng := opts.Random
	if rng == nil {
		rng = DefaultRandom
	}

	decisions, err := meter.Int64Counter("bot.decisions",
		metric.WithDescription("Moves chosen by the bot, by decision rule"),
	)
	if err != nil {
		slog.Warn("Failed to create bot.decisions counter", "error", err)
		decisions = noop.Int64Counter{}
	}

	return &Bot{
		rng:             rng,
		strictAdjacency: opts.StrictAdjacency,
		thinkDelay:      opts.ThinkDelay,
		decisions:       decisions,
	}
}

// Think waits out the configured thinking time. It returns early with ctx.Err() if ctx ends first.
// Callers must not hold a lock or an open transaction while thinking.
func (b *Bot) Think(ctx context.Context) error {
	if b.thinkDelay <= 0 {
		return nil
	}

	ctx, span := tracer.Start(ctx, "bot.Think", trace.WithAttributes(
		attribute.Int64("bot.think_delay_ms", b.thinkDelay.Milliseconds()),
	))
	defer span.End()

	timer := time.NewTimer(b.thinkDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		span.RecordError(ctx.Err())
		span.SetStatus(codes.Error, "Cancelled while thinking")
		return ctx.Err()
	}
}

// CalculateNextMove picks the cell mark should play on board. It does not wait; see Think.
func (b *Bot) CalculateNextMove(ctx context.Context, board game.Board, mark game.PlayerMark, difficulty Difficulty) (Decision, error) {
	ctx, span := tracer.Start(ctx, "bot.CalculateNextMove", trace.WithAttributes(
		attribute.String("bot.mark", string(mark)),
		attribute.String("bot.difficulty", string(difficulty)),
		attribute.Int("board.move_count", board.MoveCount()),
	))
	defer span.End()

	opts := []Option{WithDifficulty(difficulty)}
	if b.strictAdjacency {
		opts = append(opts, WithStrictAdjacency())
	}

	decision, err := NewSelector(b.rng, opts...).Decide(board, mark)
	if err != nil {
		slog.WarnContext(ctx, "Bot could not select a move", "mark", mark, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Could not select a move")
		return Decision{}, err
	}

	span.SetAttributes(
		attribute.Int("bot.move", decision.Index),
		attribute.String("bot.rule", string(decision.Rule)),
	)
	b.decisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("bot.rule", string(decision.Rule)),
		attribute.String("bot.difficulty", string(difficulty)),
	))
	slog.DebugContext(ctx, "Bot selected move", "mark", mark, "index", decision.Index, "rule", decision.Rule)

	return decision, nil
}
