package repository

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Purger is implemented by stores without native key expiry.
type Purger interface {
	PurgeStale(ctx context.Context, before time.Time) (int64, error)
}

// RunJanitor purges sessions idle for longer than ttl every interval until ctx is done.
func RunJanitor(ctx context.Context, p Purger, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "Session janitor started", "ttl", ttl, "interval", interval)
	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Session janitor stopping")
			return
		case now := <-ticker.C:
			purgeCtx, span := tracer.Start(ctx, "SessionRepository.Janitor")
			n, err := p.PurgeStale(purgeCtx, now.Add(-ttl))
			if err != nil {
				slog.ErrorContext(purgeCtx, "Failed to purge stale sessions", "error", err)
				span.RecordError(err)
				span.SetStatus(codes.Error, "Failed to purge stale sessions")
			} else if n > 0 {
				slog.InfoContext(purgeCtx, "Purged stale sessions", "count", n)
				span.SetAttributes(attribute.Int64("sessions.purged", n))
			}
			span.End()
		}
	}
}
