package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/agora/pkg/domain"
	"github.com/aretw0/agora/pkg/ports"
)

type loggingMiddleware struct {
	next   ports.TranscriptStore
	logger *slog.Logger
}

// NewLoggingMiddleware logs every append with its outcome and duration.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next ports.TranscriptStore) ports.TranscriptStore {
		return &loggingMiddleware{next: next, logger: logger}
	}
}

func (m *loggingMiddleware) Append(ctx context.Context, record *domain.DebateRecord) error {
	start := time.Now()
	err := m.next.Append(ctx, record)
	attrs := []any{
		"topic", record.Topic,
		"debate", record.Number(),
		"duration", time.Since(start),
	}
	if err != nil {
		m.logger.Error("transcript append failed", append(attrs, "error", err)...)
		return err
	}
	m.logger.Debug("transcript appended", attrs...)
	return nil
}
