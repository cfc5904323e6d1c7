package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/agora/pkg/domain"
	"github.com/aretw0/agora/pkg/ports"
)

type mirrorMiddleware struct {
	next    ports.TranscriptStore
	mirrors []ports.TranscriptStore
}

// NewMirrorMiddleware tees every append to additional stores, e.g. CSV and Redis.
// The wrapped store is written first; a failure there skips the mirrors.
// Mirror failures are joined and returned after all mirrors were tried.
func NewMirrorMiddleware(mirrors ...ports.TranscriptStore) Middleware {
	return func(next ports.TranscriptStore) ports.TranscriptStore {
		return &mirrorMiddleware{next: next, mirrors: mirrors}
	}
}

func (m *mirrorMiddleware) Append(ctx context.Context, record *domain.DebateRecord) error {
	if err := m.next.Append(ctx, record); err != nil {
		return err
	}

	var errs []error
	for i, mirror := range m.mirrors {
		if err := mirror.Append(ctx, record); err != nil {
			errs = append(errs, fmt.Errorf("mirror %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
