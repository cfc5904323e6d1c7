package ports

import (
	"context"

	"github.com/aretw0/agora/pkg/domain"
)

// TranscriptStore persists finished debates. Records are appended once and never mutated by the engine.
type TranscriptStore interface {
	// Append persists one debate record.
	// Failures are reported wrapped in domain.ErrPersistence.
	Append(ctx context.Context, record *domain.DebateRecord) error
}

// TranscriptReader loads persisted debates.
type TranscriptReader interface {
	// List returns every persisted record in append order.
	List(ctx context.Context) ([]*domain.DebateRecord, error)

	// Get returns the record of the given topic and debate number.
	// Returns domain.ErrDebateNotFound if it does not exist.
	Get(ctx context.Context, key domain.Key) (*domain.DebateRecord, error)
}

// TranscriptRewriter replaces the whole content of a store, as the editor does on save.
type TranscriptRewriter interface {
	Rewrite(ctx context.Context, records []*domain.DebateRecord) error
}

// EditableStore is a store the editor can both load and save.
type EditableStore interface {
	TranscriptStore
	TranscriptReader
	TranscriptRewriter
}
