// Package editor loads a persisted transcript, lets an operator overwrite
// the agent votes of individual debates and saves the result back.
//
// The editor works on an in-memory copy: nothing reaches the store until Save.
package editor

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/agora/pkg/domain"
	"github.com/aretw0/agora/pkg/ports"
)

// Editor holds the records of one store. It is not safe for concurrent use.
type Editor struct {
	store   ports.EditableStore
	logger  *slog.Logger
	records []*domain.DebateRecord
	dirty   bool
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// Open loads every record of the store.
func Open(ctx context.Context, store ports.EditableStore, opts ...Option) (*Editor, error) {
	e := &Editor{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.Reload(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// Reload discards unsaved changes and reads the store again.
func (e *Editor) Reload(ctx context.Context) error {
	records, err := e.store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load transcript: %w", err)
	}
	e.records = records
	e.dirty = false
	e.logger.Debug("transcript loaded", "records", len(records))
	return nil
}

// Records returns the loaded records in store order.
func (e *Editor) Records() []*domain.DebateRecord {
	return append([]*domain.DebateRecord(nil), e.records...)
}

// Topics returns the distinct topics in first-seen order.
func (e *Editor) Topics() []string {
	seen := make(map[string]bool)
	var topics []string
	for _, r := range e.records {
		if !seen[r.Topic] {
			seen[r.Topic] = true
			topics = append(topics, r.Topic)
		}
	}
	return topics
}

// Numbers returns the debate numbers recorded for a topic.
func (e *Editor) Numbers(topic string) []int {
	var numbers []int
	for _, r := range e.records {
		if r.Topic == topic {
			numbers = append(numbers, r.Number())
		}
	}
	return numbers
}

// Record returns the record of a topic and debate number.
func (e *Editor) Record(key domain.Key) (*domain.DebateRecord, error) {
	for _, r := range e.records {
		if r.Key() == key {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: topic %q, debate %d", domain.ErrDebateNotFound, key.Topic, key.Number)
}

// SetAgentVotes overwrites the agent votes of a debate with operator text.
// The text is a JSON object of agent name to vote; single quotes are accepted.
// Blank text or an object naming no agent is rejected. Votes and winner are left as recorded.
func (e *Editor) SetAgentVotes(key domain.Key, text string) (*domain.DebateRecord, error) {
	rec, err := e.Record(key)
	if err != nil {
		return nil, err
	}

	clean, err := Sanitize(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidAgentVotes, err)
	}
	votes, err := domain.ParseAgentVotes(clean)
	if err != nil {
		return nil, err
	}
	if votes.Len() == 0 {
		return nil, fmt.Errorf("%w: no agent named", domain.ErrInvalidAgentVotes)
	}

	rec.AgentVotes = votes
	e.dirty = true
	e.logger.Info("agent votes updated", "topic", key.Topic, "debate", key.Number)
	return rec, nil
}

// Dirty reports whether there are unsaved changes.
func (e *Editor) Dirty() bool { return e.dirty }

// Save rewrites the whole store with the edited records.
func (e *Editor) Save(ctx context.Context) error {
	if err := e.store.Rewrite(ctx, e.records); err != nil {
		return fmt.Errorf("failed to save transcript: %w", err)
	}
	e.dirty = false
	e.logger.Info("transcript saved", "records", len(e.records))
	return nil
}
