package memory

import (
	"context"
	"sync"

	"github.com/aretw0/agora/pkg/domain"
)

// Store implements ports.EditableStore in memory.
// Safe for concurrent use.
type Store struct {
	records []*domain.DebateRecord
	mu      sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{}
}

// Append stores a copy of the record.
func (s *Store) Append(ctx context.Context, record *domain.DebateRecord) error {
	copied := *record

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, &copied)
	return nil
}

// List returns copies of all records in append order.
func (s *Store) List(ctx context.Context) ([]*domain.DebateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.DebateRecord, len(s.records))
	for i, r := range s.records {
		copied := *r
		out[i] = &copied
	}
	return out, nil
}

// Get returns a copy of the record with the given key.
func (s *Store) Get(ctx context.Context, key domain.Key) (*domain.DebateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.records {
		if r.Key() == key {
			copied := *r
			return &copied, nil
		}
	}
	return nil, domain.ErrDebateNotFound
}

// Rewrite replaces the whole content of the store.
func (s *Store) Rewrite(ctx context.Context, records []*domain.DebateRecord) error {
	out := make([]*domain.DebateRecord, len(records))
	for i, r := range records {
		copied := *r
		out[i] = &copied
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = out
	return nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
