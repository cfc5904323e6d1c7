package file

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/aretw0/agora/pkg/domain"
)

// Header is the first row of a tabular transcript.
var Header = []string{
	"Debate Number",
	"Topic",
	"Player 1 Stance",
	"Player 2 Stance",
	"Player 3 Stance",
	"Conversation",
	"Votes",
	"Agent Votes",
	"Winner",
}

// DefaultTranscriptFile is the tabular transcript written when no path is configured.
const DefaultTranscriptFile = "debate.csv"

// CSVStore implements ports.EditableStore on a CSV file with one row per debate.
//
// Appends open the file in append mode and close it right after the row is
// written; the header is written only when the file is empty. Rewrites replace
// the file atomically. Multi-line transcripts are joined with newlines, so
// reading back splits them per line.
type CSVStore struct {
	Path string
	mu   sync.Mutex
}

// NewCSVStore creates a store on path (DefaultTranscriptFile when empty).
func NewCSVStore(path string) *CSVStore {
	if path == "" {
		path = DefaultTranscriptFile
	}
	return &CSVStore{Path: path}
}

// Append writes one row for record.
func (s *CSVStore) Append(ctx context.Context, record *domain.DebateRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, empty, err := openAppend(s.Path)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if empty {
		if err := w.Write(Header); err != nil {
			return fmt.Errorf("%w: failed to write header: %w", domain.ErrPersistence, err)
		}
	}
	if err := w.Write(toRow(record)); err != nil {
		return fmt.Errorf("%w: failed to write debate %d: %w", domain.ErrPersistence, record.Number(), err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	return nil
}

// List reads every row. A missing file is an empty transcript.
func (s *CSVStore) List(ctx context.Context) ([]*domain.DebateRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Get returns the row of the given topic and debate number.
func (s *CSVStore) Get(ctx context.Context, key domain.Key) (*domain.DebateRecord, error) {
	records, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.Key() == key {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %q #%d", domain.ErrDebateNotFound, key.Topic, key.Number)
}

// Rewrite replaces the file with a header followed by records.
func (s *CSVStore) Rewrite(ctx context.Context, records []*domain.DebateRecord) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	for _, r := range records {
		if err := w.Write(toRow(r)); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeAtomic(s.Path, buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	return nil
}

func (s *CSVStore) read() ([]*domain.DebateRecord, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: failed to open transcript: %w", domain.ErrPersistence, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(Header)

	var records []*domain.DebateRecord
	for line := 1; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
		}
		if line == 1 && row[0] == Header[0] {
			continue
		}
		rec, err := fromRow(row)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", domain.ErrPersistence, line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func toRow(r *domain.DebateRecord) []string {
	return []string{
		strconv.Itoa(r.Number()),
		r.Topic,
		r.Stances[0],
		r.Stances[1],
		r.Stances[2],
		r.Transcript.Join(),
		r.Votes.String(),
		r.AgentVotes.String(),
		r.Outcome.String(),
	}
}

func fromRow(row []string) (*domain.DebateRecord, error) {
	n, err := strconv.Atoi(row[0])
	if err != nil {
		return nil, fmt.Errorf("invalid debate number %q: %w", row[0], err)
	}
	votes, err := domain.ParseVoteTally(row[6])
	if err != nil {
		return nil, fmt.Errorf("invalid votes: %w", err)
	}
	agentVotes, err := domain.ParseAgentVotes(row[7])
	if err != nil {
		return nil, err
	}
	return &domain.DebateRecord{
		Index:      n - 1,
		Topic:      row[1],
		Stances:    [domain.Seats]string{row[2], row[3], row[4]},
		Transcript: domain.SplitTranscript(row[5]),
		Votes:      votes,
		AgentVotes: agentVotes,
		Outcome:    domain.ParseOutcome(row[8], votes),
	}, nil
}
