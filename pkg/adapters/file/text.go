package file

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aretw0/agora/pkg/domain"
)

// DefaultTextFile is the line-oriented transcript written when no path is configured.
const DefaultTextFile = "debate.txt"

// TextStore implements ports.TranscriptStore as an append-only, human-readable log:
//
//	=== Debate 1: <topic>
//	Stances: a | b | c
//	<transcript, one utterance per line>
//	Votes: {"a": 2, "b": 1}
//	Agent Votes: {"Player 1": "a", ...}
//	Winner: a
//
// It cannot be read back; use CSVStore when the editor is needed.
type TextStore struct {
	Path string
	mu   sync.Mutex
}

// NewTextStore creates a store on path (DefaultTextFile when empty).
func NewTextStore(path string) *TextStore {
	if path == "" {
		path = DefaultTextFile
	}
	return &TextStore{Path: path}
}

// Append writes one block for record.
func (s *TextStore) Append(ctx context.Context, record *domain.DebateRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, _, err := openAppend(s.Path)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatBlock(record)); err != nil {
		return fmt.Errorf("%w: failed to write debate %d: %w", domain.ErrPersistence, record.Number(), err)
	}
	return nil
}

// FormatBlock renders the text block of one record.
func FormatBlock(r *domain.DebateRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== Debate %d: %s\n", r.Number(), r.Topic)
	fmt.Fprintf(&b, "Stances: %s\n", strings.Join(r.Stances[:], " | "))
	for _, u := range r.Transcript {
		b.WriteString(string(u))
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "Votes: %s\n", r.Votes)
	fmt.Fprintf(&b, "Agent Votes: %s\n", r.AgentVotes)
	if r.Outcome.Tie {
		fmt.Fprintf(&b, "%s\n\n", r.Outcome)
	} else {
		fmt.Fprintf(&b, "Winner: %s\n\n", r.Outcome)
	}
	return b.String()
}
