package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/agora/pkg/domain"
	"github.com/muesli/termenv"
)

// Reporter presents batch progress. Hooks must be wired into the engine
// for per-turn output; BatchStarted and BatchFinished are called by the Runner.
type Reporter interface {
	Hooks() domain.LifecycleHooks
	BatchStarted(ctx context.Context, runID string, motions []domain.Motion)
	BatchFinished(ctx context.Context, report *Report)
}

// NopReporter reports nothing.
type NopReporter struct{}

func (NopReporter) Hooks() domain.LifecycleHooks                          { return domain.LifecycleHooks{} }
func (NopReporter) BatchStarted(context.Context, string, []domain.Motion) {}
func (NopReporter) BatchFinished(context.Context, *Report)                {}

const ruleWidth = 100

// TextReporter prints a debate as it unfolds: seating, every utterance, every ballot and the outcome.
type TextReporter struct {
	out *termenv.Output
	mu  sync.Mutex
}

// NewTextReporter creates a TextReporter writing to w (os.Stdout when nil).
// Colours are used only when w is a terminal.
func NewTextReporter(w io.Writer) *TextReporter {
	if w == nil {
		w = os.Stdout
	}
	return &TextReporter{out: termenv.NewOutput(w)}
}

func (r *TextReporter) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, format, args...)
}

func (r *TextReporter) rule(ch string) string { return strings.Repeat(ch, ruleWidth) + "\n" }

func (r *TextReporter) styled(s, color string, bold bool) termenv.Style {
	st := r.out.String(s).Foreground(r.out.Color(color))
	if bold {
		st = st.Bold()
	}
	return st
}

// Hooks implements Reporter.
func (r *TextReporter) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPhaseEnter: func(_ context.Context, e *domain.PhaseEvent) {
			if e.Phase != domain.PhaseRounds {
				return
			}
			var b strings.Builder
			b.WriteString(r.rule("="))
			fmt.Fprintf(&b, "%s\n", r.styled(fmt.Sprintf("Running debate %d with topic: %s", e.Index+1, e.Topic), "#818cf8", true))
			b.WriteString(r.rule("-"))
			for i, a := range e.Agents {
				fmt.Fprintf(&b, "%s (%s) stance: %s\n", a.Name, a.Model, e.Stances[i])
			}
			b.WriteString(r.rule("-"))
			r.printf("%s", b.String())
		},
		OnUtterance: func(_ context.Context, e *domain.UtteranceEvent) {
			r.printf("%s\n%s", e.Utterance, r.rule("-"))
		},
		OnVote: func(_ context.Context, e *domain.VoteEvent) {
			r.printf("%s voted for %s\n", e.Agent, r.styled(e.Vote, "#c084fc", false))
		},
		OnRetry: func(_ context.Context, e *domain.RetryEvent) {
			r.printf("%s\n", r.styled(fmt.Sprintf("%s (%s) rate limited, retry %d in %s", e.Agent, e.Model, e.Attempt, e.Delay.Round(time.Millisecond)), "#fb7185", false))
		},
		OnDebateDone: func(_ context.Context, e *domain.DebateEvent) {
			label := "Winner: "
			if e.Record.Outcome.Tie {
				label = ""
			}
			r.printf("Votes: %s\n%s\n%s", e.Record.Votes, r.styled(label+e.Record.Outcome.String(), "#f472b6", true), r.rule("="))
		},
	}
}

// BatchStarted implements Reporter.
func (r *TextReporter) BatchStarted(_ context.Context, runID string, motions []domain.Motion) {
	r.printf("Running %d motion(s), %d debate(s) [run %s]\n", len(motions), len(motions)*domain.Seats, runID)
}

// BatchFinished implements Reporter.
func (r *TextReporter) BatchFinished(_ context.Context, report *Report) {
	r.printf("%d debate(s) completed, %d failed\n", len(report.Records), len(report.Failures))
	for _, f := range report.Failures {
		r.printf("%s\n", r.styled(f.Error(), "#fb7185", false))
	}
}

// JSONReporter writes one JSON object per event (JSON Lines).
type JSONReporter struct {
	enc *json.Encoder
	mu  sync.Mutex
}

// NewJSONReporter creates a JSONReporter writing to w (os.Stdout when nil).
func NewJSONReporter(w io.Writer) *JSONReporter {
	if w == nil {
		w = os.Stdout
	}
	return &JSONReporter{enc: json.NewEncoder(w)}
}

func (r *JSONReporter) emit(v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = r.enc.Encode(v)
}

// Hooks implements Reporter.
func (r *JSONReporter) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPhaseEnter: func(_ context.Context, e *domain.PhaseEvent) { r.emit(e) },
		OnUtterance:  func(_ context.Context, e *domain.UtteranceEvent) { r.emit(e) },
		OnVote:       func(_ context.Context, e *domain.VoteEvent) { r.emit(e) },
		OnRetry:      func(_ context.Context, e *domain.RetryEvent) { r.emit(e) },
		OnDebateDone: func(_ context.Context, e *domain.DebateEvent) { r.emit(e) },
	}
}

type batchEvent struct {
	Type     string          `json:"type"`
	RunID    string          `json:"run_id"`
	Motions  []domain.Motion `json:"motions,omitempty"`
	Debates  int             `json:"debates"`
	Failures []string        `json:"failures,omitempty"`
}

// BatchStarted implements Reporter.
func (r *JSONReporter) BatchStarted(_ context.Context, runID string, motions []domain.Motion) {
	r.emit(batchEvent{Type: "batch_started", RunID: runID, Motions: motions, Debates: len(motions) * domain.Seats})
}

// BatchFinished implements Reporter.
func (r *JSONReporter) BatchFinished(_ context.Context, report *Report) {
	e := batchEvent{Type: "batch_finished", RunID: report.RunID, Debates: len(report.Records)}
	for _, f := range report.Failures {
		e.Failures = append(e.Failures, f.Error())
	}
	r.emit(e)
}
