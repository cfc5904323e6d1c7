package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/agora/pkg/domain"
	"github.com/aretw0/agora/pkg/prompt"
	"github.com/google/uuid"
)

// Debater holds a single debate. *agora.Engine implements it.
type Debater interface {
	Debate(ctx context.Context, motion domain.Motion, index int, directive string) (*domain.DebateRecord, error)
}

// Failure is a debate that did not complete.
type Failure struct {
	Motion domain.Motion `json:"motion"`
	Index  int           `json:"index"`
	Err    error         `json:"-"`
}

func (f Failure) Error() string {
	return fmt.Sprintf("debate %d on %q: %v", f.Index+1, f.Motion.Topic, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// Report summarises a batch.
type Report struct {
	RunID    string                 `json:"run_id"`
	Records  []*domain.DebateRecord `json:"records"`
	Failures []Failure              `json:"failures,omitempty"`
}

// Runner iterates motions and holds their debates one at a time.
type Runner struct {
	Logger          *slog.Logger
	Reporter        Reporter
	ContinueOnError bool
	RunID           string
	Directive       func(stances []string) string
}

// NewRunner creates a Runner with the given options.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Directive: prompt.Voting,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Logger == nil {
		r.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if r.Reporter == nil {
		r.Reporter = NopReporter{}
	}
	if r.RunID == "" {
		r.RunID = uuid.NewString()
	}
	return r
}

// Run holds, for every motion in order, one debate per stance position.
// The debate index (and rotation offset) restarts at zero for every motion.
//
// By default the first failure stops the batch and is returned; records of
// debates that already finished stay persisted and are part of the report.
func (r *Runner) Run(ctx context.Context, d Debater, motions []domain.Motion) (*Report, error) {
	logger := r.Logger.With("run_id", r.RunID)
	report := &Report{RunID: r.RunID}

	for _, m := range motions {
		if err := m.Validate(); err != nil {
			return report, err
		}
	}

	r.Reporter.BatchStarted(ctx, r.RunID, motions)
	logger.InfoContext(ctx, "batch started", "motions", len(motions))

	err := r.run(ctx, logger, d, motions, report)

	r.Reporter.BatchFinished(ctx, report)
	logger.InfoContext(ctx, "batch finished", "debates", len(report.Records), "failures", len(report.Failures))
	return report, err
}

func (r *Runner) run(ctx context.Context, logger *slog.Logger, d Debater, motions []domain.Motion, report *Report) error {
	for _, m := range motions {
		directive := r.Directive(m.Stances)
		for i := range m.Stances {
			if err := ctx.Err(); err != nil {
				return err
			}

			rec, err := d.Debate(ctx, m, i, directive)
			if err != nil {
				f := Failure{Motion: m, Index: i, Err: err}
				report.Failures = append(report.Failures, f)
				logger.ErrorContext(ctx, "debate failed", "topic", m.Topic, "debate", i+1, "error", err)
				if !r.ContinueOnError || ctx.Err() != nil {
					return f
				}
				continue
			}
			report.Records = append(report.Records, rec)
		}
	}

	if len(report.Failures) > 0 {
		errs := make([]error, len(report.Failures))
		for i, f := range report.Failures {
			errs[i] = f
		}
		return errors.Join(errs...)
	}
	return nil
}
