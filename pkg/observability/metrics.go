package observability

import (
	"context"

	"github.com/aretw0/agora/pkg/domain"
	"github.com/aretw0/agora/pkg/persistence/middleware"
	"github.com/aretw0/agora/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the debate collectors.
type Metrics struct {
	Phases      *prometheus.CounterVec
	Utterances  *prometheus.CounterVec
	Votes       *prometheus.CounterVec
	Retries     *prometheus.CounterVec
	Completions *prometheus.HistogramVec
	Debates     *prometheus.CounterVec
	Appends     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Phases: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agora_phase_enter_total",
				Help: "Total number of debate phase entries",
			},
			[]string{"phase"},
		),
		Utterances: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agora_utterances_total",
				Help: "Total number of debate turns",
			},
			[]string{"agent"},
		),
		Votes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agora_votes_total",
				Help: "Total number of ballots cast",
			},
			[]string{"agent"},
		),
		Retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agora_retries_total",
				Help: "Total number of retried remote calls",
			},
			[]string{"model"},
		),
		Completions: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agora_completion_duration_seconds",
				Help:    "Duration of remote completions",
				Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"model", "status"},
		),
		Debates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agora_debates_total",
				Help: "Total number of finished debates",
			},
			[]string{"outcome"},
		),
		Appends: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agora_transcript_appends_total",
				Help: "Total number of transcript store appends",
			},
			[]string{"status"},
		),
	}
	reg.MustRegister(m.Phases, m.Utterances, m.Votes, m.Retries, m.Completions, m.Debates, m.Appends)
	return m
}

// Hooks returns lifecycle hooks recording into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPhaseEnter: func(ctx context.Context, e *domain.PhaseEvent) {
			m.Phases.WithLabelValues(string(e.Phase)).Inc()
		},
		OnUtterance: func(ctx context.Context, e *domain.UtteranceEvent) {
			m.Utterances.WithLabelValues(e.Agent).Inc()
		},
		OnVote: func(ctx context.Context, e *domain.VoteEvent) {
			m.Votes.WithLabelValues(e.Agent).Inc()
		},
		OnRetry: func(ctx context.Context, e *domain.RetryEvent) {
			m.Retries.WithLabelValues(e.Model).Inc()
		},
		OnCompletion: func(ctx context.Context, e *domain.CompletionEvent) {
			status := "ok"
			if e.IsError {
				status = "error"
			}
			m.Completions.WithLabelValues(e.Model, status).Observe(e.Duration.Seconds())
		},
		OnDebateDone: func(ctx context.Context, e *domain.DebateEvent) {
			outcome := "win"
			if e.Record.Outcome.Tie {
				outcome = "tie"
			}
			m.Debates.WithLabelValues(outcome).Inc()
		},
	}
}

// Store returns a middleware counting appends by status.
func (m *Metrics) Store() middleware.Middleware {
	return func(next ports.TranscriptStore) ports.TranscriptStore {
		return &countingStore{next: next, appends: m.Appends}
	}
}

type countingStore struct {
	next    ports.TranscriptStore
	appends *prometheus.CounterVec
}

func (s *countingStore) Append(ctx context.Context, record *domain.DebateRecord) error {
	err := s.next.Append(ctx, record)
	if err != nil {
		s.appends.WithLabelValues("error").Inc()
		return err
	}
	s.appends.WithLabelValues("ok").Inc()
	return nil
}
