package agora

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/aretw0/agora/internal/runtime"
	"github.com/aretw0/agora/pkg/domain"
	"github.com/aretw0/agora/pkg/generator"
	"github.com/aretw0/agora/pkg/ports"
	"github.com/aretw0/agora/pkg/retry"
)

// Seat names an agent and the model that speaks for it.
type Seat = runtime.Seat

// DefaultSeats returns "Player 1" on gpt-4o-mini against "Player 2" and "Player 3" on gpt-4o.
func DefaultSeats() [domain.Seats]Seat { return runtime.DefaultSeats() }

// Engine is the high-level entry point for the agora library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	orchestrator *runtime.Orchestrator
	client       ports.ChatCompleter
	store        ports.TranscriptStore
	policy       retry.Policy
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
	rounds       int
	seats        [domain.Seats]Seat
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithStore sets the transcript store finished debates are appended to.
func WithStore(s ports.TranscriptStore) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithRetryPolicy replaces the default backoff policy (1s, base 2, jitter, 10 retries).
func WithRetryPolicy(p retry.Policy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithRounds sets the number of speaking rounds (default 5).
func WithRounds(n int) Option {
	return func(e *Engine) {
		e.rounds = n
	}
}

// WithSeats sets the names and models of the three seats.
func WithSeats(seats [domain.Seats]Seat) Option {
	return func(e *Engine) {
		e.seats = seats
	}
}

// New initializes an Engine talking to client.
// The client is owned by the caller and lives as long as the engine is used.
func New(client ports.ChatCompleter, opts ...Option) (*Engine, error) {
	if client == nil {
		return nil, errors.New("a chat completer is required")
	}

	eng := &Engine{
		client: client,
		policy: retry.DefaultPolicy(),
		rounds: runtime.DefaultRounds,
		seats:  runtime.DefaultSeats(),
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	gen := generator.New(client,
		generator.WithRetryPolicy(eng.policy),
		generator.WithHooks(eng.hooks),
		generator.WithLogger(eng.logger),
	)
	eng.orchestrator = runtime.NewOrchestrator(gen,
		runtime.WithStore(eng.store),
		runtime.WithRounds(eng.rounds),
		runtime.WithSeats(eng.seats),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
	)
	return eng, nil
}

// Debate holds debate number index+1 on motion and returns its record.
// index also rotates the stances across seats. An empty directive uses the
// standard voting directive.
func (e *Engine) Debate(ctx context.Context, motion domain.Motion, index int, directive string) (*domain.DebateRecord, error) {
	return e.orchestrator.Run(ctx, motion, index, directive)
}

// Rounds returns the configured number of speaking rounds.
func (e *Engine) Rounds() int { return e.rounds }

// Seats returns the configured seats.
func (e *Engine) Seats() [domain.Seats]Seat { return e.seats }
