// Package generator produces the next utterance of an agent from the debate transcript.
package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/agora/pkg/domain"
	"github.com/aretw0/agora/pkg/ports"
	"github.com/aretw0/agora/pkg/retry"
)

// Generator turns an agent and a transcript into a chat prompt and returns the model's reply.
type Generator struct {
	client ports.ChatCompleter
	policy retry.Policy
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithRetryPolicy replaces the default retry policy.
func WithRetryPolicy(p retry.Policy) Option {
	return func(g *Generator) {
		g.policy = p
	}
}

// WithHooks registers callbacks for retries and completions.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(g *Generator) {
		g.hooks = h
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = l
	}
}

// New creates a Generator calling client for every completion.
func New(client ports.ChatCompleter, opts ...Option) *Generator {
	g := &Generator{
		client: client,
		policy: retry.DefaultPolicy(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Messages builds the prompt: the agent's instruction, every prior utterance
// in order, then the directive when there is one.
func Messages(agent domain.Agent, transcript domain.Transcript, directive string) []ports.Message {
	msgs := make([]ports.Message, 0, len(transcript)+2)
	msgs = append(msgs, ports.Message{Role: ports.RoleSystem, Content: agent.Instruction})
	for _, u := range transcript {
		msgs = append(msgs, ports.Message{Role: ports.RoleUser, Content: string(u)})
	}
	if directive != "" {
		msgs = append(msgs, ports.Message{Role: ports.RoleUser, Content: directive})
	}
	return msgs
}

// Generate asks the agent's model for its next contribution.
//
// Without a directive the reply is a conversational turn and comes back
// prefixed with "{name}: ". With a directive (a vote request) the reply is
// returned verbatim, whitespace and case included.
func (g *Generator) Generate(ctx context.Context, agent domain.Agent, transcript domain.Transcript, directive string) (domain.Utterance, error) {
	msgs := Messages(agent, transcript, directive)

	policy := g.policy
	userOnRetry := policy.OnRetry
	policy.OnRetry = func(ctx context.Context, n int, delay time.Duration, err error) {
		g.logger.WarnContext(ctx, "rate limited, backing off",
			"agent", agent.Name, "model", agent.Model, "retry", n, "delay", delay, "error", err)
		if g.hooks.OnRetry != nil {
			g.hooks.OnRetry(ctx, &domain.RetryEvent{
				EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventRetry},
				Agent:     agent.Name,
				Model:     agent.Model,
				Attempt:   n,
				Delay:     delay,
				Err:       err.Error(),
			})
		}
		if userOnRetry != nil {
			userOnRetry(ctx, n, delay, err)
		}
	}

	text, err := retry.Do(ctx, policy, func(ctx context.Context) (string, error) {
		return g.complete(ctx, agent, msgs)
	})
	if err != nil {
		return "", classify(err)
	}

	if directive != "" {
		return domain.Utterance(text), nil
	}
	return domain.Utterance(fmt.Sprintf("%s: %s", agent.Name, text)), nil
}

func (g *Generator) complete(ctx context.Context, agent domain.Agent, msgs []ports.Message) (string, error) {
	start := time.Now()
	text, err := g.client.Complete(ctx, agent.Model, msgs)
	elapsed := time.Since(start)

	g.logger.DebugContext(ctx, "completion",
		"agent", agent.Name, "model", agent.Model, "messages", len(msgs), "duration", elapsed, "error", err)
	if g.hooks.OnCompletion != nil {
		g.hooks.OnCompletion(ctx, &domain.CompletionEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventCompletion},
			Agent:     agent.Name,
			Model:     agent.Model,
			Duration:  elapsed,
			IsError:   err != nil,
		})
	}
	return text, err
}

// classify makes sure every failure leaving the generator belongs to the error taxonomy.
func classify(err error) error {
	switch {
	case errors.Is(err, domain.ErrRetryExhausted),
		errors.Is(err, domain.ErrUnrecoverable),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.ErrUnrecoverable, err)
	}
}
