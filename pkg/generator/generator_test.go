package generator_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/agora/pkg/adapters/memory"
	"github.com/aretw0/agora/pkg/domain"
	"github.com/aretw0/agora/pkg/generator"
	"github.com/aretw0/agora/pkg/ports"
	"github.com/aretw0/agora/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var agent = domain.Agent{Instruction: "You are Player 1.", Model: "gpt-4o-mini", Name: "Player 1"}

func noSleep() retry.Policy {
	p := retry.DefaultPolicy()
	p.Sleep = func(context.Context, time.Duration) error { return nil }
	return p
}

func TestMessages(t *testing.T) {
	transcript := domain.Transcript{"Player 1: r1", "Player 2: r2"}

	t.Run("turn", func(t *testing.T) {
		msgs := generator.Messages(agent, transcript, "")
		assert.Equal(t, []ports.Message{
			{Role: ports.RoleSystem, Content: "You are Player 1."},
			{Role: ports.RoleUser, Content: "Player 1: r1"},
			{Role: ports.RoleUser, Content: "Player 2: r2"},
		}, msgs)
	})

	t.Run("directive goes last", func(t *testing.T) {
		msgs := generator.Messages(agent, transcript, "vote now")
		require.Len(t, msgs, 4)
		assert.Equal(t, ports.Message{Role: ports.RoleUser, Content: "vote now"}, msgs[3])
	})

	t.Run("empty transcript", func(t *testing.T) {
		msgs := generator.Messages(agent, nil, "")
		assert.Len(t, msgs, 1)
	})
}

func TestGenerate_TurnIsPrefixed(t *testing.T) {
	client := memory.NewCompleter("I argue for democracy.")
	g := generator.New(client, generator.WithRetryPolicy(noSleep()))

	got, err := g.Generate(context.Background(), agent, nil, "")

	require.NoError(t, err)
	assert.Equal(t, domain.Utterance("Player 1: I argue for democracy."), got)
	require.Len(t, client.Calls(), 1)
	assert.Equal(t, "gpt-4o-mini", client.Calls()[0].Model)
}

func TestGenerate_VoteIsVerbatim(t *testing.T) {
	client := memory.NewCompleter("  Democracy\n")
	g := generator.New(client, generator.WithRetryPolicy(noSleep()))

	got, err := g.Generate(context.Background(), agent, domain.Transcript{"Player 2: x"}, "Please vote")

	require.NoError(t, err)
	assert.Equal(t, domain.Utterance("  Democracy\n"), got)
	msgs := client.Calls()[0].Messages
	assert.Equal(t, "Please vote", msgs[len(msgs)-1].Content)
}

func TestGenerate_RetriesRateLimits(t *testing.T) {
	rateLimited := fmt.Errorf("%w: 429", domain.ErrTransient)
	client := memory.NewCompleter().Fail(rateLimited).Fail(rateLimited).Reply("ok")

	var retries []*domain.RetryEvent
	var completions int
	g := generator.New(client,
		generator.WithRetryPolicy(noSleep()),
		generator.WithHooks(domain.LifecycleHooks{
			OnRetry:      func(_ context.Context, e *domain.RetryEvent) { retries = append(retries, e) },
			OnCompletion: func(_ context.Context, e *domain.CompletionEvent) { completions++ },
		}),
	)

	got, err := g.Generate(context.Background(), agent, nil, "")

	require.NoError(t, err)
	assert.Equal(t, domain.Utterance("Player 1: ok"), got)
	require.Len(t, retries, 2)
	assert.Equal(t, 2, retries[1].Attempt)
	assert.Equal(t, "Player 1", retries[0].Agent)
	assert.Equal(t, 3, completions)
}

func TestGenerate_Exhausted(t *testing.T) {
	rateLimited := fmt.Errorf("%w: 429", domain.ErrTransient)
	p := noSleep()
	p.MaxRetries = 2
	client := memory.NewCompleter().Fail(rateLimited).Fail(rateLimited).Fail(rateLimited).Reply("too late")
	g := generator.New(client, generator.WithRetryPolicy(p))

	_, err := g.Generate(context.Background(), agent, nil, "")

	assert.ErrorIs(t, err, domain.ErrRetryExhausted)
	assert.Len(t, client.Calls(), 3)
}

func TestGenerate_UnclassifiedErrorIsUnrecoverable(t *testing.T) {
	boom := errors.New("connection reset")
	client := memory.NewCompleter().Fail(boom).Reply("never")
	g := generator.New(client, generator.WithRetryPolicy(noSleep()))

	_, err := g.Generate(context.Background(), agent, nil, "")

	assert.ErrorIs(t, err, domain.ErrUnrecoverable)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, client.Calls(), 1, "not retried")
}
