package middleware_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/aretw0/agora/pkg/adapters/memory"
	"github.com/aretw0/agora/pkg/domain"
	"github.com/aretw0/agora/pkg/persistence/middleware"
	"github.com/aretw0/agora/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{ err error }

func (s failingStore) Append(ctx context.Context, record *domain.DebateRecord) error {
	return s.err
}

func TestMirrorMiddleware(t *testing.T) {
	ctx := context.Background()
	primary, secondary := memory.NewStore(), memory.NewStore()
	store := middleware.NewMirrorMiddleware(secondary)(primary)

	require.NoError(t, store.Append(ctx, ports.ContractRecord("X", 0, "a", "a", "b")))

	assert.Equal(t, 1, primary.Len())
	assert.Equal(t, 1, secondary.Len())
}

func TestMirrorMiddleware_Failures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	t.Run("primary failure skips mirrors", func(t *testing.T) {
		secondary := memory.NewStore()
		store := middleware.NewMirrorMiddleware(secondary)(failingStore{err: boom})

		err := store.Append(ctx, ports.ContractRecord("X", 0, "a"))
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 0, secondary.Len())
	})

	t.Run("mirror failure still writes others", func(t *testing.T) {
		primary, last := memory.NewStore(), memory.NewStore()
		store := middleware.NewMirrorMiddleware(failingStore{err: boom}, last)(primary)

		err := store.Append(ctx, ports.ContractRecord("X", 0, "a"))
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "mirror 0")
		assert.Equal(t, 1, primary.Len())
		assert.Equal(t, 1, last.Len())
	})
}

func TestRedactMiddleware(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewStore()
	store := middleware.NewRedactMiddleware([]string{`sk-[A-Za-z0-9]+`})(inner)

	rec := ports.ContractRecord("X", 0, "a")
	rec.Transcript = domain.Transcript{"Player 1: my key is sk-abc123", "Player 2: fine"}
	require.NoError(t, store.Append(ctx, rec))

	got, err := inner.Get(ctx, rec.Key())
	require.NoError(t, err)
	assert.Equal(t, domain.Utterance("Player 1: my key is ***"), got.Transcript[0])
	assert.Equal(t, domain.Utterance("Player 2: fine"), got.Transcript[1])
	assert.Equal(t, domain.Utterance("Player 1: my key is sk-abc123"), rec.Transcript[0], "caller record is not mutated")
}

func TestLoggingMiddleware(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	store := middleware.NewLoggingMiddleware(logger)(memory.NewStore())
	require.NoError(t, store.Append(ctx, ports.ContractRecord("X", 1, "a")))
	assert.Contains(t, buf.String(), "transcript appended")
	assert.Contains(t, buf.String(), "debate=2")

	buf.Reset()
	failing := middleware.NewLoggingMiddleware(logger)(failingStore{err: domain.ErrPersistence})
	assert.ErrorIs(t, failing.Append(ctx, ports.ContractRecord("X", 0, "a")), domain.ErrPersistence)
	assert.Contains(t, buf.String(), "transcript append failed")
}

func TestChain(t *testing.T) {
	ctx := context.Background()
	inner, mirror := memory.NewStore(), memory.NewStore()
	store := middleware.Chain(inner,
		middleware.NewRedactMiddleware([]string{`secret`}),
		middleware.NewMirrorMiddleware(mirror),
	)

	rec := ports.ContractRecord("X", 0, "a")
	rec.Transcript = domain.Transcript{"Player 1: secret"}
	require.NoError(t, store.Append(ctx, rec))

	got, err := mirror.Get(ctx, rec.Key())
	require.NoError(t, err)
	assert.Equal(t, domain.Utterance("Player 1: ***"), got.Transcript[0])
	assert.Equal(t, 1, inner.Len())
}
