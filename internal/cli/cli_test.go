package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/agora/internal/config"
	"github.com/aretw0/agora/pkg/adapters/file"
	"github.com/aretw0/agora/pkg/domain"
	"github.com/aretw0/agora/pkg/observability"
	"github.com/aretw0/agora/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scriptedConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	cfg := config.Default()
	cfg.Provider = "scripted"
	cfg.Rounds = 1
	cfg.TranscriptFile = filepath.Join(dir, "out.csv")
	return cfg
}

func TestHandleExecutionError(t *testing.T) {
	assert.NoError(t, handleExecutionError(nil))
	assert.NoError(t, handleExecutionError(context.Canceled))
	assert.NoError(t, handleExecutionError(errors.Join(errors.New("debate 1"), context.Canceled)))

	boom := errors.New("boom")
	assert.ErrorIs(t, handleExecutionError(boom), boom)
}

func TestCreateLogger(t *testing.T) {
	cfg := config.Default()
	ctx := context.Background()

	assert.False(t, createLogger(cfg, false, true).Enabled(ctx, slog.LevelError), "quiet discards everything")
	assert.True(t, createLogger(cfg, true, true).Enabled(ctx, slog.LevelDebug), "debug wins over quiet")

	cfg.Log.Level = "info"
	l := createLogger(cfg, false, false)
	assert.True(t, l.Enabled(ctx, slog.LevelInfo))
	assert.False(t, l.Enabled(ctx, slog.LevelDebug))
}

func TestNewCompleter(t *testing.T) {
	ctx := context.Background()

	cfg := config.Default()
	cfg.OpenAI.APIKey = ""
	_, err := NewCompleter(ctx, cfg)
	var verrs config.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "openai.api_key", verrs[0].Field)

	cfg.OpenAI.APIKey = "sk-test"
	c, err := NewCompleter(ctx, cfg)
	require.NoError(t, err)
	assert.NotNil(t, c)

	cfg.Provider = "scripted"
	c, err = NewCompleter(ctx, cfg)
	require.NoError(t, err)
	reply, err := c.Complete(ctx, "m", []ports.Message{
		{Role: ports.RoleSystem, Content: "You are a proponent of tea. Your argument"},
		{Role: ports.RoleUser, Content: "Please vote"},
	})
	require.NoError(t, err)
	assert.Equal(t, "tea", reply)

	cfg.Provider = "carrier-pigeon"
	_, err = NewCompleter(ctx, cfg)
	assert.ErrorIs(t, err, domain.ErrUnsupported)
}

func TestProviders_MatchConfig(t *testing.T) {
	assert.ElementsMatch(t, config.ValidProviders(), Providers(config.Default()).Names())
}

func TestOpenTranscriptStore_Mirror(t *testing.T) {
	cfg := scriptedConfig(t)
	cfg.Mirror = []string{"text"}
	cfg.Redact = []string{`sk-[a-z]+`}

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	store, closeStore, err := OpenTranscriptStore(cfg, createLogger(cfg, false, true), metrics)
	require.NoError(t, err)
	defer closeStore()

	rec := ports.ContractRecord("Tea", 0, "a", "a", "b")
	rec.Transcript = domain.Transcript{"Player 1: my key is sk-secret"}
	require.NoError(t, store.Append(context.Background(), rec))

	csvData, err := os.ReadFile(cfg.TranscriptFile)
	require.NoError(t, err)
	assert.Contains(t, string(csvData), "Debate Number")
	assert.NotContains(t, string(csvData), "sk-secret")

	textData, err := os.ReadFile(file.DefaultTextFile)
	require.NoError(t, err)
	assert.Contains(t, string(textData), "Tea")
	assert.NotContains(t, string(textData), "sk-secret")

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Appends.WithLabelValues("ok")))
}

func TestOpenTranscriptStore_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := scriptedConfig(t)
	cfg.Format = "redis"
	cfg.Redis.Addr = mr.Addr()
	cfg.Redis.Lock = true

	store, closeStore, err := OpenTranscriptStore(cfg, createLogger(cfg, false, true), nil)
	require.NoError(t, err)
	require.NoError(t, store.Append(context.Background(), ports.ContractRecord("Tea", 0, "a", "a", "b")))
	require.NoError(t, closeStore())

	editable, closeEditable, err := OpenEditableStore(cfg)
	require.NoError(t, err)
	defer closeEditable()
	records, err := editable.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Tea", records[0].Topic)
}

func TestOpenEditableStore_TextUnsupported(t *testing.T) {
	cfg := scriptedConfig(t)
	cfg.Format = "text"

	_, _, err := OpenEditableStore(cfg)
	assert.ErrorIs(t, err, domain.ErrUnsupported)
}

func TestExecute_InlineMotion(t *testing.T) {
	cfg := scriptedConfig(t)
	var out bytes.Buffer

	err := Execute(context.Background(), cfg, RunOptions{
		Topic:   "Breakfast",
		Stances: []string{"tea", "coffee", "juice"},
		Quiet:   true,
		Stdout:  &out,
	})
	require.NoError(t, err)
	assert.Empty(t, out.String())

	store, closeStore, err := OpenEditableStore(cfg)
	require.NoError(t, err)
	defer closeStore()
	records, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, rec := range records {
		assert.Equal(t, "Breakfast", rec.Topic)
		assert.Equal(t, i, rec.Index)
		assert.True(t, rec.Outcome.Tie, "every seat votes for its own stance")
	}
}

func TestExecute_JSON(t *testing.T) {
	cfg := scriptedConfig(t)
	var out bytes.Buffer

	err := Execute(context.Background(), cfg, RunOptions{
		Topic:   "Breakfast",
		Stances: []string{"tea", "coffee", "juice"},
		JSON:    true,
		Stdout:  &out,
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.NotEmpty(t, lines)
	for _, line := range lines {
		assert.True(t, json.Valid([]byte(line)), line)
	}
}

func TestExecute_InvalidMotion(t *testing.T) {
	cfg := scriptedConfig(t)

	err := Execute(context.Background(), cfg, RunOptions{
		Topic:   "Breakfast",
		Stances: []string{"tea", "tea", "juice"},
		Stdout:  &bytes.Buffer{},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidMotion)
}

func TestExecute_Interrupted(t *testing.T) {
	cfg := scriptedConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Execute(ctx, cfg, RunOptions{
		Topic:   "Breakfast",
		Stances: []string{"tea", "coffee", "juice"},
		Quiet:   true,
		Stdout:  &bytes.Buffer{},
	})
	assert.NoError(t, err)
}

func TestShowAndListTopics(t *testing.T) {
	cfg := scriptedConfig(t)
	require.NoError(t, Execute(context.Background(), cfg, RunOptions{
		Topic:   "Breakfast",
		Stances: []string{"tea", "coffee", "juice"},
		Quiet:   true,
		Stdout:  &bytes.Buffer{},
	}))

	var out bytes.Buffer
	require.NoError(t, ListTopics(context.Background(), cfg, &out))
	assert.Equal(t, "Breakfast [1 2 3]\n", out.String())

	out.Reset()
	key := domain.Key{Topic: "Breakfast", Number: 2}
	require.NoError(t, Show(context.Background(), cfg, key, ShowOptions{}, &out))
	assert.Contains(t, out.String(), "Breakfast")
	assert.Contains(t, out.String(), "coffee")

	out.Reset()
	require.NoError(t, Show(context.Background(), cfg, key, ShowOptions{Mermaid: true}, &out))
	assert.True(t, strings.HasPrefix(out.String(), "graph LR"))

	err := Show(context.Background(), cfg, domain.Key{Topic: "Breakfast", Number: 9}, ShowOptions{}, &out)
	assert.ErrorIs(t, err, domain.ErrDebateNotFound)
}

func TestListTopics_Empty(t *testing.T) {
	cfg := scriptedConfig(t)
	var out bytes.Buffer
	require.NoError(t, ListTopics(context.Background(), cfg, &out))
	assert.Contains(t, out.String(), "No debates recorded yet.")
}
