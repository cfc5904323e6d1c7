package config_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/agora/internal/config"
	"github.com/aretw0/agora/internal/runtime"
	"github.com/aretw0/agora/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := config.Default()

	assert.Empty(t, cfg.Validate())
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, 5, cfg.Rounds)
	assert.Equal(t, "debate.csv", cfg.TranscriptFile)
	assert.Equal(t, runtime.DefaultSeats(), cfg.SeatArray())

	p := cfg.Policy()
	assert.Equal(t, time.Second, p.InitialDelay)
	assert.Equal(t, 10, p.MaxRetries)
	require.NotNil(t, p.Retryable)
	assert.True(t, p.Retryable(fmt.Errorf("%w: rate limited", domain.ErrTransient)))
	assert.False(t, p.Retryable(errors.New("invalid api key")))
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.NewLoader().Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default().Rounds, cfg.Rounds)
	assert.Len(t, cfg.Seats, 3)
	assert.Equal(t, "Player 1", cfg.Seats[0].Name)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "agora.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
provider: scripted
rounds: 2
format: text
transcript_file: out.txt
mirror: [csv]
seats:
  - {name: Alice, model: m1}
  - {name: Bob, model: m2}
  - {name: Carol, model: m3}
retry:
  initial_delay: 250ms
  max_retries: 3
`), 0644))

	cfg, err := config.NewLoader().Load("")
	require.NoError(t, err)

	assert.Equal(t, "scripted", cfg.Provider)
	assert.Equal(t, 2, cfg.Rounds)
	assert.Equal(t, []string{"csv"}, cfg.Mirror)
	assert.Equal(t, "Carol", cfg.SeatArray()[2].Name)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.InitialDelay)
	assert.Equal(t, 3, cfg.Retry.MaxRetries)
	assert.Equal(t, 2.0, cfg.Retry.Base, "unset keys keep their defaults")
}

func TestLoad_Env(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AGORA_ROUNDS", "3")
	t.Setenv("AGORA_RETRY_MAX_RETRIES", "1")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := config.NewLoader().Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Rounds)
	assert.Equal(t, 1, cfg.Retry.MaxRetries)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.NoError(t, cfg.CheckCredentials())
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("AGORA_TRANSCRIPT_FILE=from-dotenv.csv\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("AGORA_TRANSCRIPT_FILE") })

	cfg, err := config.NewLoader().Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.csv", cfg.TranscriptFile)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := config.NewLoader().Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AGORA_PROVIDER", "llama")
	t.Setenv("AGORA_ROUNDS", "-1")

	_, err := config.NewLoader().Load("")

	var verrs config.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 2)
	assert.Contains(t, err.Error(), "2 validation errors")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		field  string
	}{
		{"bad format", func(c *config.Config) { c.Format = "xml" }, "format"},
		{"missing file", func(c *config.Config) { c.TranscriptFile = "" }, "transcript_file"},
		{"mirror duplicates primary", func(c *config.Config) { c.Mirror = []string{"csv"} }, "mirror[0]"},
		{"redis without addr", func(c *config.Config) { c.Format = "redis"; c.Redis.Addr = "" }, "redis.addr"},
		{"two seats", func(c *config.Config) { c.Seats = c.Seats[:2] }, "seats"},
		{"duplicate seat", func(c *config.Config) {
			c.Seats = []runtime.Seat{{Name: "A", Model: "m"}, {Name: "A", Model: "m"}, {Name: "B", Model: "m"}}
		}, "seats[1].name"},
		{"seat without model", func(c *config.Config) {
			c.Seats = []runtime.Seat{{Name: "A", Model: "m"}, {Name: "B"}, {Name: "C", Model: "m"}}
		}, "seats[1].model"},
		{"negative retries", func(c *config.Config) { c.Retry.MaxRetries = -1 }, "retry.max_retries"},
		{"shrinking base", func(c *config.Config) { c.Retry.Base = 0.5 }, "retry.base"},
		{"constant delay without jitter", func(c *config.Config) { c.Retry.Base = 1; c.Retry.Jitter = false }, "retry.base"},
		{"bad redact pattern", func(c *config.Config) { c.Redact = []string{"("} }, "redact[0]"},
		{"bad log level", func(c *config.Config) { c.Log.Level = "loud" }, "log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			errs := cfg.Validate()
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestValidate_FlatBaseNeedsJitter(t *testing.T) {
	cfg := config.Default()
	cfg.Retry.Base = 1
	cfg.Retry.Jitter = true
	assert.Empty(t, cfg.Validate())

	cfg.Retry.Jitter = false
	errs := cfg.Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, "retry.base", errs[0].Field)
	assert.Contains(t, errs[0].Message, "jitter")
}

func TestCheckCredentials(t *testing.T) {
	cfg := config.Default()
	assert.ErrorContains(t, cfg.CheckCredentials(), "openai.api_key")

	cfg.Provider = "gemini"
	assert.ErrorContains(t, cfg.CheckCredentials(), "GEMINI_API_KEY")

	cfg.Provider = "scripted"
	assert.NoError(t, cfg.CheckCredentials())
}
