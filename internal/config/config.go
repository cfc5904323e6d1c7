// Package config loads the agora CLI configuration from defaults, an
// optional agora.yaml, AGORA_* environment variables and command flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/aretw0/agora/internal/runtime"
	"github.com/aretw0/agora/pkg/adapters/file"
	"github.com/aretw0/agora/pkg/adapters/redis"
	"github.com/aretw0/agora/pkg/domain"
	"github.com/aretw0/agora/pkg/retry"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. AGORA_ROUNDS.
const EnvPrefix = "AGORA"

// Config is the complete CLI configuration.
type Config struct {
	// Provider selects the chat completer: openai, gemini or scripted.
	Provider string `mapstructure:"provider"`
	Rounds   int    `mapstructure:"rounds"`
	// Topics is a motion catalogue file or directory; empty uses the built-in motions.
	Topics string `mapstructure:"topics"`
	// Format selects the transcript store: csv, text or redis.
	Format         string `mapstructure:"format"`
	TranscriptFile string `mapstructure:"transcript_file"`
	// Mirror lists additional formats every debate is also appended to.
	Mirror          []string       `mapstructure:"mirror"`
	ContinueOnError bool           `mapstructure:"continue_on_error"`
	Seats           []runtime.Seat `mapstructure:"seats"`
	// Redact holds regular expressions masked in transcripts before they are stored.
	Redact  []string      `mapstructure:"redact"`
	Retry   RetryConfig   `mapstructure:"retry"`
	OpenAI  OpenAIConfig  `mapstructure:"openai"`
	Gemini  GeminiConfig  `mapstructure:"gemini"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Log     LogConfig     `mapstructure:"log"`
}

// RetryConfig mirrors retry.Policy.
type RetryConfig struct {
	InitialDelay time.Duration `mapstructure:"initial_delay"`
	Base         float64       `mapstructure:"base"`
	Jitter       bool          `mapstructure:"jitter"`
	MaxRetries   int           `mapstructure:"max_retries"`
}

// OpenAIConfig configures the OpenAI provider.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// GeminiConfig configures the Gemini provider.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// RedisConfig configures the redis transcript store.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
	// Lock guards appends and rewrites with a distributed lock.
	Lock bool `mapstructure:"lock"`
}

// MetricsConfig configures the Prometheus endpoint of `agora run`.
type MetricsConfig struct {
	// Addr enables /metrics on the given listen address when set.
	Addr string `mapstructure:"addr"`
}

// LogConfig configures the application logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	seats := runtime.DefaultSeats()
	policy := retry.DefaultPolicy()
	return &Config{
		Provider:       "openai",
		Rounds:         runtime.DefaultRounds,
		Format:         "csv",
		TranscriptFile: file.DefaultTranscriptFile,
		Seats:          seats[:],
		Retry: RetryConfig{
			InitialDelay: policy.InitialDelay,
			Base:         policy.Base,
			Jitter:       policy.Jitter,
			MaxRetries:   policy.MaxRetries,
		},
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: redis.DefaultPrefix,
		},
		Log: LogConfig{Level: "warn"},
	}
}

// Policy builds the retry policy of the configuration.
func (c *Config) Policy() retry.Policy {
	p := retry.DefaultPolicy()
	p.InitialDelay = c.Retry.InitialDelay
	p.Base = c.Retry.Base
	p.Jitter = c.Retry.Jitter
	p.MaxRetries = c.Retry.MaxRetries
	return p
}

// SeatArray returns the seats as the fixed-size array the engine expects.
// Call it on a validated configuration.
func (c *Config) SeatArray() [domain.Seats]runtime.Seat {
	var out [domain.Seats]runtime.Seat
	copy(out[:], c.Seats)
	return out
}

// Loader wraps a dedicated viper instance so tests and commands never share global state.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader with defaults and environment bindings in place.
func NewLoader() *Loader {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	// AGORA_RETRY_MAX_RETRIES for retry.max_retries
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("openai.api_key", "AGORA_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("openai.base_url", "AGORA_OPENAI_BASE_URL", "OPENAI_BASE_URL")
	_ = v.BindEnv("gemini.api_key", "AGORA_GEMINI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("redis.addr", "AGORA_REDIS_ADDR", "REDIS_ADDR")

	return &Loader{v: v}
}

// Viper exposes the instance so commands can bind their flags.
func (l *Loader) Viper() *viper.Viper { return l.v }

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("provider", d.Provider)
	v.SetDefault("rounds", d.Rounds)
	v.SetDefault("topics", d.Topics)
	v.SetDefault("format", d.Format)
	v.SetDefault("transcript_file", d.TranscriptFile)
	v.SetDefault("mirror", d.Mirror)
	v.SetDefault("continue_on_error", d.ContinueOnError)
	v.SetDefault("seats", d.Seats)
	v.SetDefault("redact", d.Redact)

	v.SetDefault("retry.initial_delay", d.Retry.InitialDelay)
	v.SetDefault("retry.base", d.Retry.Base)
	v.SetDefault("retry.jitter", d.Retry.Jitter)
	v.SetDefault("retry.max_retries", d.Retry.MaxRetries)

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("gemini.api_key", "")

	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", d.Redis.Prefix)
	v.SetDefault("redis.lock", false)

	v.SetDefault("metrics.addr", "")
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.json", false)
}

// Load reads .env (when present), the config file and the environment, then validates.
// An empty path looks for agora.yaml in the working directory and tolerates its absence.
func (l *Loader) Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if path != "" {
		l.v.SetConfigFile(path)
	} else {
		l.v.SetConfigName("agora")
		l.v.SetConfigType("yaml")
		l.v.AddConfigPath(".")
	}
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}
