package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/agora/internal/config"
	"github.com/aretw0/agora/pkg/adapters/file"
	"github.com/aretw0/agora/pkg/adapters/gemini"
	"github.com/aretw0/agora/pkg/adapters/memory"
	"github.com/aretw0/agora/pkg/adapters/openai"
	"github.com/aretw0/agora/pkg/adapters/redis"
	"github.com/aretw0/agora/pkg/domain"
	"github.com/aretw0/agora/pkg/observability"
	"github.com/aretw0/agora/pkg/persistence/middleware"
	"github.com/aretw0/agora/pkg/ports"
	"github.com/aretw0/agora/pkg/registry"
	goredis "github.com/redis/go-redis/v9"
)

// Providers registers every chat provider agora ships with, configured from cfg.
func Providers(cfg *config.Config) *registry.Registry {
	r := registry.NewRegistry()
	r.Register("openai", func(ctx context.Context) (ports.ChatCompleter, error) {
		return openai.New(openai.Config{APIKey: cfg.OpenAI.APIKey, BaseURL: cfg.OpenAI.BaseURL}), nil
	})
	r.Register("gemini", func(ctx context.Context) (ports.ChatCompleter, error) {
		return gemini.New(ctx, gemini.Config{APIKey: cfg.Gemini.APIKey})
	})
	r.Register("scripted", func(ctx context.Context) (ports.ChatCompleter, error) {
		return memory.NewDryRun(), nil
	})
	return r
}

// NewCompleter builds the chat completer selected by cfg.Provider.
func NewCompleter(ctx context.Context, cfg *config.Config) (ports.ChatCompleter, error) {
	if err := cfg.CheckCredentials(); err != nil {
		return nil, err
	}
	return Providers(cfg).New(ctx, cfg.Provider)
}

type closer func() error

func nopCloser() error { return nil }

// openFormat opens the store of one format. The primary format writes to
// cfg.TranscriptFile; mirrored file formats use their default file names.
func openFormat(cfg *config.Config, format string, primary bool) (ports.TranscriptStore, closer, error) {
	switch format {
	case "csv":
		path := file.DefaultTranscriptFile
		if primary {
			path = cfg.TranscriptFile
		}
		return file.NewCSVStore(path), nopCloser, nil
	case "text":
		path := file.DefaultTextFile
		if primary {
			path = cfg.TranscriptFile
		}
		return file.NewTextStore(path), nopCloser, nil
	case "redis":
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		opts := []redis.Option{redis.WithPrefix(cfg.Redis.Prefix)}
		if cfg.Redis.Lock {
			opts = append(opts, redis.WithLocker(redis.NewLocker(client, cfg.Redis.Prefix)))
		}
		store := redis.NewFromClient(client, opts...)
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: format %q", domain.ErrUnsupported, format)
	}
}

// OpenTranscriptStore opens the primary store and wraps it with redaction,
// logging, metrics and mirroring.
func OpenTranscriptStore(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (ports.TranscriptStore, func() error, error) {
	primary, closePrimary, err := openFormat(cfg, cfg.Format, true)
	if err != nil {
		return nil, nil, err
	}
	closers := []closer{closePrimary}
	closeAll := func() error {
		var first error
		for _, c := range closers {
			if err := c(); err != nil && first == nil {
				first = err
			}
		}
		return first
	}

	var mirrors []ports.TranscriptStore
	for _, format := range cfg.Mirror {
		m, closeMirror, err := openFormat(cfg, format, false)
		if err != nil {
			_ = closeAll()
			return nil, nil, err
		}
		mirrors = append(mirrors, m)
		closers = append(closers, closeMirror)
	}

	mws := []middleware.Middleware{}
	if len(cfg.Redact) > 0 {
		mws = append(mws, middleware.NewRedactMiddleware(cfg.Redact))
	}
	mws = append(mws, middleware.NewLoggingMiddleware(logger))
	if metrics != nil {
		mws = append(mws, metrics.Store())
	}
	if len(mirrors) > 0 {
		mws = append(mws, middleware.NewMirrorMiddleware(mirrors...))
	}
	return middleware.Chain(primary, mws...), closeAll, nil
}

// OpenEditableStore opens the primary store for reading and rewriting.
// The line-oriented text format is append-only and cannot be edited.
func OpenEditableStore(cfg *config.Config) (ports.EditableStore, func() error, error) {
	store, closeStore, err := openFormat(cfg, cfg.Format, true)
	if err != nil {
		return nil, nil, err
	}
	editable, ok := store.(ports.EditableStore)
	if !ok {
		_ = closeStore()
		return nil, nil, fmt.Errorf("%w: the %s format cannot be read back, use csv or redis", domain.ErrUnsupported, cfg.Format)
	}
	return editable, closeStore, nil
}
