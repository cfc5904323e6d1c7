package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/agora"
	"github.com/aretw0/agora/internal/config"
	"github.com/aretw0/agora/internal/presentation/tui"
	"github.com/aretw0/agora/pkg/catalog"
	"github.com/aretw0/agora/pkg/domain"
	"github.com/aretw0/agora/pkg/observability"
	"github.com/aretw0/agora/pkg/runner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RunOptions holds the per-invocation flags of `agora run`.
type RunOptions struct {
	// Topic and Stances replace the catalogue with a single motion.
	Topic   string
	Stances []string
	JSON    bool
	Quiet   bool
	Debug   bool
	Stdout  io.Writer
}

// motions resolves the batch: an inline motion wins over the catalogue.
func motions(ctx context.Context, cfg *config.Config, opts RunOptions) ([]domain.Motion, error) {
	if opts.Topic != "" || len(opts.Stances) > 0 {
		m := domain.Motion{Topic: opts.Topic, Stances: opts.Stances}
		if err := m.Validate(); err != nil {
			return nil, err
		}
		return []domain.Motion{m}, nil
	}
	return catalog.Load(ctx, cfg.Topics)
}

func newReporter(opts RunOptions) runner.Reporter {
	switch {
	case opts.JSON:
		return runner.NewJSONReporter(opts.Stdout)
	case opts.Quiet:
		return runner.NopReporter{}
	default:
		if isTerminal(opts.Stdout) {
			tui.PrintBanner(opts.Stdout)
		}
		return runner.NewTextReporter(opts.Stdout)
	}
}

// serveMetrics exposes reg on addr until ctx is done.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		logger.Info("Metrics listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", "err", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}

// Execute runs the debate batch described by cfg and opts.
func Execute(ctx context.Context, cfg *config.Config, opts RunOptions) error {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	logger := createLogger(cfg, opts.Debug, opts.Quiet)

	batch, err := motions(ctx, cfg, opts)
	if err != nil {
		return err
	}

	client, err := NewCompleter(ctx, cfg)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	if cfg.Metrics.Addr != "" {
		stop := serveMetrics(ctx, cfg.Metrics.Addr, reg, logger)
		defer stop()
	}

	store, closeStore, err := OpenTranscriptStore(cfg, logger, metrics)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("Failed to close transcript store", "err", err)
		}
	}()

	reporter := newReporter(opts)
	hooks := []domain.LifecycleHooks{reporter.Hooks(), metrics.Hooks()}
	if opts.Debug {
		hooks = append(hooks, createDebugHooks(logger))
	}

	engine, err := agora.New(client,
		agora.WithStore(store),
		agora.WithRetryPolicy(cfg.Policy()),
		agora.WithRounds(cfg.Rounds),
		agora.WithSeats(cfg.SeatArray()),
		agora.WithLogger(logger),
		agora.WithLifecycleHooks(domain.MergeHooks(hooks...)),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}

	r := runner.NewRunner(
		runner.WithLogger(logger),
		runner.WithReporter(reporter),
		runner.WithContinueOnError(cfg.ContinueOnError),
	)
	report, err := r.Run(ctx, engine, batch)
	if err != nil && isInterrupted(err) && !opts.JSON && !opts.Quiet {
		printSystemMessage(opts.Stdout, "Interrupted after %d debate(s).", len(report.Records))
	}
	return handleExecutionError(err)
}
