package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/agora/internal/config"
	"github.com/aretw0/agora/internal/presentation/graph"
	"github.com/aretw0/agora/internal/presentation/tui"
	httpAdapter "github.com/aretw0/agora/pkg/adapters/http"
	"github.com/aretw0/agora/pkg/adapters/mcp"
	"github.com/aretw0/agora/pkg/domain"
	"github.com/aretw0/agora/pkg/editor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// OpenEditor loads the configured transcript into an editor.
// The returned function releases the underlying store.
func OpenEditor(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*editor.Editor, func() error, error) {
	store, closeStore, err := OpenEditableStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	ed, err := editor.Open(ctx, store, editor.WithLogger(logger))
	if err != nil {
		_ = closeStore()
		return nil, nil, err
	}
	return ed, closeStore, nil
}

// ListTopics prints every topic of the transcript with its debate numbers.
func ListTopics(ctx context.Context, cfg *config.Config, w io.Writer) error {
	ed, closeStore, err := OpenEditor(ctx, cfg, createLogger(cfg, false, false))
	if err != nil {
		return err
	}
	defer closeStore()

	topics := ed.Topics()
	if len(topics) == 0 {
		printSystemMessage(w, "No debates recorded yet.")
		return nil
	}
	for _, topic := range topics {
		fmt.Fprintf(w, "%s %v\n", topic, ed.Numbers(topic))
	}
	return nil
}

// ShowOptions selects the rendering of `agora show`.
type ShowOptions struct {
	Mermaid bool
	// Raw prints plain markdown even on a terminal.
	Raw bool
}

// Show prints one debate as markdown or as a mermaid diagram.
func Show(ctx context.Context, cfg *config.Config, key domain.Key, opts ShowOptions, w io.Writer) error {
	ed, closeStore, err := OpenEditor(ctx, cfg, createLogger(cfg, false, false))
	if err != nil {
		return err
	}
	defer closeStore()

	rec, err := ed.Record(key)
	if err != nil {
		return err
	}

	if opts.Mermaid {
		fmt.Fprint(w, graph.GenerateMermaid(rec))
		return nil
	}

	md := tui.RecordMarkdown(rec)
	if opts.Raw || !isTerminal(w) {
		fmt.Fprint(w, md)
		return nil
	}
	out, err := tui.NewRenderer()(md)
	if err != nil {
		return fmt.Errorf("failed to render debate: %w", err)
	}
	fmt.Fprint(w, out)
	return nil
}

// Edit opens the interactive agent-votes editor on the transcript.
func Edit(ctx context.Context, cfg *config.Config, debug bool) error {
	ed, closeStore, err := OpenEditor(ctx, cfg, createLogger(cfg, debug, false))
	if err != nil {
		return err
	}
	defer closeStore()

	if len(ed.Records()) == 0 {
		return fmt.Errorf("%w: transcript is empty", domain.ErrDebateNotFound)
	}
	return handleExecutionError(tui.RunEditor(ctx, ed))
}

// Serve exposes the transcript editor over HTTP until ctx is done.
func Serve(ctx context.Context, cfg *config.Config, addr string, debug bool, w io.Writer) error {
	logger := createLogger(cfg, debug, false)
	ed, closeStore, err := OpenEditor(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	handler := httpAdapter.NewHandler(ed,
		httpAdapter.WithLogger(logger),
		httpAdapter.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
	)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	serverErrors := make(chan error, 1)
	go func() {
		printSystemMessage(w, "Serving %s on %s", cfg.Format, srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Graceful shutdown did not complete", "err", err)
			return srv.Close()
		}
		printSystemMessage(w, "Server stopped gracefully")
		return nil
	}
}

// ServeMCP exposes the transcript editor as MCP tools over stdio or SSE.
// Logs always go to Stderr so they never corrupt the stdio JSON-RPC stream.
func ServeMCP(ctx context.Context, cfg *config.Config, transport string, port int, debug bool) error {
	logger := createLogger(cfg, debug, false)
	ed, closeStore, err := OpenEditor(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	srv := mcp.NewServer(ed, logger)
	switch transport {
	case "stdio":
		logger.Info("Starting agora MCP server (stdio)")
		return srv.ServeStdio()
	case "sse":
		logger.Info("Starting agora MCP server (SSE)", "port", port)
		return srv.ServeSSE(ctx, port)
	default:
		return fmt.Errorf("%w: transport %q, use stdio or sse", domain.ErrUnsupported, transport)
	}
}
