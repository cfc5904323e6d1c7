package runner

import "log/slog"

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithReporter configures where batch progress is reported.
func WithReporter(rep Reporter) Option {
	return func(r *Runner) {
		r.Reporter = rep
	}
}

// WithContinueOnError keeps the batch going after a failed debate.
// Failures are collected in the Report and Run returns them joined at the end.
func WithContinueOnError(enabled bool) Option {
	return func(r *Runner) {
		r.ContinueOnError = enabled
	}
}

// WithRunID sets the identifier attached to logs and reports (default: a random UUID).
func WithRunID(id string) Option {
	return func(r *Runner) {
		r.RunID = id
	}
}

// WithDirective replaces how the voting directive is built from a motion's stances.
func WithDirective(fn func(stances []string) string) Option {
	return func(r *Runner) {
		r.Directive = fn
	}
}
