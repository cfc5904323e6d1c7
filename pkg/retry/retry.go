// Package retry wraps remote calls with bounded exponential backoff.
//
// Only failures accepted by Policy.Retryable are retried; everything else
// propagates on the first attempt. Between attempts the delay grows as
//
//	delay *= Base * (1 + jitter*rand[0,1))
//
// starting from InitialDelay, where jitter is 1 when Policy.Jitter is set.
package retry

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/aretw0/agora/pkg/domain"
)

// Policy configures the retry loop.
type Policy struct {
	InitialDelay time.Duration
	Base         float64
	Jitter       bool
	MaxRetries   int

	// Retryable reports whether err belongs to the transient class.
	// Defaults to errors.Is(err, domain.ErrTransient).
	Retryable func(error) bool

	// Sleep blocks for d. Defaults to a timer that also returns on ctx cancellation.
	Sleep func(ctx context.Context, d time.Duration) error

	// Rand returns a value in [0,1). Defaults to math/rand/v2.
	Rand func() float64

	// OnRetry is called before every sleep with the 1-based retry number.
	OnRetry func(ctx context.Context, retry int, delay time.Duration, err error)
}

// DefaultPolicy returns the policy used for chat completions:
// 1s initial delay, base 2, jitter enabled, at most 10 retries.
func DefaultPolicy() Policy {
	return Policy{
		InitialDelay: time.Second,
		Base:         2,
		Jitter:       true,
		MaxRetries:   10,
		Retryable:    IsTransient,
	}
}

// IsTransient is the default Retryable predicate.
func IsTransient(err error) bool {
	return errors.Is(err, domain.ErrTransient)
}

// SleepContext waits for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (p Policy) withDefaults() Policy {
	if p.Retryable == nil {
		p.Retryable = IsTransient
	}
	if p.Sleep == nil {
		p.Sleep = SleepContext
	}
	if p.Rand == nil {
		p.Rand = rand.Float64
	}
	return p
}

// Do calls fn until it succeeds, fails with a non-retryable error, or the
// retry budget is spent. In the last case the returned error is a
// *domain.RetryExhaustedError wrapping the final failure.
func Do[T any](ctx context.Context, p Policy, fn func(context.Context) (T, error)) (T, error) {
	p = p.withDefaults()

	var zero T
	delay := float64(p.InitialDelay)
	retries := 0
	for {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if !p.Retryable(err) {
			return zero, err
		}

		retries++
		if retries > p.MaxRetries {
			return zero, &domain.RetryExhaustedError{Attempts: retries, MaxRetries: p.MaxRetries, Last: err}
		}

		jitter := 0.0
		if p.Jitter {
			jitter = p.Rand()
		}
		delay *= p.Base * (1 + jitter)
		d := time.Duration(delay)

		if p.OnRetry != nil {
			p.OnRetry(ctx, retries, d, err)
		}
		if err := p.Sleep(ctx, d); err != nil {
			return zero, err
		}
	}
}

// Wrap returns fn guarded by the policy.
func Wrap[T any](p Policy, fn func(context.Context) (T, error)) func(context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		return Do(ctx, p, fn)
	}
}
