package retry_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/agora/pkg/domain"
	"github.com/aretw0/agora/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	sleeps []time.Duration
}

func (r *recorder) sleep(_ context.Context, d time.Duration) error {
	r.sleeps = append(r.sleeps, d)
	return nil
}

func failing(k int, cause error) (func(context.Context) (string, error), *int) {
	calls := 0
	return func(context.Context) (string, error) {
		calls++
		if calls <= k {
			return "", cause
		}
		return "ok", nil
	}, &calls
}

func testPolicy(rec *recorder, maxRetries int) retry.Policy {
	return retry.Policy{
		InitialDelay: 10 * time.Millisecond,
		Base:         2,
		Jitter:       true,
		MaxRetries:   maxRetries,
		Sleep:        rec.sleep,
		Rand:         func() float64 { return 0.5 },
	}
}

var rateLimited = fmt.Errorf("%w: 429 too many requests", domain.ErrTransient)

func TestDo_RecoversAfterTransientFailures(t *testing.T) {
	for k := 0; k <= 4; k++ {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			rec := &recorder{}
			fn, calls := failing(k, rateLimited)

			got, err := retry.Do(context.Background(), testPolicy(rec, 4), fn)

			require.NoError(t, err)
			assert.Equal(t, "ok", got)
			assert.Equal(t, k+1, *calls)
			require.Len(t, rec.sleeps, k)
			for i := 1; i < len(rec.sleeps); i++ {
				assert.Greater(t, rec.sleeps[i], rec.sleeps[i-1], "delays strictly increase")
			}
		})
	}
}

func TestDo_BackoffFormula(t *testing.T) {
	rec := &recorder{}
	fn, _ := failing(3, rateLimited)

	_, err := retry.Do(context.Background(), testPolicy(rec, 5), fn)
	require.NoError(t, err)

	// 10ms * 2 * 1.5 = 30ms, then 90ms, then 270ms.
	assert.Equal(t, []time.Duration{30 * time.Millisecond, 90 * time.Millisecond, 270 * time.Millisecond}, rec.sleeps)
}

func TestDo_WithoutJitter(t *testing.T) {
	rec := &recorder{}
	p := testPolicy(rec, 5)
	p.Jitter = false
	p.Rand = func() float64 { panic("rand must not be used without jitter") }
	fn, _ := failing(2, rateLimited)

	_, err := retry.Do(context.Background(), p, fn)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{20 * time.Millisecond, 40 * time.Millisecond}, rec.sleeps)
}

func TestDo_Exhausted(t *testing.T) {
	rec := &recorder{}
	fn, calls := failing(10, rateLimited)

	_, err := retry.Do(context.Background(), testPolicy(rec, 3), fn)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRetryExhausted)
	assert.ErrorIs(t, err, domain.ErrTransient, "the last failure stays inspectable")

	var exhausted *domain.RetryExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 4, exhausted.Attempts)
	assert.Equal(t, 3, exhausted.MaxRetries)
	assert.Equal(t, 4, *calls)
	assert.Len(t, rec.sleeps, 3, "exactly max_retries sleeps")
}

func TestDo_ZeroRetries(t *testing.T) {
	rec := &recorder{}
	fn, calls := failing(1, rateLimited)

	_, err := retry.Do(context.Background(), testPolicy(rec, 0), fn)

	assert.ErrorIs(t, err, domain.ErrRetryExhausted)
	assert.Equal(t, 1, *calls)
	assert.Empty(t, rec.sleeps)
}

func TestDo_NonTransientPropagatesImmediately(t *testing.T) {
	rec := &recorder{}
	boom := fmt.Errorf("%w: invalid api key", domain.ErrUnrecoverable)
	fn, calls := failing(5, boom)

	_, err := retry.Do(context.Background(), testPolicy(rec, 10), fn)

	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrRetryExhausted)
	assert.Equal(t, 1, *calls, "no retry")
	assert.Empty(t, rec.sleeps, "no sleep")
}

func TestDo_CustomPredicate(t *testing.T) {
	rec := &recorder{}
	flaky := errors.New("flaky")
	p := testPolicy(rec, 3)
	p.Retryable = func(err error) bool { return errors.Is(err, flaky) }
	fn, _ := failing(2, flaky)

	got, err := retry.Do(context.Background(), p, fn)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Len(t, rec.sleeps, 2)
}

func TestDo_OnRetry(t *testing.T) {
	rec := &recorder{}
	p := testPolicy(rec, 3)
	var retries []int
	p.OnRetry = func(_ context.Context, n int, d time.Duration, err error) {
		retries = append(retries, n)
		assert.ErrorIs(t, err, domain.ErrTransient)
		assert.Positive(t, d)
	}
	fn, _ := failing(2, rateLimited)

	_, err := retry.Do(context.Background(), p, fn)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, retries)
}

func TestDo_CancelledWhileSleeping(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := retry.Policy{InitialDelay: time.Hour, Base: 2, MaxRetries: 3}
	fn, calls := failing(5, rateLimited)

	go cancel()
	_, err := retry.Do(ctx, p, fn)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, *calls)
}

func TestWrap(t *testing.T) {
	rec := &recorder{}
	fn, _ := failing(1, rateLimited)

	wrapped := retry.Wrap(testPolicy(rec, 2), fn)
	got, err := wrapped(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Len(t, rec.sleeps, 1)
}

func TestDefaultPolicy(t *testing.T) {
	p := retry.DefaultPolicy()
	assert.Equal(t, time.Second, p.InitialDelay)
	assert.Equal(t, 2.0, p.Base)
	assert.True(t, p.Jitter)
	assert.Equal(t, 10, p.MaxRetries)
	require.NotNil(t, p.Retryable)
	assert.True(t, p.Retryable(fmt.Errorf("%w: 429", domain.ErrTransient)))
	assert.False(t, p.Retryable(errors.New("bad request")))
}
