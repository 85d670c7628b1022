package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastRetrier keeps test runtime negligible.
func fastRetrier(maxAttempts int) *Retrier {
	return New(Config{
		MaxAttempts:  maxAttempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
		JitterFactor: -1, // replaced with default by New
	})
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	attempts := 0
	err := fastRetrier(3).Do(context.Background(), func(context.Context) error {
		attempts++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDo_RetriesRetryableUntilSuccess(t *testing.T) {
	attempts := 0
	err := fastRetrier(5).Do(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return Retryable(errors.New("transient"))
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDo_PermanentShortCircuits(t *testing.T) {
	base := errors.New("bad request")
	attempts := 0

	err := fastRetrier(5).Do(context.Background(), func(context.Context) error {
		attempts++
		return Permanent(base)
	})

	assert.Equal(t, 1, attempts)
	assert.Equal(t, base, err, "permanent errors are returned unwrapped")
}

func TestDo_ExhaustedReturnsUnwrappedError(t *testing.T) {
	base := errors.New("still down")
	attempts := 0

	err := fastRetrier(3).Do(context.Background(), func(context.Context) error {
		attempts++
		return Retryable(base)
	})

	assert.Equal(t, 3, attempts)
	assert.Equal(t, base, err)
}

func TestDo_PlainErrorIsNotRetried(t *testing.T) {
	base := errors.New("unexpected")
	attempts := 0

	err := fastRetrier(3).Do(context.Background(), func(context.Context) error {
		attempts++
		return base
	})

	assert.Equal(t, 1, attempts)
	assert.Equal(t, base, err)
}

func TestDo_RetryIfOverridesClassification(t *testing.T) {
	attempts := 0
	r := New(Config{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		RetryIf:      func(error) bool { return true },
	})

	err := r.Do(context.Background(), func(context.Context) error {
		attempts++
		return errors.New("plain but retryable per policy")
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDo_CancelledContextStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := fastRetrier(3).Do(ctx, func(context.Context) error {
		attempts++
		return Retryable(errors.New("transient"))
	})

	assert.Zero(t, attempts)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDo_OnRetryObservesEachRetry(t *testing.T) {
	var observed []int
	r := New(Config{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			observed = append(observed, attempt)
		},
	})

	_ = r.Do(context.Background(), func(context.Context) error {
		return Retryable(errors.New("transient"))
	})

	// The last attempt returns without sleeping, so only two retries fire.
	assert.Equal(t, []int{1, 2}, observed)
}

func TestDoWithData(t *testing.T) {
	attempts := 0
	result, err := DoWithData(context.Background(), fastRetrier(3), func(context.Context) (string, error) {
		attempts++
		if attempts < 2 {
			return "", Retryable(errors.New("transient"))
		}
		return "payload", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "payload", result)
	assert.Equal(t, 2, attempts)
}

func TestCalculateDelay_GrowsAndCaps(t *testing.T) {
	r := New(Config{
		MaxAttempts:  5,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     25 * time.Millisecond,
		Multiplier:   2.0,
		JitterFactor: -1, // invalid, replaced with default; override below
	})
	r.config.JitterFactor = 0

	assert.Equal(t, 10*time.Millisecond, r.calculateDelay(1))
	assert.Equal(t, 20*time.Millisecond, r.calculateDelay(2))
	assert.Equal(t, 25*time.Millisecond, r.calculateDelay(3), "delay is capped at MaxDelay")
}

func TestRetryableHelpers(t *testing.T) {
	assert.Nil(t, Retryable(nil))
	assert.Nil(t, Permanent(nil))

	wrapped := Retryable(errors.New("x"))
	assert.True(t, IsRetryable(wrapped))
	assert.False(t, IsPermanent(wrapped))
	assert.True(t, IsPermanent(Permanent(errors.New("y"))))
}
