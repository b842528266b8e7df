package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}
}

func TestDoVal_SuccessFirstTry(t *testing.T) {
	calls := 0
	got, err := DoVal(context.Background(), fastPolicy(), func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 1, calls)
}

func TestDoVal_TransientThenSuccess(t *testing.T) {
	calls := 0
	got, err := DoVal(context.Background(), fastPolicy(), func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", NewTransientError(errors.New("bad gateway"), 502)
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
}

func TestDoVal_ExhaustionDegradesToNoData(t *testing.T) {
	calls := 0
	_, err := DoVal(context.Background(), fastPolicy(), func(ctx context.Context) (int, error) {
		calls++
		return 0, NewTransientError(errors.New("still down"), 503)
	})
	assert.ErrorIs(t, err, ErrNoData)
	assert.Equal(t, 3, calls)
}

func TestDoVal_NonTransientFailsImmediately(t *testing.T) {
	calls := 0
	_, err := DoVal(context.Background(), fastPolicy(), func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("status 404")
	})
	assert.ErrorIs(t, err, ErrNoData)
	assert.Equal(t, 1, calls, "non-retryable errors must not be retried")
}

func TestDoVal_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := DoVal(ctx, Policy{MaxAttempts: 5, BaseDelay: time.Minute}, func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, NewTransientError(errors.New("flaky"), 500)
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDoVal_OnRetryCallback(t *testing.T) {
	var attempts []int
	p := Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		OnRetry:     func(attempt int, err error) { attempts = append(attempts, attempt) },
	}
	_, err := DoVal(context.Background(), p, func(ctx context.Context) (int, error) {
		return 0, NewTransientError(errors.New("down"), 500)
	})
	assert.ErrorIs(t, err, ErrNoData)
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestDelayFor_ThrottleBacksOffExponentially(t *testing.T) {
	p := Policy{BaseDelay: time.Second}.withDefaults()
	throttle := &ThrottleError{URL: "http://x"}

	assert.Equal(t, time.Second, p.delayFor(0, throttle))
	assert.Equal(t, 2*time.Second, p.delayFor(1, throttle))
	assert.Equal(t, 4*time.Second, p.delayFor(2, throttle))

	flat := NewTransientError(errors.New("502"), 502)
	assert.Equal(t, time.Second, p.delayFor(2, flat))
}

func TestDo_WrapsDoVal(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(), func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
