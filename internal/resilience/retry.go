package resilience

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
)

// Policy controls retry behavior for a single network call.
type Policy struct {
	// MaxAttempts is the total number of attempts (including the first try).
	// A value of 1 means no retries. Default: 3.
	MaxAttempts int

	// BaseDelay is the delay unit. Throttled attempts sleep
	// BaseDelay * 2^attempt; other transient failures sleep BaseDelay flat.
	// Default: 1s.
	BaseDelay time.Duration

	// OnRetry is called before each retry sleep with attempt number and error.
	OnRetry func(attempt int, err error)
}

// DefaultPolicy returns the retry policy used for CRM API calls.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
	}
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = time.Second
	}
	return p
}

// delayFor computes the sleep before the next attempt. Throttling backs off
// exponentially; every other transient failure waits the flat base delay.
func (p Policy) delayFor(attempt int, err error) time.Duration {
	if IsThrottle(err) {
		return time.Duration(float64(p.BaseDelay) * math.Pow(2, float64(attempt)))
	}
	return p.BaseDelay
}

// DoVal executes fn with retries per the policy. Non-transient errors return
// immediately. Exhausting all attempts returns ErrNoData: the caller treats
// the page or record as absent and continues. Context cancellation stops
// retries immediately with the context error.
func DoVal[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	p = p.withDefaults()

	var zero T
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		if !IsTransient(err) {
			// 4xx and friends: retrying will not help.
			return zero, ErrNoData
		}

		if attempt >= p.MaxAttempts-1 {
			break
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt+1, err)
		}

		timer := time.NewTimer(p.delayFor(attempt, err))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, ErrNoData
}

// Do executes fn with retries per the policy. Same semantics as DoVal without
// a return value.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	_, err := DoVal(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// RetryLogger returns an OnRetry callback that logs each retry attempt.
func RetryLogger(service, operation string) func(int, error) {
	return func(attempt int, err error) {
		zap.L().Warn("retrying operation",
			zap.String("service", service),
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
}
