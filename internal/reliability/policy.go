package reliability

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// Policy describes how a failing call is retried: which errors qualify, the
// exponential schedule and the total attempt budget.
type Policy struct {
	// Retryable reports whether err belongs to the transient category.
	// A nil predicate retries nothing.
	Retryable func(err error) bool
	// Base is the first delay; each further retry doubles it up to Cap.
	Base time.Duration
	Cap  time.Duration
	// MaxAttempts counts the first call too.
	MaxAttempts int
	// OnRetry, when set, is called before sleeping ahead of attempt+1.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// DefaultPolicy waits 1s, 2s, 4s, 8s between five attempts, never more than 30s.
func DefaultPolicy(retryable func(error) bool) Policy {
	return Policy{
		Retryable:   retryable,
		Base:        time.Second,
		Cap:         30 * time.Second,
		MaxAttempts: 5,
	}
}

// Do runs fn until it succeeds, fails with a non-retryable error or the
// attempt budget is spent. The last error is returned unchanged.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var (
		attempt int
		lastErr error
	)
	inner := p.backoff()
	b := retry.BackoffFunc(func() (time.Duration, bool) {
		d, stop := inner.Next()
		if !stop && p.OnRetry != nil {
			p.OnRetry(attempt, d, lastErr)
		}
		return d, stop
	})

	return retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if p.Retryable != nil && p.Retryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// Schedule lists the delays slept between attempts.
func (p Policy) Schedule() []time.Duration {
	n := p.MaxAttempts - 1
	if n <= 0 {
		return nil
	}
	out := make([]time.Duration, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, ExponentialBackoff(i, p.Base, p.Cap))
	}
	return out
}

func (p Policy) backoff() retry.Backoff {
	base := p.Base
	if base <= 0 {
		base = time.Second
	}
	capDur := p.Cap
	if capDur < base {
		capDur = base
	}
	retries := p.MaxAttempts - 1
	if retries < 0 {
		retries = 0
	}
	b := retry.NewExponential(base)
	b = retry.WithCappedDuration(capDur, b)
	return retry.WithMaxRetries(uint64(retries), b)
}
