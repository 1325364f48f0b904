package resilience

import (
	"context"
	"time"
)

// RetryPolicy retries with linear backoff: attempt n waits n*BaseDelay.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 2,
		BaseDelay:  time.Second,
	}
}

// Backoff returns the wait before the given retry (1-based).
func (p RetryPolicy) Backoff(retry int) time.Duration {
	if retry < 1 || p.BaseDelay <= 0 {
		return 0
	}
	return time.Duration(retry) * p.BaseDelay
}

// Retry calls fn until it succeeds, returns an error retryable rejects, or
// the retries are spent. The last error is returned. Waiting honors ctx.
func Retry(ctx context.Context, policy RetryPolicy, retryable func(error) bool, fn func(attempt int) error) error {
	var lastErr error
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, policy.Backoff(attempt)); err != nil {
				return lastErr
			}
		}

		lastErr = fn(attempt)
		if lastErr == nil {
			return nil
		}
		if retryable != nil && !retryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
