package resilience

import (
	"context"
	"net/http"
	"time"
)

// RetryPolicy controls how a client retries transient request failures.
// The zero value never retries.
type RetryPolicy struct {
	MaxAttempts       int
	Backoff           func(attempt int) time.Duration
	RetryableStatuses []int
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff:     ExponentialBackoff(time.Second),
		RetryableStatuses: []int{
			http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout,
		},
	}
}

func NormalizeRetryPolicy(p RetryPolicy) RetryPolicy {
	defaults := DefaultRetryPolicy()
	if p.MaxAttempts < 0 {
		p.MaxAttempts = 0
	}
	if p.Backoff == nil {
		p.Backoff = defaults.Backoff
	}
	if p.RetryableStatuses == nil {
		p.RetryableStatuses = defaults.RetryableStatuses
	}
	return p
}

func (p RetryPolicy) IsRetryableStatus(code int) bool {
	for _, status := range p.RetryableStatuses {
		if code == status {
			return true
		}
	}
	return false
}

// Wait blocks for the backoff duration of the given 1-based attempt,
// returning early with the context error on cancellation.
func (p RetryPolicy) Wait(ctx context.Context, attempt int) error {
	if p.Backoff == nil {
		return ctx.Err()
	}
	delay := p.Backoff(attempt)
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ExponentialBackoff doubles the base delay per attempt: base, 2*base, 4*base...
func ExponentialBackoff(base time.Duration) func(int) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	return func(attempt int) time.Duration {
		if attempt < 1 {
			attempt = 1
		}
		return base << (attempt - 1)
	}
}

// LinearBackoff grows the delay by base per attempt: base, 2*base, 3*base...
func LinearBackoff(base time.Duration) func(int) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	return func(attempt int) time.Duration {
		if attempt < 1 {
			attempt = 1
		}
		return time.Duration(attempt) * base
	}
}
