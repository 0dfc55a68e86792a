package shared

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// RetryPolicy describes how [Retry] paces repeated attempts.
type RetryPolicy struct {
	MaxAttempts int           // total attempts, including the first
	Delay       time.Duration // wait before the second attempt
	Backoff     float64       // delay multiplier applied after every failed attempt
}

// PolicyFromConfig builds a [RetryPolicy] from the [retry] config section.
func PolicyFromConfig(cfg RetryConfig) RetryPolicy {
	p := RetryPolicy{
		MaxAttempts: cfg.MaxAttempts,
		Delay:       time.Duration(cfg.Delay * float64(time.Second)),
		Backoff:     cfg.BackoffFactor,
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.Delay <= 0 {
		p.Delay = time.Second
	}
	if p.Backoff <= 0 {
		p.Backoff = 2.0
	}
	return p
}

// Retry invokes op until it succeeds, the policy is exhausted, or ctx is
// canceled. The final error is returned as-is so callers can match it with
// [errors.Is].
//
// This is the explicit form of a cross-cutting retry decorator: every remote
// read in the pipeline runs through it with a closure.
func Retry(ctx context.Context, logger *log.Logger, label string, policy RetryPolicy, op func() error) error {
	delay := policy.Delay
	var lastErr error

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s canceled: %w", label, err)
		}

		lastErr = op()
		if lastErr == nil {
			return nil
		}

		if attempt == policy.MaxAttempts {
			logger.Error("giving up", "op", label, "attempts", policy.MaxAttempts, "err", lastErr)
			break
		}

		logger.Warn("attempt failed, retrying", "op", label, "attempt", attempt, "wait", delay, "err", lastErr)
		if err := Sleep(ctx, delay); err != nil {
			return fmt.Errorf("%s canceled: %w", label, err)
		}
		delay = time.Duration(float64(delay) * policy.Backoff)
	}

	return lastErr
}

// Sleep blocks for d or until ctx is canceled, returning the context error
// in the latter case.
func Sleep(ctx context.Context, d time.Duration) error {
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
