// Package retry runs an operation under a bounded attempt policy with a pluggable
// backoff schedule. The loop itself is driven by cenkalti/backoff.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// BackoffFunc returns the wait before the next attempt. attempt is the 1-based number of
// the attempt that just failed and err is its error.
type BackoffFunc func(attempt int, err error) time.Duration

// Policy describes how an operation is retried.
type Policy struct {
	// MaxAttempts bounds the number of calls, including the first one.
	MaxAttempts int
	Backoff     BackoffFunc
	// Retryable reports whether err is worth another attempt. Nil retries everything.
	Retryable func(err error) bool
	// Notify is called before each wait.
	Notify func(attempt int, err error, wait time.Duration)
	// Timer drives the waits; nil uses a real timer.
	Timer backoff.Timer
}

// Do calls op until it succeeds, returns a non-retryable error, or MaxAttempts is reached.
// The error of the last attempt is returned unchanged. No wait follows the final attempt.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	_, err := DoValue(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// DoValue is Do for operations that produce a value.
func DoValue[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var (
		result  T
		lastErr error
	)
	schedule := &policyBackOff{policy: p, lastErr: &lastErr}

	operation := func() error {
		v, err := op(ctx)
		if err == nil {
			result = v
			return nil
		}
		lastErr = err
		if p.Retryable != nil && !p.Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	var notify backoff.Notify
	if p.Notify != nil {
		notify = func(err error, wait time.Duration) {
			p.Notify(schedule.attempt, err, wait)
		}
	}

	err := backoff.RetryNotifyWithTimer(operation, backoff.WithContext(schedule, ctx), notify, p.Timer)
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// policyBackOff adapts a Policy to backoff.BackOff, counting attempts itself.
type policyBackOff struct {
	policy  Policy
	attempt int
	lastErr *error
}

func (b *policyBackOff) Reset() {
	b.attempt = 0
}

func (b *policyBackOff) NextBackOff() time.Duration {
	b.attempt++
	if b.attempt >= b.policy.MaxAttempts {
		return backoff.Stop
	}
	if b.policy.Backoff == nil {
		return 0
	}
	return b.policy.Backoff(b.attempt, *b.lastErr)
}

// Linear waits base × attempt.
func Linear(base time.Duration) BackoffFunc {
	return func(attempt int, _ error) time.Duration {
		return base * time.Duration(attempt)
	}
}

// Exponential waits base × 2^attempt.
func Exponential(base time.Duration) BackoffFunc {
	return func(attempt int, _ error) time.Duration {
		return base * time.Duration(int64(1)<<uint(attempt))
	}
}
