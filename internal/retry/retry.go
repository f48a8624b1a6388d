// Package retry wraps flaky downstream operations with bounded attempts and a
// per-attempt timeout.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrExhausted is returned once every attempt has failed or timed out.
var ErrExhausted = errors.New("retries exhausted")

// Do runs op up to maxAttempts times. Each attempt races op against a
// perAttempt timer; a timeout counts as a failed attempt. The losing operation
// is not cancelled beyond its context deadline, so ops with side effects run
// under at-least-once semantics and must be idempotent or tolerate duplicates.
// The first success returns immediately; exhaustion returns ErrExhausted
// wrapping the last attempt's error.
func Do[T any](ctx context.Context, op func(context.Context) (T, error), maxAttempts int, perAttempt time.Duration) (T, error) {
	var zero T
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	var lastErr error
	attempts := 0
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		attempts = attempt
		res, err := runOnce(ctx, op, perAttempt)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if attempt < maxAttempts {
			slog.Warn("retry attempt failed",
				"attempt", attempt,
				"max_attempts", maxAttempts,
				"err", err)
		}
		if ctx.Err() != nil {
			break
		}
	}
	return zero, fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempts, lastErr)
}

type result[T any] struct {
	val T
	err error
}

func runOnce[T any](ctx context.Context, op func(context.Context) (T, error), perAttempt time.Duration) (T, error) {
	var zero T
	attemptCtx := ctx
	var cancel context.CancelFunc
	if perAttempt > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, perAttempt)
		defer cancel()
	}
	done := make(chan result[T], 1)
	go func() {
		v, err := op(attemptCtx)
		done <- result[T]{val: v, err: err}
	}()
	select {
	case r := <-done:
		return r.val, r.err
	case <-attemptCtx.Done():
		// whichever settles first wins; the goroutine drains into the
		// buffered channel and is dropped
		return zero, attemptCtx.Err()
	}
}
