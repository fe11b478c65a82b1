// Package retry provides exponential backoff around a retryable predicate.
package retry

import (
	"context"
	"time"

	"go.uber.org/zap"

	"arbscan/pkg/types"
)

// Options configures a retry loop.
type Options struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	ShouldRetry  func(error) bool
	Logger       *zap.Logger
}

// DefaultOptions returns the standard retry policy: 3 attempts, 1s initial
// delay doubling up to 10s, retrying on retryable platform errors.
func DefaultOptions(logger *zap.Logger) Options {
	return Options{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		MaxDelay:     10 * time.Second,
		ShouldRetry:  types.Retryable,
		Logger:       logger,
	}
}

// Do runs fn up to MaxAttempts times. After a failed attempt i (0-based) it
// sleeps min(InitialDelay*2^i, MaxDelay) before the next one. Only a rate
// limit overrides the schedule: the server's Retry-After pacing wins. The
// last error propagates when attempts are exhausted or ShouldRetry declines.
func Do(ctx context.Context, opts Options, fn func() error) error {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.ShouldRetry == nil {
		opts.ShouldRetry = types.Retryable
	}

	var lastErr error

	for attempt := 0; attempt < opts.MaxAttempts; attempt++ {
		err := ctx.Err()
		if err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if attempt == opts.MaxAttempts-1 || !opts.ShouldRetry(lastErr) {
			return lastErr
		}

		delay := backoff(opts.InitialDelay, opts.MaxDelay, attempt)
		if retryAfter, ok := types.RetryAfterHint(lastErr); ok {
			delay = retryAfter
		}

		if opts.Logger != nil {
			opts.Logger.Debug("retrying-after-error",
				zap.Int("attempt", attempt+1),
				zap.Int("max-attempts", opts.MaxAttempts),
				zap.Duration("delay", delay),
				zap.Error(lastErr))
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return lastErr
}

func backoff(initial, max time.Duration, attempt int) time.Duration {
	delay := initial << uint(attempt)
	if delay > max || delay <= 0 {
		return max
	}
	return delay
}
