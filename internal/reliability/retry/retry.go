// Package retry runs an operation repeatedly with exponential backoff.
// The server uses it to ride out a postgres instance that is still
// starting when the API comes up.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"
)

// Config bounds the retry loop.
type Config struct {
	MaxAttempts       int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// DefaultConfig covers short-lived startup dependencies: three
// attempts, 100ms initial backoff, doubling up to 30s.
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts:       3,
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// Retryable is the operation under retry.
type Retryable[T any] func(ctx context.Context) (T, error)

// Do runs fn until it succeeds, the attempts are exhausted, or the
// context is cancelled. Backoff sleeps are interruptible by the context.
func Do[T any](ctx context.Context, cfg *Config, log *slog.Logger, op string, fn Retryable[T]) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}

		lastErr = err
		if attempt == cfg.MaxAttempts {
			break
		}

		backoff := backoffFor(attempt-1, cfg)
		log.Warn("retrying after failure",
			slog.String("operation", op),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", cfg.MaxAttempts),
			slog.Duration("backoff", backoff),
			slog.String("error", err.Error()),
		)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, fmt.Errorf("operation %q failed after %d attempts: %w", op, cfg.MaxAttempts, lastErr)
}

func backoffFor(attemptNum int, cfg *Config) time.Duration {
	backoff := time.Duration(float64(cfg.InitialBackoff) * math.Pow(cfg.BackoffMultiplier, float64(attemptNum)))
	if backoff > cfg.MaxBackoff {
		backoff = cfg.MaxBackoff
	}
	return backoff
}
