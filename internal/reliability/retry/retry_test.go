package retry

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"
)

func testConfig() *Config {
	return &Config{
		MaxAttempts:       3,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func TestDoSucceedsAfterFailures(t *testing.T) {
	calls := 0
	result, err := Do(context.Background(), testConfig(), slog.Default(), "connect",
		func(context.Context) (string, error) {
			calls++
			if calls < 3 {
				return "", errors.New("not yet")
			}
			return "ok", nil
		})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if result != "ok" {
		t.Fatalf("unexpected result %q", result)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	permanent := errors.New("still down")
	calls := 0
	_, err := Do(context.Background(), testConfig(), slog.Default(), "connect",
		func(context.Context) (int, error) {
			calls++
			return 0, permanent
		})
	if !errors.Is(err, permanent) {
		t.Fatalf("last error not wrapped: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestDoStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	cfg := testConfig()
	cfg.InitialBackoff = time.Minute
	cfg.MaxBackoff = time.Minute

	_, err := Do(ctx, cfg, slog.Default(), "connect",
		func(context.Context) (int, error) {
			cancel()
			return 0, errors.New("failing")
		})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
