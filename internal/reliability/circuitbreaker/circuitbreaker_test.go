package circuitbreaker

import (
	"testing"
	"time"
)

func TestOpensAfterConsecutiveFailures(t *testing.T) {
	cb := New(3, 1, time.Minute)
	for i := 0; i < 3; i++ {
		if !cb.Allow() {
			t.Fatalf("expected closed breaker to allow request %d", i)
		}
		cb.RecordFailure()
	}
	if cb.GetState() != StateOpen {
		t.Fatalf("expected open state, got %v", cb.GetState())
	}
	if cb.Allow() {
		t.Fatalf("expected open breaker to reject requests")
	}
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := New(2, 1, time.Minute)
	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()
	if cb.GetState() != StateClosed {
		t.Fatalf("expected breaker to stay closed after interleaved success")
	}
}

func TestHalfOpenProbeAndRecovery(t *testing.T) {
	cb := New(1, 2, 10*time.Millisecond)
	cb.RecordFailure()
	if cb.GetState() != StateOpen {
		t.Fatalf("expected open state")
	}

	time.Sleep(20 * time.Millisecond)
	if !cb.Allow() {
		t.Fatalf("expected probe to be allowed after timeout")
	}
	if cb.GetState() != StateHalfOpen {
		t.Fatalf("expected half-open state, got %v", cb.GetState())
	}

	cb.RecordSuccess()
	cb.RecordSuccess()
	if cb.GetState() != StateClosed {
		t.Fatalf("expected breaker to close after probe successes")
	}
}

func TestHalfOpenFailureReopens(t *testing.T) {
	cb := New(1, 2, 10*time.Millisecond)
	cb.RecordFailure()
	time.Sleep(20 * time.Millisecond)
	cb.Allow()
	cb.RecordFailure()
	if cb.GetState() != StateOpen {
		t.Fatalf("expected breaker to reopen on half-open failure")
	}
}
