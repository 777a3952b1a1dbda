package auth

import (
	"testing"
	"time"
)

func TestGenerateAndValidate(t *testing.T) {
	tm := NewTokenManager("test-secret-that-is-long-enough-123", "test", time.Hour)

	token, err := tm.Generate("alice", "admin")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := tm.Validate(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.Subject != "alice" {
		t.Fatalf("expected subject alice, got %q", claims.Subject)
	}
	if claims.Role != "admin" {
		t.Fatalf("expected role admin, got %q", claims.Role)
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	tm := NewTokenManager("test-secret-that-is-long-enough-123", "test", time.Millisecond)

	token, err := tm.Generate("alice", "admin")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	if _, err := tm.Validate(token); err == nil {
		t.Fatalf("expected expired token to fail validation")
	}
}

func TestValidateRejectsWrongKey(t *testing.T) {
	issuing := NewTokenManager("secret-one-that-is-long-enough-1234", "test", time.Hour)
	verifying := NewTokenManager("secret-two-that-is-long-enough-1234", "test", time.Hour)

	token, err := issuing.Generate("alice", "admin")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := verifying.Validate(token); err == nil {
		t.Fatalf("expected wrong-key token to fail validation")
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret-that-is-long-enough-123", "test", time.Hour)
	if _, err := tm.Validate("not-a-token"); err == nil {
		t.Fatalf("expected malformed token to fail validation")
	}
}

func TestExtractToken(t *testing.T) {
	token, err := ExtractToken("Bearer abc.def.ghi")
	if err != nil || token != "abc.def.ghi" {
		t.Fatalf("expected token extracted, got %q, err=%v", token, err)
	}
	if _, err := ExtractToken("abc.def.ghi"); err == nil {
		t.Fatalf("expected error for missing scheme")
	}
	if _, err := ExtractToken("Basic abc"); err == nil {
		t.Fatalf("expected error for non-bearer scheme")
	}
}
