package invite

import (
	"testing"
	"time"
)

func TestGenerateAndVerifyToken(t *testing.T) {
	svc := NewService("test-secret", "thousand", time.Hour)

	tokenString, err := svc.GenerateToken("session-123", "alice")
	if err != nil {
		t.Fatalf("generate token error: %v", err)
	}

	invite, err := svc.VerifyToken(tokenString)
	if err != nil {
		t.Fatalf("verify token error: %v", err)
	}
	if invite.SessionID != "session-123" {
		t.Fatalf("session id = %s, want session-123", invite.SessionID)
	}
	if invite.HostUserID != "alice" {
		t.Fatalf("host = %s, want alice", invite.HostUserID)
	}
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	svc := NewService("test-secret", "thousand", time.Hour)
	other := NewService("other-secret", "thousand", time.Hour)

	tokenString, err := svc.GenerateToken("session-123", "alice")
	if err != nil {
		t.Fatalf("generate token error: %v", err)
	}
	if _, err := other.VerifyToken(tokenString); err == nil {
		t.Fatal("expected error for a token signed with another secret")
	}
}

func TestVerifyTokenRejectsWrongIssuer(t *testing.T) {
	svc := NewService("test-secret", "thousand", time.Hour)
	other := NewService("test-secret", "someone-else", time.Hour)

	tokenString, err := other.GenerateToken("session-123", "alice")
	if err != nil {
		t.Fatalf("generate token error: %v", err)
	}
	if _, err := svc.VerifyToken(tokenString); err == nil {
		t.Fatal("expected error for a token from another issuer")
	}
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	svc := NewService("test-secret", "thousand", -time.Hour)

	tokenString, err := svc.GenerateToken("session-123", "alice")
	if err != nil {
		t.Fatalf("generate token error: %v", err)
	}
	if _, err := svc.VerifyToken(tokenString); err == nil {
		t.Fatal("expected error for an expired token")
	}
}

func TestGenerateTokenRequiresConfig(t *testing.T) {
	svc := NewService("", "thousand", time.Hour)
	if _, err := svc.GenerateToken("session-123", "alice"); err == nil {
		t.Fatal("expected error for missing invite config")
	}
}

func TestGenerateTokenRequiresSession(t *testing.T) {
	svc := NewService("test-secret", "thousand", time.Hour)
	if _, err := svc.GenerateToken("", "alice"); err == nil {
		t.Fatal("expected error for empty session id")
	}
}
