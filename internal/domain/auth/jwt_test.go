package auth

import (
	"testing"
	"time"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret"))

	token, expiresAt, err := svc.GenerateAccessToken("user-1", "m@example.com", []string{"manager"}, false)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}
	if !expiresAt.After(time.Now()) {
		t.Error("token already expired at issue time")
	}

	user, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if user.UserID != "user-1" || user.Email != "m@example.com" {
		t.Errorf("user = %+v", user)
	}
	if len(user.Roles) != 1 || user.Roles[0] != "manager" {
		t.Errorf("roles = %v", user.Roles)
	}
	if user.IsAdmin {
		t.Error("IsAdmin set for a non-admin token")
	}
}

func TestJWTService_RejectsWrongSecret(t *testing.T) {
	issuer := NewJWTService(DefaultJWTConfig("secret-a"))
	verifier := NewJWTService(DefaultJWTConfig("secret-b"))

	token, _, err := issuer.GenerateAccessToken("user-1", "", nil, false)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	if _, err := verifier.ValidateToken(token); err == nil {
		t.Fatal("token signed with another secret accepted")
	}
}

func TestJWTService_RejectsExpiredToken(t *testing.T) {
	cfg := DefaultJWTConfig("test-secret")
	cfg.AccessTokenTTL = -time.Minute
	svc := NewJWTService(cfg)

	token, _, err := svc.GenerateAccessToken("user-1", "", nil, true)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestJWTService_RejectsGarbage(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret"))
	if _, err := svc.ValidateToken("not.a.token"); err == nil {
		t.Fatal("garbage token accepted")
	}
}
