package auth

import (
	"testing"
	"time"
)

func TestGenerateAndParseToken(t *testing.T) {
	tm := NewTokenManager("test-secret", 30)

	token, expiresAt, err := tm.GenerateToken("dev-user-001", "Dev User", "dev@example.com")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if remaining := time.Until(expiresAt); remaining < 29*time.Minute || remaining > 31*time.Minute {
		t.Fatalf("ttl = %v, want about 30 minutes", remaining)
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Subject != "dev-user-001" || claims.Name != "Dev User" || claims.Email != "dev@example.com" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("secret-a", 30).GenerateToken("u1", "", "")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := NewTokenManager("secret-b", 30).ParseToken(token); err == nil {
		t.Fatal("token signed with another secret accepted")
	}
}

func TestZeroTTLFallsBackToDefault(t *testing.T) {
	_, expiresAt, err := NewTokenManager("s", 0).GenerateToken("u1", "", "")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if remaining := time.Until(expiresAt); remaining < 59*time.Minute {
		t.Fatalf("default ttl = %v, want about an hour", remaining)
	}
}
