package auth

import (
	"errors"
	"testing"
	"time"

	"vhostmgr/internal/config"
)

func newTestTokens(t *testing.T) *Tokens {
	t.Helper()
	tokens, err := NewTokens(config.JWTConfig{Secret: "test-secret-key", ExpireMinutes: 60, Issuer: "vhostmgr"})
	if err != nil {
		t.Fatalf("NewTokens() failed: %v", err)
	}
	return tokens
}

func TestGenerateAndParse(t *testing.T) {
	tokens := newTestTokens(t)

	token, expireAt, err := tokens.Generate("admin")
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	if time.Until(expireAt) < 59*time.Minute {
		t.Errorf("Expected expiry about an hour out, got %s", expireAt)
	}

	claims, err := tokens.Parse(token)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	if claims.Username != "admin" {
		t.Errorf("Expected username admin, got %s", claims.Username)
	}

	if claims.Issuer != "vhostmgr" {
		t.Errorf("Expected issuer vhostmgr, got %s", claims.Issuer)
	}
}

func TestNewTokens_MissingSecret(t *testing.T) {
	if _, err := NewTokens(config.JWTConfig{}); err == nil {
		t.Error("Expected error for empty secret")
	}
}

func TestParse_Expired(t *testing.T) {
	tokens := newTestTokens(t)
	tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := tokens.Generate("admin")
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	tokens.now = time.Now
	if _, err := tokens.Parse(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Expected ErrTokenExpired, got %v", err)
	}
}

func TestParse_Invalid(t *testing.T) {
	tokens := newTestTokens(t)
	token, _, _ := tokens.Generate("admin")

	other, _ := NewTokens(config.JWTConfig{Secret: "other-secret", Issuer: "vhostmgr"})
	foreign, _ := NewTokens(config.JWTConfig{Secret: "test-secret-key", Issuer: "someone-else"})
	foreignToken, _, _ := foreign.Generate("admin")

	tests := []struct {
		name   string
		tokens *Tokens
		token  string
	}{
		{"garbage", tokens, "invalid.token.here"},
		{"wrong secret", other, token},
		{"wrong issuer", tokens, foreignToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.tokens.Parse(tt.token); !errors.Is(err, ErrTokenInvalid) {
				t.Errorf("Expected ErrTokenInvalid, got %v", err)
			}
		})
	}
}
