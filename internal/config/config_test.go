package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	if !errors.Is(err, ErrMissingJWTSecret) {
		t.Fatalf("expected ErrMissingJWTSecret, got %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("BCRYPT_COST", "")
	t.Setenv("GOOGLE_JWKS_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != "3000" {
		t.Fatalf("expected default port 3000, got %q", cfg.Port)
	}
	if cfg.TokenTTL != 7*24*time.Hour {
		t.Fatalf("expected 7d token ttl, got %s", cfg.TokenTTL)
	}
	if cfg.BcryptCost != 10 {
		t.Fatalf("expected bcrypt cost 10, got %d", cfg.BcryptCost)
	}
	if cfg.GoogleJWKSURL != DefaultGoogleJWKSURL {
		t.Fatalf("unexpected jwks url %q", cfg.GoogleJWKSURL)
	}
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("BCRYPT_COST", "abc")
	t.Setenv("REQUEST_TIMEOUT", "-5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.BcryptCost != 10 {
		t.Fatalf("expected fallback bcrypt cost, got %d", cfg.BcryptCost)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Fatalf("expected fallback timeout, got %s", cfg.RequestTimeout)
	}
}
