package auth

import (
	"errors"
	"testing"
	"time"

	"aesthetica/config"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		AccessSecret:  "access",
		RefreshSecret: "refresh",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
		Issuer:        "aesthetica",
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	tok, err := GenerateAccessToken(cfg, 7, "staff@clinic.test", "ADMIN")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := ParseAccessToken(cfg, tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 7 || claims.Email != "staff@clinic.test" || claims.Role != "ADMIN" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestAccessTokenRejected(t *testing.T) {
	cfg := testJWTConfig()
	refresh, _ := GenerateRefreshToken(cfg, 7)
	if _, err := ParseAccessToken(cfg, refresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh token accepted as access token: %v", err)
	}

	expired := *cfg
	expired.AccessExpiry = -time.Minute
	tok, _ := GenerateAccessToken(&expired, 7, "a@b.c", "ADMIN")
	if _, err := ParseAccessToken(cfg, tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token accepted: %v", err)
	}

	other := *cfg
	other.Issuer = "someone-else"
	tok, _ = GenerateAccessToken(&other, 7, "a@b.c", "ADMIN")
	if _, err := ParseAccessToken(cfg, tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("foreign issuer accepted: %v", err)
	}
}

func TestRefreshToken(t *testing.T) {
	cfg := testJWTConfig()
	tok, err := GenerateRefreshToken(cfg, 42)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	id, err := ParseRefreshToken(cfg, tok)
	if err != nil || id != 42 {
		t.Fatalf("parse = %d, %v", id, err)
	}
	if _, err := ParseRefreshToken(cfg, "garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
