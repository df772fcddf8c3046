package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func withoutEnvFile(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoadConfigDefaults(t *testing.T) {
	withoutEnvFile(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.HTTPAddr != ":4000" {
		t.Fatalf("expected default HTTP_ADDR, got %s", cfg.HTTPAddr)
	}
	if cfg.GRPCAddr != "" {
		t.Fatalf("expected gRPC disabled by default, got %s", cfg.GRPCAddr)
	}
	if cfg.JWTSecret != "demo_secret_change_me" {
		t.Fatalf("expected default JWT_SECRET, got %s", cfg.JWTSecret)
	}
	if cfg.AccessTokenTTL != 8*time.Hour {
		t.Fatalf("expected ACCESS_TOKEN_TTL 8h, got %s", cfg.AccessTokenTTL)
	}
	if cfg.BcryptCost != 8 {
		t.Fatalf("expected BCRYPT_COST 8, got %d", cfg.BcryptCost)
	}
	if !cfg.SeedEnabled {
		t.Fatalf("expected seed enabled by default")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	withoutEnvFile(t)
	t.Setenv("HTTP_ADDR", ":18083")
	t.Setenv("GRPC_ADDR", ":19093")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_ISSUER", "test-issuer")
	t.Setenv("ACCESS_TOKEN_TTL", "30m")
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("SEED_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.HTTPAddr != ":18083" {
		t.Fatalf("expected HTTP_ADDR override, got %s", cfg.HTTPAddr)
	}
	if cfg.GRPCAddr != ":19093" {
		t.Fatalf("expected GRPC_ADDR override, got %s", cfg.GRPCAddr)
	}
	if cfg.JWTSecret != "test-secret" {
		t.Fatalf("expected JWT_SECRET override, got %s", cfg.JWTSecret)
	}
	if cfg.JWTIssuer != "test-issuer" {
		t.Fatalf("expected JWT_ISSUER override, got %s", cfg.JWTIssuer)
	}
	if cfg.AccessTokenTTL != 30*time.Minute {
		t.Fatalf("expected ACCESS_TOKEN_TTL 30m, got %s", cfg.AccessTokenTTL)
	}
	if cfg.BcryptCost != 10 {
		t.Fatalf("expected BCRYPT_COST 10, got %d", cfg.BcryptCost)
	}
	if cfg.SeedEnabled {
		t.Fatalf("expected SEED_ENABLED override")
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected LOG_LEVEL override, got %s", cfg.LogLevel)
	}
}

func TestLoadConfigFromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "HTTP_ADDR=:5050\nJWT_ISSUER=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("ENV_FILE", path)
	t.Setenv("JWT_ISSUER", "from-env")
	t.Cleanup(func() { os.Unsetenv("HTTP_ADDR") })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.HTTPAddr != ":5050" {
		t.Fatalf("expected HTTP_ADDR from file, got %s", cfg.HTTPAddr)
	}
	if cfg.JWTIssuer != "from-env" {
		t.Fatalf("expected environment to win over file, got %s", cfg.JWTIssuer)
	}
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"ACCESS_TOKEN_TTL": "not-a-duration",
		"BCRYPT_COST":      "99",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			withoutEnvFile(t)
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{JWTSecret: "s", AccessTokenTTL: time.Hour, BcryptCost: 8}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	cfg.JWTSecret = ""
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected JWT_SECRET error, got %v", err)
	}
	cfg.JWTSecret = "s"
	cfg.AccessTokenTTL = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected ttl error")
	}
}
