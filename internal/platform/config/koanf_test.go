package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", strings.Repeat("s", 32))
	t.Setenv(ConfigPathEnvVar, "does-not-exist.yaml")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() err=%v", err)
	}
	if cfg.Server.Port != 5000 || cfg.Storage.Backend != "memory" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.RateLimit.AuthRequests >= cfg.RateLimit.Requests {
		t.Fatalf("auth limit should be stricter: %+v", cfg.RateLimit)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("STORAGE_BACKEND", "mongo")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("AUTH_REQUIRE_TOKEN", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() err=%v", err)
	}
	if cfg.Server.Port != 8081 {
		t.Fatalf("port=%d", cfg.Server.Port)
	}
	if cfg.Storage.Backend != "mongo" || cfg.Storage.MongoURI != "mongodb://localhost:27017" {
		t.Fatalf("storage=%+v", cfg.Storage)
	}
	if cfg.Auth.TokenTTL != 30*time.Minute || !cfg.Auth.RequireToken {
		t.Fatalf("auth=%+v", cfg.Auth)
	}
	if len(cfg.CORS.Origins) != 2 || cfg.CORS.Origins[1] != "https://b.example" {
		t.Fatalf("origins=%v", cfg.CORS.Origins)
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "does-not-exist.yaml")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected validation error for missing JWT secret")
	}
}

func TestLoadWithoutAuth_NoSecretNeeded(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "does-not-exist.yaml")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SEED_PATH", "data/export.json")

	cfg, err := LoadWithoutAuth()
	if err != nil {
		t.Fatalf("LoadWithoutAuth() err=%v", err)
	}
	if cfg.Seed.Path != "data/export.json" || cfg.Storage.Backend != "memory" {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestLoadWithoutAuth_StillValidatesStorage(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "does-not-exist.yaml")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORAGE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")

	if _, err := LoadWithoutAuth(); err == nil {
		t.Fatalf("expected postgres_url to be required")
	}
}

func TestValidate_PostgresRequiresURL(t *testing.T) {
	t.Parallel()

	cfg := Defaults()
	cfg.Auth.JWTSecret = strings.Repeat("s", 32)
	cfg.Storage.Backend = "postgres"
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error when postgres_url is empty")
	}
	cfg.Storage.PostgresURL = "postgres://localhost/chingu"
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() err=%v", err)
	}
}

func TestServerConfig_IsProduction(t *testing.T) {
	t.Parallel()

	if (ServerConfig{Environment: "development"}).IsProduction() {
		t.Fatalf("development reported as production")
	}
	if !(ServerConfig{Environment: "production"}).IsProduction() {
		t.Fatalf("production not detected")
	}
}
