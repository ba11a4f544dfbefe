package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the config files searched, first match wins.
var DefaultConfigPaths = []string{"config.yaml", "config.yml"}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// Defaults returns the built-in configuration. It is the lowest-priority layer.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            5000,
			Environment:     "development",
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Backend:        "memory",
			MongoDatabase:  "chingu_demographics",
			ConnectTimeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			Issuer:     "chingu-demographics-api",
			TokenTTL:   time.Hour,
			BcryptCost: 12,
		},
		RateLimit: RateLimitConfig{
			Requests:     100,
			Window:       15 * time.Minute,
			AuthRequests: 5,
			AuthWindow:   15 * time.Minute,
		},
		CORS: CORSConfig{
			Origins: []string{"http://localhost:3000"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Seed: SeedConfig{
			Path: "data/chingu_demographics.json",
		},
	}
}

// Load builds the configuration from, in increasing priority: defaults, an optional
// YAML file, then environment variables. A .env file in the working directory is
// loaded into the environment first when present.
func Load() (Config, error) {
	return load(Validate)
}

// LoadWithoutAuth is Load for commands that never sign or verify tokens. The auth
// section is loaded but not validated, so no JWT secret is needed.
func LoadWithoutAuth() (Config, error) {
	return load(func(cfg Config) error { return ValidateExcept(cfg, "Auth") })
}

func load(validate func(Config) error) (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	k := koanf.New(".")
	defaults := Defaults()
	if err := k.Load(structs.Provider(&defaults, "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load defaults: %w", err)
	}
	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if err := splitCommaList(k, "cors.origins"); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the struct-tag constraints on cfg.
func Validate(cfg Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// ValidateExcept is Validate with the named top-level sections (Go field names) skipped.
func ValidateExcept(cfg Config, sections ...string) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.StructExcept(cfg, sections...); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envMappings maps the environment variables we honor onto koanf paths.
// Anything not listed is ignored so unrelated process environment never leaks in.
var envMappings = map[string]string{
	"port":                     "server.port",
	"environment":              "server.environment",
	"app_env":                  "server.environment",
	"shutdown_timeout":         "server.shutdown_timeout",
	"storage_backend":          "storage.backend",
	"database_url":             "storage.postgres_url",
	"mongo_uri":                "storage.mongo_uri",
	"mongo_database":           "storage.mongo_database",
	"store_connect_timeout":    "storage.connect_timeout",
	"jwt_secret":               "auth.jwt_secret",
	"jwt_issuer":               "auth.issuer",
	"jwt_ttl":                  "auth.token_ttl",
	"auth_require_token":       "auth.require_token",
	"bcrypt_cost":              "auth.bcrypt_cost",
	"rate_limit_disabled":      "ratelimit.disabled",
	"rate_limit_requests":      "ratelimit.requests",
	"rate_limit_window":        "ratelimit.window",
	"auth_rate_limit_requests": "ratelimit.auth_requests",
	"auth_rate_limit_window":   "ratelimit.auth_window",
	"cors_origins":             "cors.origins",
	"log_level":                "logging.level",
	"log_format":               "logging.format",
	"seed_path":                "seed.path",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// splitCommaList turns a comma-separated env value into a slice for list-typed keys.
func splitCommaList(k *koanf.Koanf, path string) error {
	s, ok := k.Get(path).(string)
	if !ok {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if err := k.Set(path, out); err != nil {
		return fmt.Errorf("failed to set %s: %w", path, err)
	}
	return nil
}
