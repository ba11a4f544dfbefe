package config

import (
	"time"
)

// Config is the full runtime configuration of the API and the seed command.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Storage   StorageConfig   `koanf:"storage"`
	Auth      AuthConfig      `koanf:"auth"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
	CORS      CORSConfig      `koanf:"cors"`
	Logging   LoggingConfig   `koanf:"logging"`
	Seed      SeedConfig      `koanf:"seed"`
}

type ServerConfig struct {
	Port int `koanf:"port" validate:"min=1,max=65535"`
	// Environment is "production" or anything else. Outside production, 500 responses
	// carry the underlying error text.
	Environment     string        `koanf:"environment" validate:"required"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"min=0"`
}

// IsProduction reports whether internal error details must be withheld from clients.
func (c ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

type StorageConfig struct {
	Backend       string `koanf:"backend" validate:"oneof=memory postgres mongo"`
	PostgresURL   string `koanf:"postgres_url" validate:"required_if=Backend postgres"`
	MongoURI      string `koanf:"mongo_uri" validate:"required_if=Backend mongo"`
	MongoDatabase string `koanf:"mongo_database" validate:"required_if=Backend mongo"`
	// ConnectTimeout bounds the initial store connection at startup.
	ConnectTimeout time.Duration `koanf:"connect_timeout" validate:"min=0"`
}

type AuthConfig struct {
	JWTSecret string        `koanf:"jwt_secret" validate:"required,min=32"`
	Issuer    string        `koanf:"issuer" validate:"required"`
	TokenTTL  time.Duration `koanf:"token_ttl" validate:"min=1m"`
	// RequireToken gates the member endpoints behind a bearer token issued by login.
	RequireToken bool `koanf:"require_token"`
	BcryptCost   int  `koanf:"bcrypt_cost" validate:"min=4,max=31"`
}

// RateLimitConfig holds the per-IP sliding windows. Auth routes get the stricter one.
type RateLimitConfig struct {
	Disabled     bool          `koanf:"disabled"`
	Requests     int           `koanf:"requests" validate:"min=1"`
	Window       time.Duration `koanf:"window" validate:"min=1s"`
	AuthRequests int           `koanf:"auth_requests" validate:"min=1"`
	AuthWindow   time.Duration `koanf:"auth_window" validate:"min=1s"`
}

type CORSConfig struct {
	Origins []string `koanf:"origins"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
}

type SeedConfig struct {
	// Path is the raw dataset JSON read by the seed command.
	Path string `koanf:"path"`
}
