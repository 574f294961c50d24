package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds every runtime setting the service reads from the environment.
type Config struct {
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	RedisAddr   string `envconfig:"REDIS_ADDR"`
	HTTPPort    string `envconfig:"HTTP_PORT" default:"8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	JWTSecret      string        `envconfig:"JWT_SECRET" required:"true"`
	JWTIssuer      string        `envconfig:"JWT_ISSUER" default:"tripcore"`
	JWTAudience    string        `envconfig:"JWT_AUDIENCE" default:"tripcore-api"`
	AccessTokenTTL time.Duration `envconfig:"JWT_EXPIRES_IN" default:"1h"`
	RefreshTTL     time.Duration `envconfig:"REFRESH_EXPIRES_IN" default:"720h"`
}

// Load reads configuration from the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
