// Package config loads and validates the server configuration from the
// environment once at startup. Nothing else in the codebase reads
// environment variables; the validated struct is passed into constructors.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/pkg/errors"
)

// ErrConfigMissing marks a required setting as absent or unusable. The
// server refuses to start on it rather than failing every request.
var ErrConfigMissing = errors.New("missing configuration")

const (
	portEnvVar    = "PORT"
	appNameVar    = "APP_NAME"
	secretEnvVar  = "JWT_SECRET"
	expiryEnvVar  = "JWT_EXPIRES_IN"
	defaultExpiry = "24h"
)

// Config is the complete server configuration.
type Config struct {
	Port    string
	AppName string
	Env     string

	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresDB       string
	PostgresSSLMode  string

	JWTSecret string
	TokenTTL  time.Duration
}

// Load reads the environment and validates required settings. Missing
// repository credentials or a missing signing secret fail here, before any
// cryptographic work or connection attempt.
func Load() (*Config, error) {
	cfg := &Config{
		Port:             port(),
		AppName:          GetEnv(appNameVar, "Strideify Auth"),
		Env:              GetEnv("ENV", "DEV"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresHost:     GetEnv("POSTGRES_HOST", "localhost:5432"),
		PostgresDB:       GetEnv("POSTGRES_DB", "strideify"),
		PostgresSSLMode:  GetEnv("POSTGRES_SSLMODE", "disable"),
		JWTSecret:        os.Getenv(secretEnvVar),
	}

	if cfg.PostgresUser == "" {
		return nil, errors.Wrap(ErrConfigMissing, "POSTGRES_USER")
	}
	if cfg.PostgresPassword == "" {
		return nil, errors.Wrap(ErrConfigMissing, "POSTGRES_PASSWORD")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.Wrap(ErrConfigMissing, secretEnvVar)
	}

	expiresIn := GetEnv(expiryEnvVar, defaultExpiry)
	ttl, err := time.ParseDuration(expiresIn)
	if err != nil || ttl <= 0 {
		return nil, errors.Wrapf(ErrConfigMissing, "invalid %s %q", expiryEnvVar, expiresIn)
	}
	cfg.TokenTTL = ttl

	return cfg, nil
}

// DatabaseURL builds the Postgres connection string from the repository
// credentials.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		url.QueryEscape(c.PostgresUser),
		url.QueryEscape(c.PostgresPassword),
		c.PostgresHost,
		c.PostgresDB,
		c.PostgresSSLMode,
	)
}

func port() string {
	p := GetEnv(portEnvVar, "8080")
	if p != "" && p[0] != ':' {
		p = fmt.Sprintf(":%s", p)
	}
	return p
}

// GetEnv returns the environment variable's value, or defaultValue when
// unset or empty.
func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
