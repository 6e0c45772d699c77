package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"GestObra"`
		Env  string `envconfig:"APP_ENV" default:"dev"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"gestobra"`
		SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	// Storage points at the S3-compatible bucket that holds uploaded documents.
	Storage struct {
		Endpoint  string `envconfig:"STORAGE_ENDPOINT"`
		Region    string `envconfig:"STORAGE_REGION" default:"us-east-1"`
		Bucket    string `envconfig:"STORAGE_BUCKET" default:"documentos"`
		AccessKey string `envconfig:"STORAGE_ACCESS_KEY"`
		SecretKey string `envconfig:"STORAGE_SECRET_KEY"`
		PublicURL string `envconfig:"STORAGE_PUBLIC_URL"`
	}

	Auth struct {
		JWTSecret string `envconfig:"AUTH_JWT_SECRET"`
	}

	Reports struct {
		Timezone string `envconfig:"REPORTS_TIMEZONE" default:"America/Sao_Paulo"`
	}

	Metrics struct {
		Enabled bool `envconfig:"METRICS_ENABLED" default:"true"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name, c.DB.SSLMode)
}

// Location resolves the report timezone. Load rejects unknown names, so the UTC fallback only
// applies to configs built by hand.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Reports.Timezone)
	if err != nil {
		slog.Warn("unknown report timezone, using UTC", "timezone", c.Reports.Timezone, "error", err)
		return time.UTC
	}

	return loc
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if _, err := time.LoadLocation(cfg.Reports.Timezone); err != nil {
		return nil, fmt.Errorf("invalid REPORTS_TIMEZONE %q: %w", cfg.Reports.Timezone, err)
	}

	return &cfg, nil
}
