// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverSpanner = "spanner"
	DriverMemory  = "memory"
)

// Config holds every tunable of the catalog service.
type Config struct {
	AppEnv    string `envconfig:"APP_ENV" default:"development"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT"` // empty picks by AppEnv

	StoreDriver     string `envconfig:"STORE_DRIVER" default:"spanner"`
	SpannerDatabase string `envconfig:"SPANNER_DATABASE" default:"projects/test-project/instances/dev/databases/catalog-db"`

	HTTPPort         string        `envconfig:"HTTP_PORT" default:"8080"`
	GRPCPort         string        `envconfig:"GRPC_PORT" default:"9090"`
	HTTPReadTimeout  time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s"`
	HTTPWriteTimeout time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"15s"`

	JWTSecret string `envconfig:"JWT_SECRET"`
	JWTIssuer string `envconfig:"JWT_ISSUER" default:"catalog-engine"`

	CandidateCeiling   int     `envconfig:"CATALOG_CANDIDATE_CEILING" default:"1000"`
	SearchLimit        int     `envconfig:"CATALOG_SEARCH_LIMIT" default:"50"`
	EnrichConcurrency  int     `envconfig:"CATALOG_ENRICH_CONCURRENCY" default:"8"`
	DefaultPageSize    int     `envconfig:"CATALOG_DEFAULT_PAGE_SIZE" default:"12"`
	MaxPageSize        int     `envconfig:"CATALOG_MAX_PAGE_SIZE" default:"100"`
	SuggestionLimit    int     `envconfig:"CATALOG_SUGGESTION_LIMIT" default:"5"`
	RateLimitPerSecond float64 `envconfig:"RATE_LIMIT_RPS" default:"20"`
	RateLimitBurst     int     `envconfig:"RATE_LIMIT_BURST" default:"40"`
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	// A missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the environment only.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	var errs []error
	switch c.StoreDriver {
	case DriverSpanner:
		if c.SpannerDatabase == "" {
			errs = append(errs, errors.New("SPANNER_DATABASE is required for the spanner driver"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	if c.CandidateCeiling < 1 {
		errs = append(errs, errors.New("CATALOG_CANDIDATE_CEILING must be positive"))
	}
	if c.DefaultPageSize < 1 || c.DefaultPageSize > c.MaxPageSize {
		errs = append(errs, errors.New("CATALOG_DEFAULT_PAGE_SIZE must be between 1 and CATALOG_MAX_PAGE_SIZE"))
	}
	if c.RateLimitPerSecond <= 0 || c.RateLimitBurst < 1 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}
	return errors.Join(errs...)
}

// IsDevelopment reports whether the service runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
