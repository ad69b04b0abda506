package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/berkaykaya07/BerkayKayaCase/pkg/config"
)

// Config holds all configuration for the browse service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// Remote catalog
	CatalogBaseURL        string `env:"CATALOG_BASE_URL" envDefault:"https://dummyjson.com"`
	CatalogTimeoutSeconds int    `env:"CATALOG_TIMEOUT_SECONDS" envDefault:"30"`

	// Browsing
	PageSize         int `env:"PAGE_SIZE" envDefault:"20"`
	SearchDebounceMs int `env:"SEARCH_DEBOUNCE_MS" envDefault:"300"`

	// Persistent store backend: "redis" or "memory"
	StoreBackend   string `env:"STORE_BACKEND" envDefault:"redis"`
	StoreKeyPrefix string `env:"STORE_KEY_PREFIX" envDefault:"browse"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Checkout
	TaxRate float64 `env:"TAX_RATE" envDefault:"0.18"`

	// Circuit breaker on catalog calls
	BreakerEnabled bool `env:"BREAKER_ENABLED" envDefault:"true"`

	// OpenTelemetry
	TracingEnabled bool    `env:"TRACING_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load browse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if _, err := url.ParseRequestURI(c.CatalogBaseURL); err != nil {
		return fmt.Errorf("invalid catalog base URL %q: %w", c.CatalogBaseURL, err)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("page size must be positive, got %d", c.PageSize)
	}
	if c.StoreBackend != "redis" && c.StoreBackend != "memory" {
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
	if c.TaxRate < 0 || c.TaxRate >= 1 {
		return fmt.Errorf("tax rate must be in [0, 1), got %g", c.TaxRate)
	}
	return nil
}

// CatalogTimeout returns the catalog client timeout as a duration.
func (c *Config) CatalogTimeout() time.Duration {
	return time.Duration(c.CatalogTimeoutSeconds) * time.Second
}

// SearchDebounce returns the search debounce delay as a duration.
func (c *Config) SearchDebounce() time.Duration {
	return time.Duration(c.SearchDebounceMs) * time.Millisecond
}
