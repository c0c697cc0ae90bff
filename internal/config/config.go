// Package config loads projboard settings from PROJBOARD_* environment
// variables. Command-line flags override these values.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Addr      string  `env:"PROJBOARD_ADDR" envDefault:"127.0.0.1:8080"`
	Format    string  `env:"PROJBOARD_FORMAT" envDefault:"json"`
	LogLevel  string  `env:"PROJBOARD_LOG_LEVEL" envDefault:"info"`
	LogFile   string  `env:"PROJBOARD_LOG_FILE"`
	Journal   string  `env:"PROJBOARD_JOURNAL"`
	RateLimit float64 `env:"PROJBOARD_RATE_LIMIT" envDefault:"20"`
	RateBurst int     `env:"PROJBOARD_RATE_BURST" envDefault:"40"`

	// Keepalive is the SSE comment interval of the web front end.
	Keepalive time.Duration `env:"PROJBOARD_SSE_KEEPALIVE" envDefault:"15s"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	switch cfg.Format {
	case "json", "edn":
	default:
		return Config{}, fmt.Errorf("invalid PROJBOARD_FORMAT: %q (expected json|edn)", cfg.Format)
	}
	if cfg.RateLimit <= 0 || cfg.RateBurst <= 0 {
		return Config{}, fmt.Errorf("PROJBOARD_RATE_LIMIT and PROJBOARD_RATE_BURST must be positive")
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
