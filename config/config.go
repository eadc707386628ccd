// Package config loads application settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all tunable settings. Values come from environment variables,
// optionally sourced from a .env file in the working directory.
type Config struct {
	// VATRate is the value-added tax rate applied to quote totals, as a
	// fraction (0.20 = 20%).
	VATRate float64 `env:"VAT_RATE" envDefault:"0.20"`

	// RateSourceURL is the endpoint returning current USD/EUR exchange rates
	// as a JSON object: {"USD": 30.5, "EUR": 33.1}.
	RateSourceURL string `env:"RATE_SOURCE_URL" envDefault:""`

	// RateFetchTimeout bounds a single rate-source request.
	RateFetchTimeout time.Duration `env:"RATE_FETCH_TIMEOUT" envDefault:"10s"`

	// CompanyName appears on exported quote documents.
	CompanyName string `env:"COMPANY_NAME" envDefault:"Mekanik Taahhüt"`
}

// Load reads the optional .env file and parses the environment into a Config.
func Load() (Config, error) {
	// Missing .env is fine; real deployments set variables directly.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse environment: %w", err)
	}

	if cfg.VATRate < 0 || cfg.VATRate >= 1 {
		return Config{}, fmt.Errorf("config: VAT_RATE must be in [0,1), got %v", cfg.VATRate)
	}

	return cfg, nil
}
