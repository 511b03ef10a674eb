package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"ozon-extractor/internal/types"
)

// EnvPrefix prefixes every environment override, e.g. EXTRACTOR_PRICE_TIMEOUT
const EnvPrefix = "EXTRACTOR"

// Load returns the default configuration with .env and environment overrides applied.
// Variables that are not set keep their default values.
func Load() (*types.Config, error) {
	// A missing .env is normal outside development
	if err := godotenv.Load(); err != nil {
		if _, statErr := os.Stat(".env"); statErr == nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	return FromEnv(types.DefaultConfig())
}

// FromEnv applies EXTRACTOR_* environment variables on top of cfg
func FromEnv(cfg *types.Config) (*types.Config, error) {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	return cfg, nil
}
