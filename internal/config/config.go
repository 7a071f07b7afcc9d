// Package config reads process settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds process-level settings; flags may override any field.
type Config struct {
	Variant   string // ROULETTE_VARIANT
	Season    string // ROULETTE_SEASON
	ConfigDir string // ROULETTE_CONFIG_DIR; empty uses the embedded catalogs
	StateFile string // ROULETTE_STATE_FILE
	LogLevel  string // ROULETTE_LOG_LEVEL
	Seed      uint64 // ROULETTE_SEED; 0 means crypto randomness
}

func Default() Config {
	return Config{
		Variant:   "pets",
		StateFile: "roulette-state.json",
		LogLevel:  "warn",
	}
}

// Load applies envFiles and then the environment on top of Default. With no
// envFiles it reads ".env" if present; a named file must exist.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		if len(envFiles) > 0 || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load env: %w", err)
		}
	}

	cfg := Default()
	if v := os.Getenv("ROULETTE_VARIANT"); v != "" {
		cfg.Variant = v
	}
	cfg.Season = os.Getenv("ROULETTE_SEASON")
	cfg.ConfigDir = os.Getenv("ROULETTE_CONFIG_DIR")
	if v := os.Getenv("ROULETTE_STATE_FILE"); v != "" {
		cfg.StateFile = v
	}
	if v := os.Getenv("ROULETTE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("ROULETTE_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ROULETTE_SEED %q: %w", v, err)
		}
		cfg.Seed = seed
	}
	return cfg, nil
}
