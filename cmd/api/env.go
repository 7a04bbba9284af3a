package main

import (
	"go-chi-calculator/internal/config"
)

// loadConfig loads .env when present, then parses and validates the
// environment. Existing process environment variables win over .env.
func loadConfig() (config.Config, error) {
	if err := config.LoadDotEnv(""); err != nil {
		return config.Config{}, err
	}
	return config.Load()
}
