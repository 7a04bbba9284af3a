// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
)

// Config controls the calculator service.
type Config struct {
	Addr              string        `env:"CALC_HTTP_ADDR"              envDefault:":8080"`
	ServiceName       string        `env:"OTEL_SERVICE_NAME"           envDefault:"go-chi-calculator"`
	LogLevel          string        `env:"CALC_LOG_LEVEL"              envDefault:"info"`
	Locale            string        `env:"CALC_LOCALE"                 envDefault:"en-US"`
	SessionTTL        time.Duration `env:"CALC_SESSION_TTL"            envDefault:"30m"`
	SessionSweepEvery time.Duration `env:"CALC_SESSION_SWEEP_INTERVAL" envDefault:"1m"`
	MaxSessions       int           `env:"CALC_MAX_SESSIONS"           envDefault:"10000"`
	ShutdownTimeout   time.Duration `env:"CALC_SHUTDOWN_TIMEOUT"       envDefault:"5s"`
	TracingEnabled    bool          `env:"CALC_TRACING_ENABLED"        envDefault:"true"`
	MetricsEnabled    bool          `env:"CALC_METRICS_ENABLED"        envDefault:"true"`
	OTLPLogsEnabled   bool          `env:"CALC_OTLP_LOGS_ENABLED"      envDefault:"false"`
}

// LoadDotEnv loads environment variables from path (".env" when empty) if
// the file exists. Existing process environment variables are not
// overridden.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}

	err := godotenv.Load(path)
	if err == nil {
		return nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("load %s: %w", path, err)
}

// Load parses configuration from environment variables and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, errors.New("CALC_HTTP_ADDR must not be empty"))
	}
	if c.ServiceName == "" {
		errs = append(errs, errors.New("OTEL_SERVICE_NAME must not be empty"))
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("CALC_LOG_LEVEL: %w", err))
	}
	if _, err := language.Parse(c.Locale); err != nil {
		errs = append(errs, fmt.Errorf("CALC_LOCALE %q: %w", c.Locale, err))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("CALC_SESSION_TTL must be positive, got %s", c.SessionTTL))
	}
	if c.SessionSweepEvery <= 0 {
		errs = append(errs, fmt.Errorf("CALC_SESSION_SWEEP_INTERVAL must be positive, got %s", c.SessionSweepEvery))
	}
	if c.MaxSessions <= 0 {
		errs = append(errs, fmt.Errorf("CALC_MAX_SESSIONS must be positive, got %d", c.MaxSessions))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("CALC_SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout))
	}

	return errors.Join(errs...)
}

// LocaleTag returns the configured default display locale.
func (c Config) LocaleTag() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.AmericanEnglish
	}
	return tag
}
