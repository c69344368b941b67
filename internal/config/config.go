// Package config loads the relay configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/mailrelay/pkg/logger"
	"github.com/dmitrymomot/mailrelay/pkg/mailer"
	"github.com/dmitrymomot/mailrelay/pkg/mailer/resend"
	"github.com/dmitrymomot/mailrelay/pkg/mailer/smtp"
)

// Mail providers.
const (
	ProviderSMTP   = "smtp"
	ProviderResend = "resend"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full process configuration. It is read once at startup.
type Config struct {
	Logger logger.Config
	Mailer mailer.Config
	SMTP   smtp.Config
	Resend resend.Config

	Provider        string        `env:"MAILER_PROVIDER"  envDefault:"smtp"`
	HTTPAddr        string        `env:"HTTP_ADDR"        envDefault:":3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	MetricsEnabled  bool          `env:"METRICS_ENABLED"  envDefault:"true"`
}

// Load reads an optional .env file, then the process environment.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return parse(env.Options{})
}

// FromMap parses cfg from vars instead of the process environment.
func FromMap(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the selected provider has what it needs.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderSMTP:
		if c.SMTP.Host == "" {
			return fmt.Errorf("%w: SMTP_HOST is required for the smtp provider", ErrInvalidConfig)
		}
	case ProviderResend:
		if c.Resend.APIKey == "" {
			return fmt.Errorf("%w: RESEND_API_KEY is required for the resend provider", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown MAILER_PROVIDER %q", ErrInvalidConfig, c.Provider)
	}
	if c.Mailer.BulkBatchSize < 1 {
		return fmt.Errorf("%w: BULK_BATCH_SIZE must be positive", ErrInvalidConfig)
	}
	if c.Mailer.BulkBatchDelay < 0 {
		return fmt.Errorf("%w: BULK_BATCH_DELAY must not be negative", ErrInvalidConfig)
	}
	return nil
}
