package smtp

import "time"

// Config holds SMTP relay configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	Host           string        `env:"SMTP_HOST"`
	Username       string        `env:"SMTP_USER"`
	Password       string        `env:"SMTP_PASS"`
	Port           int           `env:"SMTP_PORT" envDefault:"587"`
	MaxConnections int           `env:"SMTP_MAX_CONNECTIONS" envDefault:"5"`
	MaxMessages    int           `env:"SMTP_MAX_MESSAGES" envDefault:"100"`
	RateLimit      int           `env:"SMTP_RATE_LIMIT" envDefault:"10"`
	Timeout        time.Duration `env:"SMTP_TIMEOUT" envDefault:"30s"`
	Secure         bool          `env:"SMTP_SECURE" envDefault:"false"`
}

const (
	defaultPort           = 587
	defaultMaxConnections = 5
	defaultMaxMessages    = 100
	defaultTimeout        = 30 * time.Second
)

func (c Config) withDefaults() Config {
	if c.Port <= 0 {
		c.Port = defaultPort
	}
	if c.MaxConnections <= 0 {
		c.MaxConnections = defaultMaxConnections
	}
	if c.MaxMessages <= 0 {
		c.MaxMessages = defaultMaxMessages
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	return c
}
