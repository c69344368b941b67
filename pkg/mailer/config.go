package mailer

import "time"

// Config holds mailer configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	DefaultFrom    string        `env:"MAILER_DEFAULT_FROM"`
	EscapeHTMLVars bool          `env:"MAILER_ESCAPE_HTML_VARIABLES" envDefault:"false"`
	BulkBatchSize  int           `env:"BULK_BATCH_SIZE" envDefault:"10"`
	BulkBatchDelay time.Duration `env:"BULK_BATCH_DELAY" envDefault:"1s"`
}
