package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// Config holds logger configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	Level             string `env:"LOG_LEVEL" envDefault:"info"`
	SentryDSN         string `env:"SENTRY_DSN"`
	SentryEnvironment string `env:"SENTRY_ENVIRONMENT" envDefault:"production"`
}

// ParseLevel maps debug|info|warn|error to a slog.Level. Unknown values are info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a JSON logger on stdout with optional context extractors.
// When SentryDSN is set, warnings and errors are also forwarded to Sentry;
// errors become Sentry issues.
func New(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	return NewWithWriter(os.Stdout, cfg, extractors...)
}

// NewWithWriter is New with a custom output.
func NewWithWriter(w io.Writer, cfg Config, extractors ...ContextExtractor) *slog.Logger {
	var handler slog.Handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(cfg.Level),
	})

	if cfg.SentryDSN != "" {
		if sh, err := newSentryHandler(cfg); err != nil {
			slog.New(handler).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		} else {
			handler = newMultiHandler(handler, sh)
		}
	}

	return slog.New(NewLogHandlerDecorator(handler, extractors...))
}

func newSentryHandler(cfg Config) (slog.Handler, error) {
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
		EnableLogs:  true,
	}); err != nil {
		return nil, err
	}

	return sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   []slog.Level{slog.LevelWarn, slog.LevelError},
	}.NewSentryHandler(context.Background()), nil
}

// Flush waits up to the context deadline for buffered Sentry events.
// It is a no-op when Sentry was never initialized.
func Flush(ctx context.Context) error {
	timeout := 2 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		timeout = max(time.Until(deadline), 0)
	}
	sentry.Flush(timeout)
	return nil
}

// NewNope creates a logger that discards all output.
func NewNope() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
