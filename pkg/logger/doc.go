// Package logger builds the service's structured logger on log/slog.
//
// Logs are written as JSON to stdout at the level named by LOG_LEVEL.
// ContextExtractors add request-scoped attributes (such as the request id)
// to every record logged with a context. When SENTRY_DSN is set, warnings
// and errors are forwarded to Sentry as well; a failed Sentry init falls
// back to stdout only.
//
//	log := logger.New(cfg.Log, middlewares.RequestIDExtractor())
//	log.InfoContext(ctx, "email sent", slog.String("to", to))
package logger
