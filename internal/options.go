package internal

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/mailrelay/pkg/logger"
)

// Option configures the application.
type Option func(*App)

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHandlers registers handlers that declare routes.
// Each handler's Routes method is called during setup.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithMount attaches a plain http.Handler at pattern, e.g. the metrics endpoint.
// Mounted handlers still run behind global middleware.
func WithMount(pattern string, h http.Handler) Option {
	return func(a *App) {
		if h != nil {
			a.mounts = append(a.mounts, mount{pattern: pattern, handler: h})
		}
	}
}

// WithErrorHandler sets a custom error handler for handler errors.
// Called when a handler returns a non-nil error.
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

// WithNotFoundHandler sets a custom 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.notFoundHandler = h
	}
}

// WithMethodNotAllowedHandler sets a custom 405 handler.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.methodNotAllowedHandler = h
	}
}

// WithHealthChecks enables health check endpoints with optional configuration.
// Liveness (/health/live): Always returns OK if process is running.
// Readiness (/health/ready): Runs all configured checks.
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithLogger creates a logger with a component name and optional extractors.
// The component name is added to every log entry for easy filtering.
func WithLogger(component string, cfg logger.Config, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		a.logger = logger.New(cfg, extractors...).With("component", component)
	}
}

// WithCustomLogger sets a fully custom logger.
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMaxBodySize caps request bodies read by BindJSON. Zero disables the cap.
func WithMaxBodySize(n int64) Option {
	return func(a *App) {
		if n >= 0 {
			a.maxBodySize = n
		}
	}
}
