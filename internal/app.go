package internal

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/mailrelay/pkg/health"
	"github.com/dmitrymomot/mailrelay/pkg/logger"
)

// Default server timeouts (hardcoded, opinionated).
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 2 * time.Minute // bulk sends pause between batches
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
	defaultMaxBodySize       = 10 << 20 // 10MB
)

// App orchestrates the application lifecycle.
// It manages HTTP routing, middleware, and graceful shutdown.
// App is immutable after creation - all configuration is done via New().
type App struct {
	router                  chi.Router
	errorHandler            ErrorHandler
	notFoundHandler         HandlerFunc
	methodNotAllowedHandler HandlerFunc
	healthConfig            *healthConfig
	logger                  *slog.Logger
	middlewares             []Middleware
	handlers                []Handler
	mounts                  []mount
	maxBodySize             int64
}

// mount is a plain http.Handler attached next to the API routes.
type mount struct {
	handler http.Handler
	pattern string
}

// New creates a new application with the given options.
// The App is immutable after creation.
//
// Example:
//
//	app := internal.New(
//	    internal.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	    internal.WithHandlers(handlers.NewEmailHandler(m, d)),
//	    internal.WithErrorHandler(handlers.ErrorHandler),
//	)
func New(opts ...Option) *App {
	a := &App{
		router:      chi.NewRouter(),
		logger:      logger.NewNope(), // Default: noop logger (before options)
		maxBodySize: defaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(a)
	}

	a.setupRoutes()
	return a
}

// Router returns the underlying chi.Router for the App.
func (a *App) Router() chi.Router {
	return a.router
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Run starts the HTTP server and blocks until shutdown.
// It handles SIGINT and SIGTERM for graceful shutdown.
//
// Example:
//
//	err := app.Run(":3000",
//	    internal.Logger(log),
//	    internal.ShutdownHook(transport.Close),
//	)
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)

	return runServer(runtimeConfig{
		handler:         a.router,
		address:         addr,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		shutdownHooks:   cfg.shutdownHooks,
		baseCtx:         cfg.baseCtx,
	})
}

// setupRoutes configures the router with middleware and handlers.
func (a *App) setupRoutes() {
	// Set custom error handlers on chi router
	if a.notFoundHandler != nil {
		a.router.NotFound(a.wrapHandler(a.notFoundHandler))
	}
	if a.methodNotAllowedHandler != nil {
		a.router.MethodNotAllowed(a.wrapHandler(a.methodNotAllowedHandler))
	}

	// Apply global middleware
	for _, mw := range a.middlewares {
		a.router.Use(a.adaptMiddleware(mw))
	}

	for _, m := range a.mounts {
		a.router.Mount(m.pattern, m.handler)
	}

	// Register health check endpoints
	if a.healthConfig != nil {
		opts := append([]health.Option{health.WithLogger(a.logger)}, a.healthConfig.options...)
		a.router.Get(a.healthConfig.livenessPath, health.LivenessHandler())
		a.router.Get(a.healthConfig.readinessPath, health.ReadinessHandler(a.healthConfig.checks, opts...))
	}

	// Register handlers
	r := &routerAdapter{router: a.router, app: a}
	for _, h := range a.handlers {
		h.Routes(r)
	}
}

// wrapHandler converts a HandlerFunc to http.HandlerFunc using the app's error handler.
func (a *App) wrapHandler(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := newContext(w, r, a)
		if err := h(c); err != nil {
			a.handleError(c, err)
		}
	}
}

// handleError handles errors from handlers using the configured error handler.
func (a *App) handleError(c Context, err error) {
	// Check if response has already been written
	if c.Written() {
		return
	}
	if a.errorHandler != nil {
		if herr := a.errorHandler(c, err); herr != nil {
			a.logger.ErrorContext(c, "error handler failed", slog.Any("error", herr))
		}
		return
	}
	http.Error(c.Response(), "Internal Server Error", http.StatusInternalServerError)
}

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        health.Checks
	options       []health.Option
	livenessPath  string
	readinessPath string
}

// Default health check paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during readiness probe.
//
// Example:
//
//	internal.WithReadinessCheck("transport", m.Healthcheck())
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if c.checks == nil {
			c.checks = make(health.Checks)
		}
		c.checks[name] = fn
	}
}

// WithHealthOptions passes options (timeout, cache TTL) to the readiness handler.
func WithHealthOptions(opts ...health.Option) HealthOption {
	return func(c *healthConfig) {
		c.options = append(c.options, opts...)
	}
}
