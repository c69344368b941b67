package health

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/mailrelay/pkg/logger"
)

const (
	defaultTimeout = 5 * time.Second

	// StatusHealthy indicates all checks passed.
	StatusHealthy = "healthy"
	// StatusUnhealthy indicates one or more checks failed.
	StatusUnhealthy = "unhealthy"
)

// CheckFunc is the health check signature, e.g. (*mailer.Mailer).Healthcheck().
type CheckFunc func(ctx context.Context) error

// Checks is a map of named health check functions.
type Checks map[string]CheckFunc

// Response represents a health check response.
type Response struct {
	Checks map[string]Check `json:"checks,omitempty"`
	Status string           `json:"status"`
}

// Check represents the status of a single health check.
type Check struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type config struct {
	logger   *slog.Logger
	timeout  time.Duration
	cacheTTL time.Duration
}

// Option configures health check behavior.
type Option func(*config)

// WithTimeout sets the timeout for all checks.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger for failed checks.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCacheTTL reuses the last readiness result for d. Checks that dial
// external services (the SMTP relay) then run at most once per d no matter
// how often the probe is hit.
func WithCacheTTL(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.cacheTTL = d
		}
	}
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		timeout: defaultTimeout,
		logger:  logger.NewNope(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// runChecks executes all checks in parallel and returns the aggregated result.
func runChecks(ctx context.Context, checks Checks, cfg *config) *Response {
	if len(checks) == 0 {
		return &Response{Status: StatusHealthy}
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		g       errgroup.Group
		results = make(map[string]Check, len(checks))
		status  = StatusHealthy
	)

	for name, check := range checks {
		g.Go(func() error {
			result := Check{Status: StatusHealthy}
			if err := check(ctx); err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					err = ErrCheckTimeout
				}
				result.Status = StatusUnhealthy
				result.Error = err.Error()
				cfg.logger.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.String("error", err.Error()),
				)
			}

			mu.Lock()
			defer mu.Unlock()
			results[name] = result
			if result.Status == StatusUnhealthy {
				status = StatusUnhealthy
			}
			return nil
		})
	}
	_ = g.Wait()

	return &Response{Status: status, Checks: results}
}

// cachedRunner memoizes runChecks for cfg.cacheTTL.
type cachedRunner struct {
	checks Checks
	cfg    *config
	now    func() time.Time

	mu      sync.Mutex
	last    *Response
	expires time.Time
}

func (r *cachedRunner) run(ctx context.Context) *Response {
	if r.cfg.cacheTTL <= 0 {
		return runChecks(ctx, r.checks, r.cfg)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last != nil && r.now().Before(r.expires) {
		return r.last
	}
	r.last = runChecks(ctx, r.checks, r.cfg)
	r.expires = r.now().Add(r.cfg.cacheTTL)
	return r.last
}
