package internal

import (
	"context"
	"log/slog"
	"time"
)

// RunOption configures the server runtime.
type RunOption func(*runConfig)

type runConfig struct {
	logger          *slog.Logger
	baseCtx         context.Context
	shutdownHooks   []func(context.Context) error
	shutdownTimeout time.Duration
}

func buildRunConfig(opts ...RunOption) *runConfig {
	cfg := &runConfig{shutdownTimeout: defaultShutdownTimeout}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Logger sets the logger used for server lifecycle messages.
func Logger(l *slog.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = l
	}
}

// ShutdownTimeout sets how long in-flight requests and hooks get to finish.
func ShutdownTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		if d > 0 {
			c.shutdownTimeout = d
		}
	}
}

// ShutdownHook registers a function run after the HTTP server stops.
// Hooks run in registration order.
func ShutdownHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.shutdownHooks = append(c.shutdownHooks, fn)
		}
	}
}

// WithContext sets the base context. Cancelling it triggers shutdown.
func WithContext(ctx context.Context) RunOption {
	return func(c *runConfig) {
		c.baseCtx = ctx
	}
}
