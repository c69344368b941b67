package middlewares

import (
	"log/slog"
	"runtime"

	"github.com/dmitrymomot/mailrelay/internal"
)

// DefaultStackSize is the default maximum stack trace size in bytes.
const DefaultStackSize = 4096

// RecoverOption configures the recover middleware.
type RecoverOption func(*recoverConfig)

type recoverConfig struct {
	stackSize    int
	disableStack bool
}

// WithRecoverStackSize sets the maximum stack trace size.
// Non-positive sizes keep the default.
func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *recoverConfig) {
		if size > 0 {
			cfg.stackSize = size
		}
	}
}

// WithRecoverDisablePrintStack disables stack capture.
func WithRecoverDisablePrintStack() RecoverOption {
	return func(cfg *recoverConfig) {
		cfg.disableStack = true
	}
}

// Recover returns middleware that turns a panic into a *PanicError for the
// app's ErrorHandler, which renders it as a 500 envelope.
func Recover(opts ...RecoverOption) internal.Middleware {
	cfg := &recoverConfig{stackSize: DefaultStackSize}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				attrs := []any{slog.Any("panic", r), slog.String("path", c.Request().URL.Path)}
				var stack []byte
				if !cfg.disableStack {
					stack = make([]byte, cfg.stackSize)
					stack = stack[:runtime.Stack(stack, false)]
					attrs = append(attrs, slog.String("stack", string(stack)))
				}
				c.LogError("panic recovered", attrs...)

				err = &PanicError{Value: r, Stack: stack}
			}()

			return next(c)
		}
	}
}
