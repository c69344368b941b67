package middlewares

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mailrelay/internal"
	"github.com/dmitrymomot/mailrelay/pkg/logger"
)

// requestIDKey is the context key for storing the request ID.
type requestIDKey struct{}

// RequestIDHeader is the response header carrying the request ID.
const RequestIDHeader = "X-Request-ID"

// DefaultRequestIDHeaders are the headers checked (in order) for an existing request ID.
var DefaultRequestIDHeaders = []string{"X-Request-ID", "X-Correlation-ID"}

// RequestIDOption configures the request ID middleware.
type RequestIDOption func(*requestIDConfig)

type requestIDConfig struct {
	generator func() string
	headers   []string
}

// WithRequestIDHeaders sets the headers to check for existing request IDs.
func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		cfg.headers = headers
	}
}

// WithRequestIDGenerator sets a custom ID generator function.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		if gen != nil {
			cfg.generator = gen
		}
	}
}

// RequestID returns middleware that tags each request with an ID, reusing an
// upstream one when a known header carries it. The ID goes into the request
// context (picked up by RequestIDExtractor) and the X-Request-ID response header.
func RequestID(opts ...RequestIDOption) internal.Middleware {
	cfg := &requestIDConfig{
		headers:   DefaultRequestIDHeaders,
		generator: uuid.NewString,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			var reqID string
			for _, header := range cfg.headers {
				if v := c.Header(header); v != "" {
					reqID = v
					break
				}
			}
			if reqID == "" {
				reqID = cfg.generator()
			}

			c.Set(requestIDKey{}, reqID)
			c.SetHeader(RequestIDHeader, reqID)

			return next(c)
		}
	}
}

// GetRequestID extracts the request ID from the context.
// Returns an empty string if no request ID is set.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// RequestIDExtractor returns a ContextExtractor that adds "request_id" to log records.
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v := GetRequestID(ctx); v != "" {
			return slog.String("request_id", v), true
		}
		return slog.Attr{}, false
	}
}
