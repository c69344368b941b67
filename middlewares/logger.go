package middlewares

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/mailrelay/internal"
)

// AccessLog returns middleware that writes one log record per request.
// Server errors log at error level, client errors at warn, the rest at info.
func AccessLog() internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			start := time.Now()
			err := next(c)

			status := c.ResponseWriter().Status()
			if err != nil && !c.Written() {
				status = http.StatusInternalServerError
			}

			attrs := []any{
				slog.String("method", c.Request().Method),
				slog.String("path", c.Request().URL.Path),
				slog.Int("status", status),
				slog.Int64("bytes", c.ResponseWriter().Size()),
				slog.Duration("duration", time.Since(start)),
			}

			switch {
			case status >= http.StatusInternalServerError:
				c.LogError("request", attrs...)
			case status >= http.StatusBadRequest:
				c.LogWarn("request", attrs...)
			default:
				c.LogInfo("request", attrs...)
			}
			return err
		}
	}
}
