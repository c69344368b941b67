package middlewares

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/mailrelay/internal"
)

// RequestObserver records HTTP request metrics. *metrics.Collector implements it.
type RequestObserver interface {
	RequestStarted() func(method, route string, status int)
}

// Metrics returns middleware that reports each request to obs, labelled by
// the matched chi route pattern so path parameters do not explode cardinality.
func Metrics(obs RequestObserver) internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			done := obs.RequestStarted()
			err := next(c)

			status := c.ResponseWriter().Status()
			if err != nil && !c.Written() {
				status = http.StatusInternalServerError
			}
			done(c.Request().Method, routePattern(c), status)
			return err
		}
	}
}

func routePattern(c internal.Context) string {
	if rctx := chi.RouteContext(c.Request().Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
