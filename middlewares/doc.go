// Package middlewares provides the HTTP middleware stack of the mail relay.
//
// # Request ID
//
// RequestID assigns an id to each request. An incoming X-Request-ID or
// X-Correlation-ID header is reused; otherwise a UUID is generated. The id
// is echoed in the response and stored on the request context.
//
// Use RequestIDExtractor with the logger so every record carries request_id:
//
//	log := logger.New(cfg.Logger, middlewares.RequestIDExtractor())
//
// # Recover
//
// Recover turns a panic into a *PanicError, which the application's
// ErrorHandler renders as a 500 envelope:
//
//	if pe, ok := middlewares.AsPanicError(err); ok {
//	    c.LogError("panic", "value", pe.Value)
//	}
//
// # Access log and metrics
//
// AccessLog writes one record per request. Metrics reports method, route
// pattern and status to a RequestObserver such as *metrics.Collector.
//
// # Recommended order
//
//	internal.WithMiddleware(
//	    middlewares.RequestID(),
//	    middlewares.AccessLog(),
//	    middlewares.Metrics(collector),
//	    middlewares.Recover(),
//	)
//
// Recover goes last so the access log and metrics observe the 500 it
// produces.
package middlewares
