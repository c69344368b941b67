// Package internal is the HTTP kernel of the relay: a chi router behind a
// small Context/HandlerFunc/Middleware abstraction, a central error handler,
// health endpoints, and a server runner with graceful shutdown.
//
// Handlers return errors instead of writing failure responses themselves:
//
//	func (h *EmailHandler) send(c internal.Context) error {
//	    var req SendRequest
//	    verrs, err := c.BindJSON(&req)
//	    if err != nil {
//	        return err
//	    }
//	    if len(verrs) > 0 {
//	        return verrs
//	    }
//	    ...
//	}
//
// The ErrorHandler passed with WithErrorHandler decides how an error becomes
// a response. *HTTPError carries the status code, label and optional details.
//
// Run listens on the given address and shuts down on SIGINT or SIGTERM,
// draining in-flight requests before running ShutdownHook callbacks.
package internal
