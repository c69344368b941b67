package health

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// LivenessHandler always responds OK while the process is serving.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if wantsJSON(r) {
			writeJSON(w, http.StatusOK, &Response{Status: StatusHealthy})
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// ReadinessHandler runs checks and responds 503 when any of them fails.
func ReadinessHandler(checks Checks, opts ...Option) http.HandlerFunc {
	runner := &cachedRunner{checks: checks, cfg: newConfig(opts...), now: time.Now}

	return func(w http.ResponseWriter, r *http.Request) {
		resp := runner.run(r.Context())

		status := http.StatusOK
		if resp.Status == StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}

		if wantsJSON(r) {
			writeJSON(w, status, resp)
			return
		}

		w.WriteHeader(status)
		if resp.Status == StatusHealthy {
			_, _ = w.Write([]byte("OK"))
		} else {
			_, _ = w.Write([]byte("Service Unavailable"))
		}
	}
}

// wantsJSON checks if the client wants JSON response.
func wantsJSON(r *http.Request) bool {
	if r.URL.Query().Get("format") == "json" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
