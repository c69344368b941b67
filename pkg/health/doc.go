// Package health serves liveness and readiness probes.
//
// LivenessHandler always answers OK. ReadinessHandler runs named checks in
// parallel under a shared timeout and answers 503 if any fails. Both reply
// with plain text unless the client asks for JSON (?format=json or an
// Accept header containing application/json):
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//		"smtp": m.Healthcheck(),
//	}, health.WithCacheTTL(30*time.Second)))
package health
