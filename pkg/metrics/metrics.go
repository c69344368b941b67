// Package metrics exposes prometheus collectors for relay and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for mail sends.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Collector holds all service metrics on a private registry.
// It implements mailer.Observer.
type Collector struct {
	registry         *prometheus.Registry
	emailsTotal      *prometheus.CounterVec
	sendDuration     *prometheus.HistogramVec
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge
}

// New creates a Collector with its metrics registered under namespace.
// Go runtime and process collectors are registered too.
func New(namespace string) *Collector {
	if namespace == "" {
		namespace = "mailrelay"
	}

	c := &Collector{
		registry: prometheus.NewRegistry(),
		emailsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "emails_total",
				Help:      "Total number of email delivery attempts",
			},
			[]string{"mode", "status"},
		),
		sendDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "email_send_duration_seconds",
				Help:      "Time spent handing a message to the transport",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"mode"},
		),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method", "route"},
		),
		requestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests currently being processed",
			},
		),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.emailsTotal,
		c.sendDuration,
		c.requestsTotal,
		c.requestDuration,
		c.requestsInFlight,
	)
	return c
}

// ObserveSend records one delivery attempt.
func (c *Collector) ObserveSend(mode string, err error, elapsed time.Duration) {
	status := StatusSent
	if err != nil {
		status = StatusFailed
	}
	c.emailsTotal.WithLabelValues(mode, status).Inc()
	c.sendDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
}

// RequestStarted marks a request in flight and returns the func that
// records its completion.
func (c *Collector) RequestStarted() func(method, route string, status int) {
	start := time.Now()
	c.requestsInFlight.Inc()
	return func(method, route string, status int) {
		c.requestsInFlight.Dec()
		c.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		c.requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
