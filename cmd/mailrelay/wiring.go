package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/mailrelay/internal"
	"github.com/dmitrymomot/mailrelay/internal/config"
	"github.com/dmitrymomot/mailrelay/internal/handlers"
	"github.com/dmitrymomot/mailrelay/middlewares"
	"github.com/dmitrymomot/mailrelay/pkg/health"
	"github.com/dmitrymomot/mailrelay/pkg/mailer"
	"github.com/dmitrymomot/mailrelay/pkg/mailer/resend"
	"github.com/dmitrymomot/mailrelay/pkg/mailer/smtp"
	"github.com/dmitrymomot/mailrelay/pkg/metrics"
	"github.com/dmitrymomot/mailrelay/pkg/sanitizer"
)

const readinessCacheTTL = 10 * time.Second

// newSender builds the configured transport. The returned close func is
// never nil.
func newSender(cfg config.Config, log *slog.Logger) (mailer.Sender, func(context.Context) error, error) {
	switch cfg.Provider {
	case config.ProviderResend:
		s, err := resend.New(cfg.Resend)
		if err != nil {
			return nil, nil, err
		}
		return s, func(context.Context) error { return nil }, nil
	default:
		t, err := smtp.New(cfg.SMTP, smtp.WithLogger(log.With(slog.String("transport", "smtp"))))
		if err != nil {
			return nil, nil, err
		}
		return t, t.Close, nil
	}
}

func newMailer(cfg config.Config, log *slog.Logger, sender mailer.Sender, obs mailer.Observer) (*mailer.Mailer, error) {
	store, err := mailer.NewTemplateStore()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	opts := []mailer.Option{
		mailer.WithDefaultFrom(cfg.Mailer.DefaultFrom),
		mailer.WithLogger(log),
	}
	if cfg.Mailer.EscapeHTMLVars {
		opts = append(opts, mailer.WithHTMLRenderer(
			mailer.NewRenderer(mailer.WithValueFilter(sanitizer.StripHTML)),
		))
	}
	if obs != nil {
		opts = append(opts, mailer.WithObserver(obs))
	}
	return mailer.New(sender, store, opts...), nil
}

// newApp assembles the HTTP application around sender.
func newApp(cfg config.Config, log *slog.Logger, sender mailer.Sender) (*internal.App, error) {
	var collector *metrics.Collector
	var obs mailer.Observer
	if cfg.MetricsEnabled {
		collector = metrics.New("mailrelay")
		obs = collector
	}

	m, err := newMailer(cfg, log, sender, obs)
	if err != nil {
		return nil, err
	}

	dispatcher := mailer.NewDispatcher(mailer.BulkSender(m),
		mailer.WithBatchSize(cfg.Mailer.BulkBatchSize),
		mailer.WithBatchDelay(cfg.Mailer.BulkBatchDelay),
		mailer.WithDispatchLogger(log),
	)

	mw := []internal.Middleware{
		middlewares.RequestID(),
		middlewares.AccessLog(),
	}
	opts := []internal.Option{
		internal.WithCustomLogger(log),
		internal.WithErrorHandler(handlers.ErrorHandler),
		internal.WithNotFoundHandler(handlers.NotFound),
		internal.WithMethodNotAllowedHandler(handlers.MethodNotAllowed),
		internal.WithHandlers(handlers.NewEmailHandler(m, dispatcher)),
		internal.WithHealthChecks(
			internal.WithReadinessCheck("transport", m.Healthcheck()),
			internal.WithHealthOptions(health.WithCacheTTL(readinessCacheTTL)),
		),
	}
	if collector != nil {
		mw = append(mw, middlewares.Metrics(collector))
		opts = append(opts, internal.WithMount("/metrics", collector.Handler()))
	}
	// Recover sits inside the access log and metrics so a panic is
	// recorded as a 500.
	mw = append(mw, middlewares.Recover())
	opts = append(opts, internal.WithMiddleware(mw...))

	return internal.New(opts...), nil
}
