package internal

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrymomot/mailrelay/pkg/logger"
)

const defaultAddress = ":3000"

// runtimeConfig holds configuration for running the HTTP server.
type runtimeConfig struct {
	handler         http.Handler
	address         string
	logger          *slog.Logger
	shutdownTimeout time.Duration
	shutdownHooks   []func(context.Context) error
	baseCtx         context.Context
}

func newHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
	}
}

// runServer serves until the base context is cancelled or the process gets
// SIGINT/SIGTERM. It returns once in-flight requests have drained and every
// shutdown hook has run.
func runServer(cfg runtimeConfig) error {
	if cfg.address == "" {
		cfg.address = defaultAddress
	}
	if cfg.shutdownTimeout <= 0 {
		cfg.shutdownTimeout = defaultShutdownTimeout
	}
	log := cfg.logger
	if log == nil {
		log = logger.NewNope()
	}
	base := cfg.baseCtx
	if base == nil {
		base = context.Background()
	}

	ctx, stop := signal.NotifyContext(base, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", cfg.address)
	if err != nil {
		return err
	}

	server := newHTTPServer(cfg.address, cfg.handler)
	serveErr := make(chan error, 1)
	go func() {
		log.Info("mail relay listening", slog.String("address", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	return shutdown(server, cfg, log)
}

// shutdown stops accepting requests, waits for in-flight ones, then runs
// the hooks in order. Every hook runs even if an earlier step failed.
func shutdown(server *http.Server, cfg runtimeConfig, log *slog.Logger) error {
	log.Info("shutting down", slog.Duration("timeout", cfg.shutdownTimeout))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout)
	defer cancel()

	var errs []error
	if err := server.Shutdown(ctx); err != nil {
		errs = append(errs, err)
		log.Error("http server shutdown failed", slog.String("error", err.Error()))
	}
	for i, hook := range cfg.shutdownHooks {
		if err := hook(ctx); err != nil {
			errs = append(errs, err)
			log.Error("shutdown hook failed", slog.Int("hook", i), slog.String("error", err.Error()))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	log.Info("shutdown completed")
	return nil
}
