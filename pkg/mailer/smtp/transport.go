package smtp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/wneessen/go-mail"
	"golang.org/x/time/rate"

	"github.com/dmitrymomot/mailrelay/pkg/logger"
	"github.com/dmitrymomot/mailrelay/pkg/mailer"
)

var (
	// ErrMissingHost indicates an empty SMTP_HOST.
	ErrMissingHost = errors.New("smtp: host is required")

	// ErrNoSender indicates neither the message nor the config provide a from address.
	ErrNoSender = errors.New("smtp: no sender address")

	// ErrClosed is returned by Send after Close.
	ErrClosed = errors.New("smtp: transport closed")
)

// client is the subset of *mail.Client the pool uses.
type client interface {
	DialWithContext(ctx context.Context) error
	Send(messages ...*mail.Msg) error
	Close() error
}

// session is one pooled SMTP connection. A nil client means the slot is
// not connected and will dial on next use.
type session struct {
	client client
	sent   int
}

// Transport is a pooled SMTP sender. It keeps at most MaxConnections live
// sessions, recycles a session after MaxMessages deliveries or any error,
// and throttles deliveries to RateLimit per second.
type Transport struct {
	cfg       Config
	logger    *slog.Logger
	limiter   *rate.Limiter
	slots     chan *session
	newClient func() (client, error)
	closed    atomic.Bool
}

// Option configures a Transport.
type Option func(*Transport)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Transport) {
		if l != nil {
			t.logger = l
		}
	}
}

// New creates a pooled SMTP transport. No connection is made until the
// first Send or Verify.
func New(cfg Config, opts ...Option) (*Transport, error) {
	if cfg.Host == "" {
		return nil, ErrMissingHost
	}
	cfg = cfg.withDefaults()

	limit := rate.Inf
	burst := 0
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
		burst = cfg.RateLimit
	}

	t := &Transport{
		cfg:     cfg,
		logger:  logger.NewNope(),
		limiter: rate.NewLimiter(limit, burst),
		slots:   make(chan *session, cfg.MaxConnections),
	}
	t.newClient = t.dialer
	for range cfg.MaxConnections {
		t.slots <- &session{}
	}

	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

func (t *Transport) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(t.cfg.Port),
		mail.WithTimeout(t.cfg.Timeout),
	}

	if t.cfg.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	if t.cfg.Username != "" && t.cfg.Password != "" {
		opts = append(opts,
			mail.WithUsername(t.cfg.Username),
			mail.WithPassword(t.cfg.Password),
			mail.WithSMTPAuth(mail.SMTPAuthAutoDiscover),
		)
	}
	return opts
}

func (t *Transport) dialer() (client, error) {
	c, err := mail.NewClient(t.cfg.Host, t.clientOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return c, nil
}

// Send implements mailer.Sender.
func (t *Transport) Send(ctx context.Context, email *mailer.Email) (string, error) {
	msg, id, err := t.buildMessage(email)
	if err != nil {
		return "", err
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("smtp: rate limiter: %w", err)
	}

	s, err := t.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer t.release(s)

	if s.client == nil {
		c, err := t.newClient()
		if err != nil {
			return "", err
		}
		if err := c.DialWithContext(ctx); err != nil {
			return "", fmt.Errorf("smtp: dial %s:%d: %w", t.cfg.Host, t.cfg.Port, err)
		}
		s.client = c
	}

	if err := s.client.Send(msg); err != nil {
		t.discard(s)
		return "", err
	}

	s.sent++
	if s.sent >= t.cfg.MaxMessages {
		t.logger.DebugContext(ctx, "smtp: recycling connection", slog.Int("sent", s.sent))
		t.discard(s)
	}
	return id, nil
}

// Verify dials and authenticates against the relay, then disconnects.
func (t *Transport) Verify(ctx context.Context) error {
	c, err := t.newClient()
	if err != nil {
		return err
	}
	if err := c.DialWithContext(ctx); err != nil {
		return err
	}
	return c.Close()
}

// Close disconnects all idle sessions. Sessions in use are closed as they
// are released.
func (t *Transport) Close(ctx context.Context) error {
	t.closed.Store(true)

	var errs []error
	for range cap(t.slots) {
		select {
		case s := <-t.slots:
			if s.client != nil {
				if err := s.client.Close(); err != nil {
					errs = append(errs, err)
				}
				s.client = nil
			}
		case <-ctx.Done():
			errs = append(errs, ctx.Err())
			return errors.Join(errs...)
		}
	}
	return errors.Join(errs...)
}

func (t *Transport) acquire(ctx context.Context) (*session, error) {
	if t.closed.Load() {
		return nil, ErrClosed
	}
	select {
	case s := <-t.slots:
		return s, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *Transport) release(s *session) {
	if t.closed.Load() {
		t.discard(s)
	}
	t.slots <- s
}

func (t *Transport) discard(s *session) {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			t.logger.Debug("smtp: close connection", slog.String("error", err.Error()))
		}
	}
	s.client = nil
	s.sent = 0
}
