package mailer

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/mailrelay/pkg/logger"
)

// Connection statuses reported by TestConnection.
const (
	StatusConnected  = "Connected"
	StatusUnverified = "Unverified"
)

// Mailer sends single and templated messages through one Sender.
type Mailer struct {
	sender    Sender
	templates *TemplateStore
	text      *Renderer
	html      *Renderer
	observer  Observer
	logger    *slog.Logger
	from      string
}

// Option configures a Mailer.
type Option func(*Mailer)

// WithDefaultFrom sets the sender used when an Email has no From.
func WithDefaultFrom(from string) Option {
	return func(m *Mailer) {
		m.from = from
	}
}

// WithHTMLRenderer replaces the renderer used for HTML bodies.
func WithHTMLRenderer(r *Renderer) Option {
	return func(m *Mailer) {
		if r != nil {
			m.html = r
		}
	}
}

// WithObserver registers an Observer for delivery outcomes.
func WithObserver(o Observer) Option {
	return func(m *Mailer) {
		if o != nil {
			m.observer = o
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Mailer) {
		if l != nil {
			m.logger = l
		}
	}
}

// New creates a Mailer over sender and the given template catalogue.
func New(sender Sender, templates *TemplateStore, opts ...Option) *Mailer {
	m := &Mailer{
		sender:    sender,
		templates: templates,
		text:      NewRenderer(),
		html:      NewRenderer(),
		observer:  nopObserver{},
		logger:    logger.NewNope(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Templates returns the catalogue the Mailer renders from.
func (m *Mailer) Templates() *TemplateStore {
	return m.templates
}

// Send delivers email with a single attempt and returns the transport's message id.
// Delivery failures are returned as *SendError.
func (m *Mailer) Send(ctx context.Context, email *Email) (string, error) {
	return m.send(ctx, email, ModeSingle)
}

// SendTemplate renders the template id with vars and sends it to the given recipients.
func (m *Mailer) SendTemplate(ctx context.Context, to []string, id string, vars Variables) (string, error) {
	tmpl, err := m.templates.Lookup(id)
	if err != nil {
		return "", err
	}

	email := &Email{
		To:      to,
		Subject: m.text.Render(tmpl.Subject, vars),
		HTML:    m.html.Render(tmpl.HTML, vars),
		Text:    m.text.Render(tmpl.Text, vars),
	}
	return m.send(ctx, email, ModeTemplate)
}

// SendBulkItem sends one message on behalf of a bulk dispatch.
func (m *Mailer) SendBulkItem(ctx context.Context, email *Email) (string, error) {
	return m.send(ctx, email, ModeBulk)
}

func (m *Mailer) send(ctx context.Context, email *Email, mode string) (string, error) {
	if err := validate(email); err != nil {
		return "", err
	}
	if email.From == "" && m.from != "" {
		cp := *email
		cp.From = m.from
		email = &cp
	}

	start := time.Now()
	id, err := m.sender.Send(ctx, email)
	elapsed := time.Since(start)
	m.observer.ObserveSend(mode, err, elapsed)

	if err != nil {
		m.logger.ErrorContext(ctx, "email send failed",
			slog.String("to", email.Recipient()),
			slog.String("mode", mode),
			slog.String("error", err.Error()),
		)
		return "", &SendError{Recipient: email.Recipient(), Err: err}
	}

	m.logger.InfoContext(ctx, "email sent",
		slog.String("to", email.Recipient()),
		slog.String("message_id", id),
		slog.String("mode", mode),
		slog.Duration("duration", elapsed),
	)
	return id, nil
}

// TestConnection verifies the transport. Transports that cannot verify
// report StatusUnverified without an error.
func (m *Mailer) TestConnection(ctx context.Context) (ConnectionStatus, error) {
	v, ok := m.sender.(Verifier)
	if !ok {
		return ConnectionStatus{
			Status:  StatusUnverified,
			Message: "Transport does not support connection checks",
		}, nil
	}

	if err := v.Verify(ctx); err != nil {
		m.logger.WarnContext(ctx, "smtp verification failed", slog.String("error", err.Error()))
		return ConnectionStatus{}, &ConnectionError{Err: err}
	}
	return ConnectionStatus{Status: StatusConnected, Message: "SMTP connection successful"}, nil
}

// Healthcheck adapts TestConnection to a readiness probe.
func (m *Mailer) Healthcheck() func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := m.TestConnection(ctx)
		return err
	}
}

func validate(email *Email) error {
	if email == nil || len(email.To) == 0 {
		return ErrNoRecipient
	}
	if email.Subject == "" {
		return ErrNoSubject
	}
	if email.Text == "" && email.HTML == "" {
		return ErrNoContent
	}
	return nil
}
