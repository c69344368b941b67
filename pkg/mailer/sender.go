package mailer

import (
	"context"
	"time"
)

// Sender defines the minimal interface that email transports must implement.
// It accepts a fully-prepared Email, performs exactly one delivery attempt
// and returns the message id assigned by the transport.
type Sender interface {
	Send(ctx context.Context, email *Email) (messageID string, err error)
}

// Verifier is implemented by transports that can check connectivity and
// credentials without sending a message.
type Verifier interface {
	Verify(ctx context.Context) error
}

// Observer receives the outcome of every delivery attempt.
// pkg/metrics provides the prometheus implementation.
type Observer interface {
	ObserveSend(mode string, err error, elapsed time.Duration)
}

// Send modes reported to the Observer.
const (
	ModeSingle   = "single"
	ModeTemplate = "template"
	ModeBulk     = "bulk"
)

type nopObserver struct{}

func (nopObserver) ObserveSend(string, error, time.Duration) {}
