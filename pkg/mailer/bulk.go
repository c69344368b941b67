package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/mailrelay/pkg/logger"
)

const (
	// MaxBulkMessages is the largest bulk request accepted.
	MaxBulkMessages = 50

	// DefaultBatchSize is the number of messages sent concurrently per batch.
	DefaultBatchSize = 10

	// DefaultBatchDelay is the pause between consecutive batches.
	DefaultBatchDelay = time.Second
)

// MessageSender delivers one message and returns its id. *Mailer satisfies it.
type MessageSender interface {
	Send(ctx context.Context, email *Email) (string, error)
}

// BulkSender adapts a Mailer so bulk items are reported under ModeBulk.
func BulkSender(m *Mailer) MessageSender {
	return bulkSender{m}
}

type bulkSender struct{ m *Mailer }

func (b bulkSender) Send(ctx context.Context, email *Email) (string, error) {
	return b.m.SendBulkItem(ctx, email)
}

// Dispatcher sends a list of messages in fixed-size batches: messages inside
// a batch are sent concurrently, batches run one after another with a pause
// between them.
type Dispatcher struct {
	sender    MessageSender
	logger    *slog.Logger
	sleep     func(time.Duration)
	now       func() time.Time
	batchSize int
	delay     time.Duration
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithBatchSize sets the batch size. Values below 1 are ignored.
func WithBatchSize(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.batchSize = n
		}
	}
}

// WithBatchDelay sets the pause between batches. Zero disables the pause.
func WithBatchDelay(delay time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if delay >= 0 {
			d.delay = delay
		}
	}
}

// WithSleep replaces time.Sleep for the inter-batch pause.
func WithSleep(fn func(time.Duration)) DispatcherOption {
	return func(d *Dispatcher) {
		if fn != nil {
			d.sleep = fn
		}
	}
}

// WithDispatchLogger sets the logger.
func WithDispatchLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDispatcher creates a Dispatcher over sender.
func NewDispatcher(sender MessageSender, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		sender:    sender,
		logger:    logger.NewNope(),
		sleep:     time.Sleep,
		now:       time.Now,
		batchSize: DefaultBatchSize,
		delay:     DefaultBatchDelay,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SendBulk sends every message and returns one result per input, in input order.
// Per-message failures are recorded in the results; the returned error is
// reserved for requests that cannot be dispatched at all.
//
// Dispatch is detached from ctx cancellation: once started, every batch and
// pause runs to completion.
func (d *Dispatcher) SendBulk(ctx context.Context, emails []*Email) ([]SendResult, error) {
	switch {
	case len(emails) == 0:
		return nil, ErrNoMessages
	case len(emails) > MaxBulkMessages:
		return nil, ErrTooManyMessages
	}

	ctx = context.WithoutCancel(ctx)
	results := make([]SendResult, 0, len(emails))
	batches := (len(emails) + d.batchSize - 1) / d.batchSize

	for b := range batches {
		start := b * d.batchSize
		end := min(start+d.batchSize, len(emails))

		d.logger.DebugContext(ctx, "dispatching batch",
			slog.Int("batch", b+1),
			slog.Int("batches", batches),
			slog.Int("size", end-start),
		)

		results = append(results, joinAll(emails[start:end], func(email *Email) SendResult {
			return d.sendOne(ctx, email)
		})...)

		if b < batches-1 && d.delay > 0 {
			d.sleep(d.delay)
		}
	}

	summary := Summarize(results)
	d.logger.InfoContext(ctx, "bulk dispatch completed",
		slog.Int("total", summary.Total),
		slog.Int("successful", summary.Successful),
		slog.Int("failed", summary.Failed),
	)
	return results, nil
}

// sendOne never panics: a panicking transport yields a failed result so
// the other goroutines of the batch keep running.
func (d *Dispatcher) sendOne(ctx context.Context, email *Email) (res SendResult) {
	res = SendResult{Recipient: email.Recipient()}
	defer func() {
		if r := recover(); r != nil {
			d.logger.ErrorContext(ctx, "bulk send panicked",
				slog.String("to", res.Recipient),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			res.Success = false
			res.MessageID = ""
			res.Error = fmt.Sprint("panic: ", r)
			res.Timestamp = d.now().UTC()
		}
	}()

	id, err := d.sender.Send(ctx, email)
	res.Timestamp = d.now().UTC()
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Success = true
	res.MessageID = id
	return res
}

// joinAll runs fn for every item concurrently and waits for all of them.
// Results are written by index, so output order matches input order
// regardless of completion order.
func joinAll[T, R any](items []T, fn func(T) R) []R {
	out := make([]R, len(items))
	var g errgroup.Group
	for i, item := range items {
		g.Go(func() error {
			out[i] = fn(item)
			return nil
		})
	}
	_ = g.Wait()
	return out
}
