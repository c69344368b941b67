// Package mailer relays email through a pluggable transport.
//
// # Architecture
//
//   - Sender: interface every transport implements (see the smtp and resend subpackages)
//   - Renderer: literal, single-pass {{key}} substitution
//   - TemplateStore: immutable catalogue of named templates, embedded as YAML
//   - Mailer: single and templated sends plus transport verification
//   - Dispatcher: batched fan-out for bulk sends
//
// # Usage
//
//	transport, err := smtp.New(smtpCfg, smtp.WithLogger(log))
//	if err != nil {
//		return err
//	}
//
//	store, err := mailer.NewTemplateStore()
//	if err != nil {
//		return err
//	}
//
//	m := mailer.New(transport, store, mailer.WithDefaultFrom("noreply@example.com"))
//
//	id, err := m.SendTemplate(ctx, []string{"ann@example.com"}, mailer.TemplateWelcome, mailer.Variables{
//		"name": "Ann",
//	})
//
// # Bulk sending
//
// A Dispatcher splits the input into batches of DefaultBatchSize. Messages
// inside a batch are sent concurrently, batches run sequentially with
// DefaultBatchDelay between them, and results come back in input order:
//
//	d := mailer.NewDispatcher(mailer.BulkSender(m))
//	results, err := d.SendBulk(ctx, emails)
//	summary := mailer.Summarize(results)
//
// # Errors
//
// Transport failures are returned as *SendError and match ErrSendFailed.
// Verification failures are returned as *ConnectionError and match
// ErrConnectionFailed. Unknown template ids match ErrTemplateNotFound.
package mailer
