package resend

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v3"

	"github.com/dmitrymomot/mailrelay/pkg/mailer"
)

// ErrMissingAPIKey indicates an empty RESEND_API_KEY.
var ErrMissingAPIKey = errors.New("resend: api key is required")

// Config holds Resend provider configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	APIKey      string `env:"RESEND_API_KEY"`
	SenderEmail string `env:"RESEND_FROM_EMAIL"`
	SenderName  string `env:"RESEND_FROM_NAME"`
}

// Sender implements mailer.Sender using the Resend API.
// It does not implement mailer.Verifier.
type Sender struct {
	client *resend.Client
	config Config
}

// New creates a new Resend sender.
func New(cfg Config) (*Sender, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &Sender{
		client: resend.NewClient(cfg.APIKey),
		config: cfg,
	}, nil
}

// Send implements mailer.Sender and returns the Resend email id.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) (string, error) {
	req := &resend.SendEmailRequest{
		From:    s.from(email.From),
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
		ReplyTo: email.ReplyTo,
		Cc:      email.CC,
		Bcc:     email.BCC,
		Headers: email.Headers,
	}

	if len(email.Attachments) > 0 {
		req.Attachments = convertAttachments(email.Attachments)
	}

	resp, err := s.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		return "", fmt.Errorf("resend: %w", err)
	}
	return resp.Id, nil
}

func (s *Sender) from(override string) string {
	if override != "" {
		return override
	}
	return mailer.Recipient(s.config.SenderName, s.config.SenderEmail)
}

func convertAttachments(attachments []mailer.Attachment) []*resend.Attachment {
	result := make([]*resend.Attachment, len(attachments))
	for i, a := range attachments {
		result[i] = &resend.Attachment{
			Filename:    a.Filename,
			Content:     a.Content,
			ContentType: a.ContentType,
		}
	}
	return result
}
