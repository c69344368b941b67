package mailer

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Recipient formats a name and email into RFC 5322 address format.
// Returns "Name <email>" if name is provided, otherwise just email.
func Recipient(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// Addresses is a list of email addresses that decodes from either a single
// JSON string or an array of strings.
type Addresses []string

// UnmarshalJSON accepts "a@x.io" as well as ["a@x.io", "b@x.io"].
func (a *Addresses) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*a = nil
			return nil
		}
		*a = Addresses{single}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("addresses: expected string or array of strings: %w", err)
	}
	*a = list
	return nil
}

// String joins the addresses the way they are reported back to callers.
func (a Addresses) String() string {
	return strings.Join(a, ", ")
}

// Email represents a fully-prepared email message ready for sending.
type Email struct {
	Headers     map[string]string // Custom headers
	Subject     string            // Email subject
	HTML        string            // HTML body content
	Text        string            // Plain text body
	From        string            // Override default sender
	ReplyTo     string            // Reply-to address
	To          []string          // Recipients (at least one required)
	CC          []string          // Carbon copy recipients
	BCC         []string          // Blind carbon copy recipients
	Attachments []Attachment      // File attachments
}

// Recipient returns the comma-joined To list.
func (e *Email) Recipient() string {
	if e == nil {
		return ""
	}
	return Addresses(e.To).String()
}

// Attachment represents an email attachment.
type Attachment struct {
	Filename    string // Display name for the attachment
	ContentType string // MIME type (e.g., "application/pdf"); detected from Filename when empty
	Content     []byte // Raw file content
}

// Variables holds template substitution values keyed by placeholder name.
type Variables map[string]any

// ConnectionStatus is the outcome of a transport verification.
type ConnectionStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// SendResult is the per-message outcome of a bulk dispatch.
type SendResult struct {
	Timestamp time.Time `json:"timestamp"`
	Recipient string    `json:"to"`
	MessageID string    `json:"messageId,omitempty"`
	Error     string    `json:"error,omitempty"`
	Success   bool      `json:"success"`
}

// Summary aggregates bulk results.
type Summary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// Summarize counts successes and failures in results.
func Summarize(results []SendResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Success {
			s.Successful++
		}
	}
	s.Failed = s.Total - s.Successful
	return s
}
