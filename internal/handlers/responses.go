package handlers

import (
	"time"

	"github.com/dmitrymomot/mailrelay/pkg/mailer"
)

// TimestampLayout is the envelope timestamp format: ISO-8601, UTC, milliseconds.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Timestamp marshals as TimestampLayout.
type Timestamp time.Time

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).UTC().Format(TimestampLayout) + `"`), nil
}

type sendResponse struct {
	Success   bool      `json:"success"`
	MessageID string    `json:"messageId"`
	Message   string    `json:"message"`
	Timestamp Timestamp `json:"timestamp"`
}

type templateResponse struct {
	Success    bool      `json:"success"`
	MessageID  string    `json:"messageId"`
	TemplateID string    `json:"templateId"`
	Message    string    `json:"message"`
	Timestamp  Timestamp `json:"timestamp"`
}

type bulkResult struct {
	Success   bool      `json:"success"`
	To        string    `json:"to"`
	MessageID string    `json:"messageId,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp Timestamp `json:"timestamp"`
}

type bulkResponse struct {
	Success   bool           `json:"success"`
	Results   []bulkResult   `json:"results"`
	Summary   mailer.Summary `json:"summary"`
	Timestamp Timestamp      `json:"timestamp"`
}

type templatesResponse struct {
	Success   bool              `json:"success"`
	Templates map[string]string `json:"templates"`
	Count     int               `json:"count"`
	Timestamp Timestamp         `json:"timestamp"`
}

type testResponse struct {
	Success   bool                    `json:"success"`
	Message   string                  `json:"message"`
	Details   mailer.ConnectionStatus `json:"details"`
	Timestamp Timestamp               `json:"timestamp"`
}

type errorResponse struct {
	Success   bool      `json:"success"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Details   any       `json:"details,omitempty"`
	Timestamp Timestamp `json:"timestamp"`
}

func toBulkResults(results []mailer.SendResult) []bulkResult {
	out := make([]bulkResult, len(results))
	for i, r := range results {
		out[i] = bulkResult{
			Success:   r.Success,
			To:        r.Recipient,
			MessageID: r.MessageID,
			Error:     r.Error,
			Timestamp: Timestamp(r.Timestamp),
		}
	}
	return out
}
