package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/dmitrymomot/mailrelay/pkg/mailer"
	"github.com/dmitrymomot/mailrelay/pkg/validator"
)

// AttachmentRequest is one attachment in a send request.
// Content is taken as UTF-8 text unless Encoding is "base64".
type AttachmentRequest struct {
	Filename    string `json:"filename"    validate:"required"`
	Content     string `json:"content"     validate:"required"`
	ContentType string `json:"contentType"`
	Encoding    string `json:"encoding"    validate:"omitempty,oneof=base64"`
}

// SendRequest is the body of POST /send and each entry of POST /send-bulk.
type SendRequest struct {
	To          mailer.Addresses    `json:"to"          validate:"required,min=1,dive,email"`
	From        string              `json:"from"        validate:"omitempty,email"`
	ReplyTo     string              `json:"replyTo"     validate:"omitempty,email"`
	Subject     string              `json:"subject"     validate:"required"`
	Text        string              `json:"text"        validate:"required_without=HTML"`
	HTML        string              `json:"html"`
	CC          mailer.Addresses    `json:"cc"          validate:"omitempty,dive,email"`
	BCC         mailer.Addresses    `json:"bcc"         validate:"omitempty,dive,email"`
	Headers     map[string]string   `json:"headers"`
	Attachments []AttachmentRequest `json:"attachments" validate:"omitempty,dive"`

	// Set when the body carried the key with an empty string, which
	// validation tags cannot tell apart from a missing key.
	emptyText bool
	emptyHTML bool
}

func (r *SendRequest) UnmarshalJSON(data []byte) error {
	type plain SendRequest
	if err := json.Unmarshal(data, (*plain)(r)); err != nil {
		return err
	}

	var present struct {
		Text *string `json:"text"`
		HTML *string `json:"html"`
	}
	if err := json.Unmarshal(data, &present); err != nil {
		return err
	}
	r.emptyText = present.Text != nil && *present.Text == ""
	r.emptyHTML = present.HTML != nil && *present.HTML == ""
	return nil
}

// BulkRequest is the body of POST /send-bulk.
type BulkRequest struct {
	Messages []SendRequest `json:"messages" validate:"required,min=1,max=50,dive"`
}

// TemplateRequest is the body of POST /send-template.
type TemplateRequest struct {
	To         mailer.Addresses `json:"to"         validate:"required,min=1,dive,email"`
	TemplateID string           `json:"templateId" validate:"required,oneof=welcome reset-password order-confirmation"`
	Variables  mailer.Variables `json:"variables"`
}

// toEmail converts the request into a mailer.Email. prefix is prepended to
// field names in returned validation errors ("messages[2].").
func (r SendRequest) toEmail(prefix string) (*mailer.Email, validator.ValidationErrors) {
	email := &mailer.Email{
		To:      r.To,
		From:    r.From,
		ReplyTo: r.ReplyTo,
		Subject: r.Subject,
		Text:    r.Text,
		HTML:    r.HTML,
		CC:      r.CC,
		BCC:     r.BCC,
		Headers: r.Headers,
	}

	var verrs validator.ValidationErrors
	if r.emptyText {
		verrs = append(verrs, notEmpty(prefix+"text"))
	}
	if r.emptyHTML {
		verrs = append(verrs, notEmpty(prefix+"html"))
	}

	for i, a := range r.Attachments {
		content := []byte(a.Content)
		if a.Encoding == "base64" {
			decoded, err := base64.StdEncoding.DecodeString(a.Content)
			if err != nil {
				field := fmt.Sprintf("%sattachments[%d].content", prefix, i)
				verrs = append(verrs, validator.ValidationError{
					Field:   field,
					Message: fmt.Sprintf("%q must be a valid base64 string", field),
				})
				continue
			}
			content = decoded
		}
		email.Attachments = append(email.Attachments, mailer.Attachment{
			Filename:    a.Filename,
			ContentType: a.ContentType,
			Content:     content,
		})
	}
	return email, verrs
}

func notEmpty(field string) validator.ValidationError {
	return validator.ValidationError{
		Field:   field,
		Message: fmt.Sprintf("%q is not allowed to be empty", field),
	}
}
