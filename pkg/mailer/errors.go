package mailer

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRecipient indicates no recipient was specified.
	ErrNoRecipient = errors.New("email must have at least one recipient")

	// ErrNoSubject indicates no subject was provided.
	ErrNoSubject = errors.New("email must have a subject")

	// ErrNoContent indicates neither a text nor an HTML body was provided.
	ErrNoContent = errors.New("email must have text or HTML content")

	// ErrTemplateNotFound indicates the requested template id is not registered.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrInvalidTemplates indicates a malformed template catalogue.
	ErrInvalidTemplates = errors.New("invalid template catalogue")

	// ErrSendFailed indicates email sending failed.
	ErrSendFailed = errors.New("failed to send email")

	// ErrConnectionFailed indicates the transport could not reach or authenticate with the relay.
	ErrConnectionFailed = errors.New("SMTP connection failed")

	// ErrNoMessages indicates an empty bulk request.
	ErrNoMessages = errors.New("bulk request must contain at least one message")

	// ErrTooManyMessages indicates a bulk request above MaxBulkMessages.
	ErrTooManyMessages = errors.New("bulk request exceeds the message limit")
)

// SendError reports a failed delivery attempt for a single message.
type SendError struct {
	Recipient string
	Err       error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("failed to send email to %s: %v", e.Recipient, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrSendFailed) hold for every SendError.
func (e *SendError) Is(target error) bool {
	return target == ErrSendFailed
}

// ConnectionError reports a failed transport verification.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("SMTP connection failed: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnectionFailed
}
