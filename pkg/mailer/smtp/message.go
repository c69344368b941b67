package smtp

import (
	"bytes"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"

	"github.com/dmitrymomot/mailrelay/pkg/mailer"
)

// buildMessage converts an Email into a go-mail message and assigns it a
// Message-ID. The returned id is the header value, angle brackets included.
func (t *Transport) buildMessage(email *mailer.Email) (*mail.Msg, string, error) {
	from := email.From
	if from == "" {
		from = t.cfg.Username
	}
	if from == "" {
		return nil, "", ErrNoSender
	}

	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, "", fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(email.To...); err != nil {
		return nil, "", fmt.Errorf("invalid to address: %w", err)
	}
	if len(email.CC) > 0 {
		if err := msg.Cc(email.CC...); err != nil {
			return nil, "", fmt.Errorf("invalid cc address: %w", err)
		}
	}
	if len(email.BCC) > 0 {
		if err := msg.Bcc(email.BCC...); err != nil {
			return nil, "", fmt.Errorf("invalid bcc address: %w", err)
		}
	}
	if email.ReplyTo != "" {
		if err := msg.ReplyTo(email.ReplyTo); err != nil {
			return nil, "", fmt.Errorf("invalid reply-to address: %w", err)
		}
	}

	msg.Subject(email.Subject)

	switch {
	case email.HTML != "" && email.Text != "":
		msg.SetBodyString(mail.TypeTextPlain, email.Text)
		msg.AddAlternativeString(mail.TypeTextHTML, email.HTML)
	case email.HTML != "":
		msg.SetBodyString(mail.TypeTextHTML, email.HTML)
	default:
		msg.SetBodyString(mail.TypeTextPlain, email.Text)
	}

	for key, value := range email.Headers {
		msg.SetGenHeader(mail.Header(key), value)
	}

	for _, att := range email.Attachments {
		contentType := att.ContentType
		if contentType == "" {
			contentType = mime.TypeByExtension(filepath.Ext(att.Filename))
		}
		var opts []mail.FileOption
		if contentType != "" {
			opts = append(opts, mail.WithFileContentType(mail.ContentType(contentType)))
		}
		if err := msg.AttachReader(att.Filename, bytes.NewReader(att.Content), opts...); err != nil {
			return nil, "", fmt.Errorf("failed to attach file %s: %w", att.Filename, err)
		}
	}

	id := uuid.NewString() + "@" + messageIDDomain(from, t.cfg.Host)
	msg.SetMessageIDWithValue(id)
	msg.SetDate()

	return msg, "<" + id + ">", nil
}

// messageIDDomain picks the right-hand side of a Message-ID: the sender's
// domain when it has one, otherwise the relay host.
func messageIDDomain(from, host string) string {
	addr := from
	if i := strings.LastIndex(addr, "<"); i >= 0 {
		addr = strings.TrimSuffix(addr[i+1:], ">")
	}
	if i := strings.LastIndex(addr, "@"); i >= 0 && i < len(addr)-1 {
		return addr[i+1:]
	}
	if host != "" {
		return host
	}
	return "localhost"
}
