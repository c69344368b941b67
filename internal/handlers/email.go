package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/mailrelay/internal"
	"github.com/dmitrymomot/mailrelay/pkg/mailer"
)

// EmailHandler serves the relay API.
type EmailHandler struct {
	mailer     *mailer.Mailer
	dispatcher *mailer.Dispatcher
	now        func() time.Time
}

// NewEmailHandler creates the relay API handler.
func NewEmailHandler(m *mailer.Mailer, d *mailer.Dispatcher) *EmailHandler {
	return &EmailHandler{mailer: m, dispatcher: d, now: time.Now}
}

// Routes declares the relay endpoints.
func (h *EmailHandler) Routes(r internal.Router) {
	r.POST("/send", h.send)
	r.POST("/send-bulk", h.sendBulk)
	r.POST("/send-template", h.sendTemplate)
	r.GET("/templates", h.templates)
	r.POST("/test", h.test)
}

func (h *EmailHandler) timestamp() Timestamp {
	return Timestamp(h.now())
}

func (h *EmailHandler) send(c internal.Context) error {
	var req SendRequest
	verrs, err := c.BindJSON(&req)
	if err != nil {
		return err
	}
	if len(verrs) > 0 {
		return verrs
	}

	email, verrs := req.toEmail("")
	if len(verrs) > 0 {
		return verrs
	}

	c.LogInfo("sending email", slog.String("to", email.Recipient()))
	// Sends complete even if the client disconnects.
	id, err := h.mailer.Send(context.WithoutCancel(c), email)
	if err != nil {
		return internal.ErrInternal(err.Error(), internal.WithTitle(LabelSend), internal.WithError(err))
	}

	return c.JSON(http.StatusOK, sendResponse{
		Success:   true,
		MessageID: id,
		Message:   "Email sent successfully",
		Timestamp: h.timestamp(),
	})
}

func (h *EmailHandler) sendBulk(c internal.Context) error {
	var req BulkRequest
	verrs, err := c.BindJSON(&req)
	if err != nil {
		return err
	}
	if len(verrs) > 0 {
		return verrs
	}

	emails := make([]*mailer.Email, len(req.Messages))
	for i, msg := range req.Messages {
		email, errs := msg.toEmail(fmt.Sprintf("messages[%d].", i))
		verrs = append(verrs, errs...)
		emails[i] = email
	}
	if len(verrs) > 0 {
		return verrs
	}

	c.LogInfo("sending bulk emails", slog.Int("count", len(emails)))
	results, err := h.dispatcher.SendBulk(c, emails)
	if err != nil {
		return internal.ErrInternal(err.Error(), internal.WithTitle(LabelBulk), internal.WithError(err))
	}

	return c.JSON(http.StatusOK, bulkResponse{
		Success:   true,
		Results:   toBulkResults(results),
		Summary:   mailer.Summarize(results),
		Timestamp: h.timestamp(),
	})
}

func (h *EmailHandler) sendTemplate(c internal.Context) error {
	var req TemplateRequest
	verrs, err := c.BindJSON(&req)
	if err != nil {
		return err
	}
	if len(verrs) > 0 {
		return verrs
	}
	if req.Variables == nil {
		req.Variables = mailer.Variables{}
	}

	c.LogInfo("sending template email",
		slog.String("template", req.TemplateID),
		slog.String("to", req.To.String()),
	)
	id, err := h.mailer.SendTemplate(context.WithoutCancel(c), req.To, req.TemplateID, req.Variables)
	if err != nil {
		return internal.ErrInternal(err.Error(), internal.WithTitle(LabelTemplate), internal.WithError(err))
	}

	return c.JSON(http.StatusOK, templateResponse{
		Success:    true,
		MessageID:  id,
		TemplateID: req.TemplateID,
		Message:    "Template email sent successfully",
		Timestamp:  h.timestamp(),
	})
}

func (h *EmailHandler) templates(c internal.Context) error {
	store := h.mailer.Templates()
	if store == nil {
		return internal.ErrInternal("template catalogue is not loaded", internal.WithTitle(LabelTemplates))
	}

	available := store.Available()
	return c.JSON(http.StatusOK, templatesResponse{
		Success:   true,
		Templates: available,
		Count:     len(available),
		Timestamp: h.timestamp(),
	})
}

func (h *EmailHandler) test(c internal.Context) error {
	status, err := h.mailer.TestConnection(c)
	if err != nil {
		return internal.ErrInternal(err.Error(), internal.WithTitle(LabelTest), internal.WithError(err))
	}

	return c.JSON(http.StatusOK, testResponse{
		Success:   true,
		Message:   "Email configuration test successful",
		Details:   status,
		Timestamp: h.timestamp(),
	})
}
