package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/mailrelay/internal"
	"github.com/dmitrymomot/mailrelay/middlewares"
	"github.com/dmitrymomot/mailrelay/pkg/validator"
)

// Stable error labels returned in the envelope's "error" field.
const (
	LabelValidation = "Validation error"
	LabelSend       = "Failed to send email"
	LabelBulk       = "Failed to send bulk emails"
	LabelTemplate   = "Failed to send template email"
	LabelTemplates  = "Failed to get templates"
	LabelTest       = "Email configuration test failed"
	LabelNotFound   = "Not found"
	LabelMethod     = "Method not allowed"
	LabelInternal   = "Internal server error"
)

// ErrorHandler renders every handler error as a failure envelope.
func ErrorHandler(c internal.Context, err error) error {
	code, resp := errorEnvelope(err)

	if code >= http.StatusInternalServerError {
		c.LogError("request failed",
			slog.Int("status", code),
			slog.String("label", resp.Error),
			slog.String("error", err.Error()),
		)
	} else {
		c.LogDebug("request rejected",
			slog.Int("status", code),
			slog.String("label", resp.Error),
			slog.String("error", err.Error()),
		)
	}
	return c.JSON(code, resp)
}

func errorEnvelope(err error) (int, errorResponse) {
	resp := errorResponse{Timestamp: Timestamp(time.Now())}

	if verrs := validator.ExtractValidationErrors(err); verrs != nil {
		resp.Error = LabelValidation
		resp.Message = verrs.First()
		resp.Details = verrs
		return http.StatusBadRequest, resp
	}

	if errors.Is(err, internal.ErrMalformedJSON) {
		resp.Error = LabelValidation
		resp.Message = err.Error()
		return http.StatusBadRequest, resp
	}

	if middlewares.IsPanicError(err) {
		resp.Error = LabelInternal
		resp.Message = "An unexpected error occurred"
		return http.StatusInternalServerError, resp
	}

	if httpErr := internal.AsHTTPError(err); httpErr != nil {
		resp.Error = httpErr.Label()
		resp.Message = httpErr.Message
		resp.Details = httpErr.Details
		return httpErr.Code, resp
	}

	resp.Error = LabelInternal
	resp.Message = err.Error()
	return http.StatusInternalServerError, resp
}

// NotFound renders the 404 envelope for unknown routes.
func NotFound(c internal.Context) error {
	return internal.ErrNotFound("Route "+c.Request().Method+" "+c.Request().URL.Path+" not found",
		internal.WithTitle(LabelNotFound))
}

// MethodNotAllowed renders the 405 envelope.
func MethodNotAllowed(c internal.Context) error {
	return internal.ErrMethodNotAllowed("Method "+c.Request().Method+" is not allowed on "+c.Request().URL.Path,
		internal.WithTitle(LabelMethod))
}
