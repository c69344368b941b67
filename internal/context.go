package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/mailrelay/pkg/validator"
)

// ValidationErrors is a collection of validation errors.
type ValidationErrors = validator.ValidationErrors

// Context provides request/response access and helper methods.
// It also implements context.Context by delegating to the underlying request context.
type Context interface {
	context.Context

	// Request returns the underlying *http.Request.
	Request() *http.Request

	// Response returns the underlying http.ResponseWriter.
	Response() http.ResponseWriter

	// ResponseWriter returns the status-recording response wrapper.
	ResponseWriter() *ResponseWriter

	// Param returns the URL parameter by name.
	Param(name string) string

	// Query returns the query parameter by name.
	Query(name string) string

	// Header returns the request header by name.
	Header(name string) string

	// SetHeader sets a response header.
	SetHeader(name, value string)

	// JSON writes a JSON response with the given status code.
	JSON(code int, v any) error

	// NoContent writes a response with no body.
	NoContent(code int) error

	// Error creates an HTTPError with the given code and message.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	// BindJSON decodes the JSON request body into v and validates it.
	// Returns validation errors separately from decode errors.
	// An empty body decodes to the zero value and is then validated.
	BindJSON(v any) (ValidationErrors, error)

	// Written returns true if the response has been written.
	Written() bool

	// Logger returns the application logger.
	Logger() *slog.Logger

	LogDebug(msg string, attrs ...any)
	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)

	// Set stores a value in the request context.
	Set(key, value any)

	// Get retrieves a value from the request context.
	Get(key any) any
}

type requestContext struct {
	response       http.ResponseWriter
	request        *http.Request
	responseWriter *ResponseWriter
	logger         *slog.Logger
	maxBodySize    int64
}

func newContext(w http.ResponseWriter, r *http.Request, app *App) *requestContext {
	rw := NewResponseWriter(w)

	return &requestContext{
		request:        r,
		response:       rw,
		responseWriter: rw,
		logger:         app.logger,
		maxBodySize:    app.maxBodySize,
	}
}

func (c *requestContext) Request() *http.Request {
	return c.request
}

func (c *requestContext) Response() http.ResponseWriter {
	return c.response
}

func (c *requestContext) ResponseWriter() *ResponseWriter {
	return c.responseWriter
}

func (c *requestContext) Deadline() (deadline time.Time, ok bool) {
	return c.request.Context().Deadline()
}

func (c *requestContext) Done() <-chan struct{} {
	return c.request.Context().Done()
}

func (c *requestContext) Err() error {
	return c.request.Context().Err()
}

func (c *requestContext) Value(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Param(name string) string {
	return chi.URLParam(c.request, name)
}

func (c *requestContext) Query(name string) string {
	return c.request.URL.Query().Get(name)
}

func (c *requestContext) Header(name string) string {
	return c.request.Header.Get(name)
}

func (c *requestContext) SetHeader(name, value string) {
	c.response.Header().Set(name, value)
}

func (c *requestContext) JSON(code int, v any) error {
	c.response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.response.WriteHeader(code)
	return json.NewEncoder(c.response).Encode(v)
}

func (c *requestContext) NoContent(code int) error {
	c.response.WriteHeader(code)
	return nil
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(code, message, opts...)
}

func (c *requestContext) BindJSON(v any) (ValidationErrors, error) {
	if c.request.Body != nil {
		body := io.Reader(c.request.Body)
		if c.maxBodySize > 0 {
			body = http.MaxBytesReader(c.response, c.request.Body, c.maxBodySize)
		}
		if err := json.NewDecoder(body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, ErrPayloadTooLarge(
					fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
					WithError(err),
				)
			}
			return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
		}
	}

	if err := validator.ValidateStruct(v); err != nil {
		if validator.IsValidationError(err) {
			return validator.ExtractValidationErrors(err), nil
		}
		return nil, fmt.Errorf("validate: %w", err)
	}
	return nil, nil
}

func (c *requestContext) Written() bool {
	return c.responseWriter.Written()
}

func (c *requestContext) Logger() *slog.Logger {
	return c.logger
}

func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.logger.DebugContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.logger.InfoContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.logger.WarnContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.logger.ErrorContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) Set(key, value any) {
	ctx := context.WithValue(c.request.Context(), key, value)
	c.request = c.request.WithContext(ctx)
}

func (c *requestContext) Get(key any) any {
	return c.request.Context().Value(key)
}
