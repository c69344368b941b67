package internal

import (
	"errors"
	"net/http"
)

// ErrMalformedJSON is wrapped by BindJSON when the request body cannot be decoded.
var ErrMalformedJSON = errors.New("malformed JSON body")

// HTTPError represents an HTTP error with all data needed for rendering.
// The app's ErrorHandler turns it into the response envelope.
type HTTPError struct {
	// Err is the underlying error (for logging, not exposed to users).
	Err error

	// Details is optional structured data rendered next to the message.
	Details any

	// Message is the user-facing error message.
	Message string

	// Title is the stable error label (defaults derived from Code).
	Title string

	// Code is the HTTP status code (e.g., 404, 500).
	Code int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

// Label returns Title, falling back to the status text.
func (e *HTTPError) Label() string {
	if e.Title != "" {
		return e.Title
	}
	return http.StatusText(e.Code)
}

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

// NewHTTPError creates a new HTTPError with the given status code and message.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	e := &HTTPError{
		Code:    code,
		Message: message,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func WithTitle(title string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Title = title
	}
}

func WithDetails(details any) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Details = details
	}
}

func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Err = err
	}
}

// Convenience constructors for common HTTP errors.

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, opts...)
}

func ErrMethodNotAllowed(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusMethodNotAllowed, message, opts...)
}

func ErrPayloadTooLarge(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusRequestEntityTooLarge, message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, message, opts...)
}

// IsHTTPError reports whether err or any error it wraps is an *HTTPError.
func IsHTTPError(err error) bool {
	return AsHTTPError(err) != nil
}

// AsHTTPError extracts the HTTPError from an error chain if present.
// Returns nil if there is none.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}
