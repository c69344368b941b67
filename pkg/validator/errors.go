package validator

import (
	"errors"
	"strings"
)

// ValidationError describes one failed rule on one field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is the error returned by ValidateStruct when input is invalid.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Message
	}
	return strings.Join(msgs, "; ")
}

// First returns the message of the first error, or "" when empty.
func (e ValidationErrors) First() string {
	if len(e) == 0 {
		return ""
	}
	return e[0].Message
}

// IsValidationError reports whether err is or wraps ValidationErrors.
func IsValidationError(err error) bool {
	var ve ValidationErrors
	return errors.As(err, &ve)
}

// ExtractValidationErrors unwraps ValidationErrors from err, or returns nil.
func ExtractValidationErrors(err error) ValidationErrors {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}
