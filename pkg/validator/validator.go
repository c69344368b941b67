package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	playground "github.com/go-playground/validator/v10"
)

var (
	instance *playground.Validate
	once     sync.Once
)

func validate() *playground.Validate {
	once.Do(func() {
		instance = playground.New(playground.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(jsonFieldName)
	})
	return instance
}

// jsonFieldName reports fields by their json name so error paths match the
// request body.
func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	}
	return name
}

// ValidateStruct checks v against its `validate` tags.
// It returns ValidationErrors for invalid input and a plain error when v
// itself cannot be validated (nil or not a struct).
func ValidateStruct(v any) error {
	err := validate().Struct(v)
	if err == nil {
		return nil
	}

	var invalid *playground.InvalidValidationError
	if errors.As(err, &invalid) {
		return fmt.Errorf("validator: %w", err)
	}

	var fieldErrs playground.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validator: %w", err)
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fieldPath(fe.Namespace())
		out = append(out, ValidationError{
			Field:   field,
			Message: message(field, fe),
		})
	}
	return out
}

// fieldPath drops the root struct name: "SendRequest.messages[0].to" -> "messages[0].to".
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func message(field string, fe playground.FieldError) string {
	isList := fe.Kind() == reflect.Slice || fe.Kind() == reflect.Array || fe.Kind() == reflect.Map

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", field)
	case "required_without":
		return fmt.Sprintf(`"value" must contain at least one of [%s, %s]`, lastSegment(field), strings.ToLower(fe.Param()))
	case "email":
		return fmt.Sprintf("%q must be a valid email", field)
	case "min":
		if isList {
			return fmt.Sprintf("%q must contain at least %s items", field, fe.Param())
		}
		return fmt.Sprintf("%q length must be at least %s characters long", field, fe.Param())
	case "max":
		if isList {
			return fmt.Sprintf("%q must contain less than or equal to %s items", field, fe.Param())
		}
		return fmt.Sprintf("%q length must be less than or equal to %s characters long", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%q must be one of [%s]", field, strings.Join(strings.Fields(fe.Param()), ", "))
	default:
		return fmt.Sprintf("%q failed on the %q rule", field, fe.Tag())
	}
}

func lastSegment(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i+1:]
	}
	return path
}
