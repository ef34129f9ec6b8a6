// Package validator adapts go-playground/validator to echo.Validator.
package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// CustomValidator validates request DTOs tagged with `validate`.
type CustomValidator struct {
	validate *validator.Validate
}

// New creates a validator reporting fields by their JSON names.
func New() *CustomValidator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return &CustomValidator{validate: validate}
}

// Validate implements echo.Validator.
func (cv *CustomValidator) Validate(i any) error {
	return cv.validate.Struct(i)
}

// FieldErrors maps each failing field to a readable message. Errors that do
// not come from validation are reported under "request".
func FieldErrors(err error) map[string]string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return map[string]string{"request": err.Error()}
	}

	fields := make(map[string]string, len(validationErrs))
	for _, fieldErr := range validationErrs {
		fields[fieldPath(fieldErr)] = message(fieldErr)
	}

	return fields
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fieldErr validator.FieldError) string {
	_, path, found := strings.Cut(fieldErr.Namespace(), ".")
	if !found {
		return fieldErr.Field()
	}

	return path
}

func message(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "min":
		return fmt.Sprintf("must be at least %s", fieldErr.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fieldErr.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fieldErr.Param())
	default:
		return fmt.Sprintf("failed %q validation", fieldErr.Tag())
	}
}
