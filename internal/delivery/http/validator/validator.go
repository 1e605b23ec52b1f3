// Package validator adapts go-playground struct validation to the echo server.
package validator

import (
	"strings"
	"unicode"

	domainerrors "farmlink/internal/domain/errors"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// CustomValidator implements echo.Validator on top of go-playground/validator.
type CustomValidator struct {
	validate *validator.Validate
}

// New creates the validator used by the HTTP server.
func New() *CustomValidator {
	return &CustomValidator{validate: validator.New()}
}

// Validate checks the struct tags and converts failures into the
// application's validation error so the error handler can render a field map.
func (v *CustomValidator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.WithStack(err)
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fieldName(fe)] = fieldMessage(fe)
	}

	return domainerrors.NewValidationError(fields)
}

// fieldName lowercases the first rune of the struct field name so the
// response matches the JSON casing of the request payload.
func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return name
	}

	runes := []rune(name)
	runes[0] = unicode.ToLower(runes[0])

	return string(runes)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind().String() == "string" {
			return "must be at least " + fe.Param() + " characters long"
		}

		return "must contain at least " + fe.Param() + " items"
	case "max":
		if fe.Kind().String() == "string" {
			return "must be at most " + fe.Param() + " characters long"
		}

		return "must contain at most " + fe.Param() + " items"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "uuid":
		return "must be a valid UUID"
	default:
		return "is invalid"
	}
}
