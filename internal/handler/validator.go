package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"go-message-board/pkg/apierror"
)

var requestValidator = validator.New(validator.WithRequiredStructEnabled())

// validate turns validator failures into a single BAD_REQUEST whose details
// list every offending field.
func validate(v any) error {
	if err := requestValidator.Struct(v); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				msgs = append(msgs, fieldError(fe))
			}
			return apierror.BadRequest("validation failed", strings.Join(msgs, "; "))
		}
		return apierror.BadRequest("validation failed", err.Error())
	}
	return nil
}

func fieldError(fe validator.FieldError) string {
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
