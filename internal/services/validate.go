package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateInput runs the struct tags of in and turns the first failure into a
// 400 with a readable message.
func validateInput(in interface{}) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return ErrBadRequest("Invalid payload")
	}
	fe := fieldErrs[0]
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return ErrBadRequest(fmt.Sprintf("%s is required", field))
	case "email":
		return ErrBadRequest("email is invalid")
	case "oneof":
		return ErrBadRequest(fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
	case "min":
		return ErrBadRequest(fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
	case "max":
		return ErrBadRequest(fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
	case "url", "uri":
		return ErrBadRequest(fmt.Sprintf("%s must be a URL", field))
	default:
		return ErrBadRequest(fmt.Sprintf("%s is invalid", field))
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
