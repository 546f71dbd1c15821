package application

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	domainerrors "studio/contexts/creative-challenges/contest-engine/domain/errors"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if name := field.Tag.Get("field"); name != "" {
			return name
		}
		return field.Name
	})
	_ = v.RegisterValidation("absurl", validateAbsoluteURL)
	return v
}

// validateAbsoluteURL accepts URLs carrying both a scheme and a host.
func validateAbsoluteURL(fl validator.FieldLevel) bool {
	return IsAbsoluteURL(fl.Field().String())
}

func IsAbsoluteURL(raw string) bool {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return parsed.Scheme != "" && parsed.Host != ""
}

// ValidateStruct checks `validate` tags and reports the first failing field as
// a validation error.
func ValidateStruct(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return fmt.Errorf("%w: %v", domainerrors.ErrValidation, err)
	}
	return fmt.Errorf("%w: %s", domainerrors.ErrValidation, describe(fieldErrors[0]))
}

// ValidateMediaURL reports ErrInvalidMedia for anything that is not an absolute URL.
func ValidateMediaURL(raw string) error {
	if err := validate.Var(strings.TrimSpace(raw), "required,absurl"); err != nil {
		return domainerrors.ErrInvalidMedia
	}
	return nil
}

func describe(fieldError validator.FieldError) string {
	field := fieldError.Field()
	switch fieldError.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fieldError.Param())
	case "absurl":
		return field + " must be an absolute url"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fieldError.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fieldError.Tag())
	}
}
