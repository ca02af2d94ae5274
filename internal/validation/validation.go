// Package validation collects field-level violations into a single error.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrValidationFailed = errors.New("validation_failed")

// FieldError is one violation, keyed by the JSON field name.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Errors is every violation found for one request. A nil or empty Errors is not an error.
type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return ErrValidationFailed.Error()
	}
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Code)
	}
	return fmt.Sprintf("%s: %s", ErrValidationFailed.Error(), strings.Join(parts, ", "))
}

func (e Errors) Is(target error) bool {
	return target == ErrValidationFailed
}

func (e *Errors) Add(field, code, message string) {
	*e = append(*e, FieldError{Field: field, Code: code, Message: message})
}

// Has reports whether field already has a violation.
func (e Errors) Has(field string) bool {
	for _, fe := range e {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Err returns nil when nothing was collected.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// As extracts Errors from err.
func As(err error) (Errors, bool) {
	var errs Errors
	if errors.As(err, &errs) && len(errs) > 0 {
		return errs, true
	}
	return nil, false
}

// Messages overrides the default message per "field" or "field.tag".
type Messages map[string]string

// Validator wraps validator/v10 with the storefront tags registered.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("us_state", func(fl validator.FieldLevel) bool {
		return IsUSState(fl.Field().String())
	})
	_ = v.RegisterValidation("digits", func(fl validator.FieldLevel) bool {
		return IsDigits(fl.Field().String())
	})
	return &Validator{v: v}
}

// Struct validates s and returns every violation. It never stops at the first failure.
func (val *Validator) Struct(s any, msgs Messages) Errors {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Errors{{Field: "", Code: "invalid", Message: err.Error()}}
	}

	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if out.Has(field) {
			continue
		}
		out.Add(field, codeFor(fe.Tag()), messageFor(fe, msgs))
	}
	return out
}

func codeFor(tag string) string {
	switch tag {
	case "required":
		return "required"
	case "max":
		return "too_long"
	case "len", "digits", "numeric", "url":
		return "invalid_format"
	case "us_state":
		return "invalid_state"
	case "min", "gte", "lte", "gt", "lt":
		return "out_of_range"
	default:
		return "invalid"
	}
}

func messageFor(fe validator.FieldError, msgs Messages) string {
	if msg, ok := msgs[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	if msg, ok := msgs[fe.Field()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be %s or fewer characters.", fe.Field(), fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters.", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid.", fe.Field())
	}
}

// IsDigits reports whether s is non-empty and made of ASCII digits only.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
