package serializer

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field error codes.
const (
	CodeRequired      = "required"
	CodeNull          = "null"
	CodeBlank         = "blank"
	CodeInvalid       = "invalid"
	CodeMaxLength     = "max_length"
	CodeMaxValue      = "max_value"
	CodeMinValue      = "min_value"
	CodeInvalidChoice = "invalid_choice"
	CodeIncorrectType = "incorrect_type"
	CodeUnique        = "unique"
	CodeDoesNotExist  = "does_not_exist"
)

// FieldError describes one rejected inbound value.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError collects every field error found in an inbound mapping.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields groups the messages by field name.
func (e *ValidationError) Fields() map[string][]string {
	out := make(map[string][]string, len(e.Errors))
	for _, fe := range e.Errors {
		out[fe.Field] = append(out[fe.Field], fe.Message)
	}
	return out
}

// Has reports whether field already carries an error.
func (e *ValidationError) Has(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Code returns the code of the first error on field.
func (e *ValidationError) Code(field string) string {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return fe.Code
		}
	}
	return ""
}

func (e *ValidationError) add(field, code, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Code: code, Message: message})
}

// addConstraints translates validator failures, skipping fields that
// already failed during coercion. A non-empty field overrides the name
// reported by the validator, which is blank for single value checks.
func (e *ValidationError) addConstraints(err error, field string) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return
	}
	for _, fe := range verrs {
		name := fe.Field()
		if field != "" {
			name = field
		}
		if e.Has(name) {
			continue
		}
		code, msg := describeConstraint(fe)
		e.add(name, code, msg)
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// IsReferenceError reports whether err rejects a reference to a missing record.
func IsReferenceError(err error) bool {
	var verr *ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	for _, fe := range verr.Errors {
		if fe.Code == CodeDoesNotExist {
			return true
		}
	}
	return false
}

func describeConstraint(fe validator.FieldError) (string, string) {
	switch fe.Tag() {
	case "required":
		if fe.Kind() == reflect.String {
			return CodeBlank, "This field may not be blank."
		}
		return CodeRequired, "This field is required."
	case "max":
		return CodeMaxLength, fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "email":
		return CodeInvalid, "Enter a valid email address."
	case "username":
		return CodeInvalid, "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	default:
		return CodeInvalid, "Invalid value."
	}
}

// issue is returned by field setters and turned into a FieldError by populate.
type issue struct {
	code    string
	message string
}

func (i *issue) Error() string { return i.message }

var (
	errNull = &issue{code: CodeNull, message: "This field may not be null."}
)

// Required returns the error for a mandatory field missing from input that
// is not decoded through a field table.
func Required(field string) error {
	errs := &ValidationError{}
	errs.add(field, CodeRequired, "This field is required.")
	return errs
}
