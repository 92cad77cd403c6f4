package validation

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/kbukum/lazyseq/errors"
)

// Validator collects field errors from checks that struct tags cannot
// express, such as rules spanning several chain options.
type Validator struct {
	errors []FieldError
}

// FieldError is one failing configuration key.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Message
}

// New returns an empty Validator.
func New() *Validator {
	return &Validator{}
}

// AddError records message against field.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any check failed.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns the recorded field errors in check order.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Validate returns an INVALID_CONFIG error listing every field error, or nil.
func (v *Validator) Validate() error {
	if !v.HasErrors() {
		return nil
	}
	return fieldsError(v.errors)
}

// NonNegative checks a count option such as chain.max.
func (v *Validator) NonNegative(field string, value int) *Validator {
	if value < 0 {
		v.AddError(field, fmt.Sprintf("must not be negative, got %d", value))
	}
	return v
}

// SingleLine checks a substring matched against input lines. A line break in
// it could never match.
func (v *Validator) SingleLine(field, value string) *Validator {
	if strings.ContainsAny(value, "\r\n") {
		v.AddError(field, "must not contain a line break")
	}
	return v
}

// AtMostOne checks that no more than one of the named options is set. names
// and set are matched by position.
func (v *Validator) AtMostOne(field string, names []string, set ...bool) *Validator {
	chosen := lo.Filter(names, func(_ string, i int) bool { return i < len(set) && set[i] })
	if len(chosen) > 1 {
		v.AddError(field, fmt.Sprintf("only one of %s may be set, got %s",
			strings.Join(names, ", "), strings.Join(chosen, ", ")))
	}
	return v
}

// OptionalUUID checks that a non-empty string is a valid UUID.
func (v *Validator) OptionalUUID(field, value string) *Validator {
	if value == "" {
		return v
	}
	if _, err := uuid.Parse(value); err != nil {
		v.AddError(field, "must be a valid UUID")
	}
	return v
}

func fieldsError(fields []FieldError) error {
	messages := lo.Map(fields, func(e FieldError, _ int) string { return e.String() })
	return errors.InvalidConfig(strings.Join(messages, "; "), fields)
}
