package validator

import (
	"errors"
	"strings"
)

// Rule pairs a deferred check with the error reported when the check fails.
type Rule struct {
	Check func() bool
	Error ValidationError
}

// WithMessage returns a copy of the rule reporting msg instead of the default message.
// An empty msg keeps the default.
func (r Rule) WithMessage(msg string) Rule {
	if msg != "" {
		r.Error.Message = msg
	}
	return r
}

// passes treats a rule without a check as satisfied.
func (r Rule) passes() bool {
	return r.Check == nil || r.Check()
}

// ValidationError describes a single failed rule for a field.
type ValidationError struct {
	Field             string
	Message           string
	TranslationKey    string
	TranslationValues map[string]any
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// ValidationErrors collects failed rules in evaluation order.
type ValidationErrors []ValidationError

// Add appends a validation error.
func (e *ValidationErrors) Add(err ValidationError) {
	*e = append(*e, err)
}

// IsEmpty reports whether no rule failed.
func (e ValidationErrors) IsEmpty() bool {
	return len(e) == 0
}

// Has reports whether at least one error belongs to field.
func (e ValidationErrors) Has(field string) bool {
	for _, err := range e {
		if err.Field == field {
			return true
		}
	}
	return false
}

// Get returns the first error recorded for field.
func (e ValidationErrors) Get(field string) (ValidationError, bool) {
	for _, err := range e {
		if err.Field == field {
			return err, true
		}
	}
	return ValidationError{}, false
}

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// ExtractValidationErrors unwraps ValidationErrors from err, or returns nil.
func ExtractValidationErrors(err error) ValidationErrors {
	var errs ValidationErrors
	if errors.As(err, &errs) {
		return errs
	}
	var single ValidationError
	if errors.As(err, &single) {
		return ValidationErrors{single}
	}
	return nil
}

// IsValidationError reports whether err carries validation failures.
func IsValidationError(err error) bool {
	return ExtractValidationErrors(err) != nil
}

// Apply evaluates every rule and returns all failures, or nil.
func Apply(rules ...Rule) error {
	var errs ValidationErrors
	for _, rule := range rules {
		if !rule.passes() {
			errs.Add(rule.Error)
		}
	}
	if errs.IsEmpty() {
		return nil
	}
	return errs
}

// First evaluates rules in order and stops at the first failure.
// Rules after the failing one are never checked.
func First(rules ...Rule) (ValidationError, bool) {
	for _, rule := range rules {
		if !rule.passes() {
			return rule.Error, true
		}
	}
	return ValidationError{}, false
}
