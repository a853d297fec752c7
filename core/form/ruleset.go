package form

import (
	"slices"

	"github.com/dmitrymomot/authscreens/core/validator"
)

// RuleFunc builds a rule for the current value of field.
// values holds every field of the form, for rules that compare siblings.
type RuleFunc func(field, value string, values Values) validator.Rule

// RuleSet is an ordered list of rules. Only the first failure is reported.
type RuleSet []RuleFunc

// Validator validates fields against their rule sets.
// It is immutable after construction and safe for concurrent use.
type Validator struct {
	fields []string
	rules  map[string]RuleSet
}

// NewValidator creates an empty validator.
func NewValidator() *Validator {
	return &Validator{rules: make(map[string]RuleSet)}
}

// Register appends rules to field. Fields are validated in registration order.
func (v *Validator) Register(field string, rules ...RuleFunc) *Validator {
	if _, ok := v.rules[field]; !ok {
		v.fields = append(v.fields, field)
	}
	v.rules[field] = append(v.rules[field], rules...)
	return v
}

// Fields returns registered field names in registration order.
func (v *Validator) Fields() []string {
	return slices.Clone(v.fields)
}

// Validate returns the message of the first failing rule for field, or ""
// when every rule passes. Unknown fields are always valid.
func (v *Validator) Validate(field, value string, values Values) string {
	verr, failed := v.Check(field, value, values)
	if !failed {
		return ""
	}
	return verr.Message
}

// Check is Validate returning the full validation error, for callers that
// translate messages.
func (v *Validator) Check(field, value string, values Values) (validator.ValidationError, bool) {
	for _, build := range v.rules[field] {
		if verr, failed := validator.First(build(field, value, values)); failed {
			return verr, true
		}
	}
	return validator.ValidationError{}, false
}

// ValidateAll validates the given fields, or every registered field when none
// are given, and returns only the failing ones.
func (v *Validator) ValidateAll(values Values, fields ...string) Errors {
	if len(fields) == 0 {
		fields = v.fields
	}
	errs := make(Errors)
	for _, field := range fields {
		if msg := v.Validate(field, values.Get(field), values); msg != "" {
			errs[field] = msg
		}
	}
	return errs
}
