package validator

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"
)

// EmailPattern is the single email shape accepted by the forms: a local part
// without spaces or '@', an '@', and a dotted domain whose last label has at
// least two characters.
const EmailPattern = `^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`

var (
	regexCacheMu sync.RWMutex
	regexCache   = map[string]*regexp.Regexp{}
)

// compile caches compiled patterns; rule sets are rebuilt on every keystroke.
func compile(pattern string) (*regexp.Regexp, error) {
	regexCacheMu.RLock()
	re, ok := regexCache[pattern]
	regexCacheMu.RUnlock()
	if ok {
		return re, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	regexCacheMu.Lock()
	regexCache[pattern] = re
	regexCacheMu.Unlock()
	return re, nil
}

// Required checks that the value is not blank after trimming spaces.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return strings.TrimSpace(value) != ""
		},
		Error: ValidationError{
			Field:          field,
			Message:        "field is required",
			TranslationKey: "validation.required",
			TranslationValues: map[string]any{
				"field": field,
			},
		},
	}
}

// NotEmpty checks that the raw value is not empty. Whitespace counts as content.
func NotEmpty(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return value != ""
		},
		Error: ValidationError{
			Field:          field,
			Message:        "field is required",
			TranslationKey: "validation.required",
			TranslationValues: map[string]any{
				"field": field,
			},
		},
	}
}

// MinLength checks that the value has at least min characters.
func MinLength(field, value string, min int) Rule {
	return Rule{
		Check: func() bool {
			return utf8.RuneCountInString(value) >= min
		},
		Error: ValidationError{
			Field:          field,
			Message:        fmt.Sprintf("must be at least %d characters long", min),
			TranslationKey: "validation.min_length",
			TranslationValues: map[string]any{
				"field": field,
				"min":   min,
			},
		},
	}
}

// MaxLength checks that the value has at most max characters.
func MaxLength(field, value string, max int) Rule {
	return Rule{
		Check: func() bool {
			return utf8.RuneCountInString(value) <= max
		},
		Error: ValidationError{
			Field:          field,
			Message:        fmt.Sprintf("must be at most %d characters long", max),
			TranslationKey: "validation.max_length",
			TranslationValues: map[string]any{
				"field": field,
				"max":   max,
			},
		},
	}
}

// MatchesRegex checks that the value matches pattern.
// An invalid pattern always fails so misconfiguration is visible.
func MatchesRegex(field, value, pattern, description string) Rule {
	re, err := compile(pattern)
	return Rule{
		Check: func() bool {
			return err == nil && re.MatchString(value)
		},
		Error: ValidationError{
			Field:          field,
			Message:        fmt.Sprintf("must match %s", description),
			TranslationKey: "validation.regex",
			TranslationValues: map[string]any{
				"field":       field,
				"description": description,
			},
		},
	}
}

// NotMatchesRegex checks that the value does not match pattern.
func NotMatchesRegex(field, value, pattern, description string) Rule {
	re, err := compile(pattern)
	return Rule{
		Check: func() bool {
			return err == nil && !re.MatchString(value)
		},
		Error: ValidationError{
			Field:          field,
			Message:        fmt.Sprintf("must not match %s", description),
			TranslationKey: "validation.not_regex",
			TranslationValues: map[string]any{
				"field":       field,
				"description": description,
			},
		},
	}
}

// ValidEmail checks the value against EmailPattern.
func ValidEmail(field, value string) Rule {
	return MatchesRegex(field, value, EmailPattern, "email").WithMessage("must be a valid email address")
}

// HasUpper checks for at least one ASCII uppercase letter.
func HasUpper(field, value string) Rule {
	return containsRune(field, value, isUpper, "must contain at least one uppercase letter", "validation.has_upper")
}

// HasLower checks for at least one ASCII lowercase letter.
func HasLower(field, value string) Rule {
	return containsRune(field, value, isLower, "must contain at least one lowercase letter", "validation.has_lower")
}

// HasDigit checks for at least one ASCII digit.
func HasDigit(field, value string) Rule {
	return containsRune(field, value, isDigit, "must contain at least one digit", "validation.has_digit")
}

// HasSymbol checks for at least one character from set.
// With an empty set any character that is not an ASCII letter or digit counts.
func HasSymbol(field, value, set string) Rule {
	match := func(r rune) bool { return !isUpper(r) && !isLower(r) && !isDigit(r) }
	msg := "must contain at least one symbol"
	if set != "" {
		match = func(r rune) bool { return strings.ContainsRune(set, r) }
		msg = fmt.Sprintf("must contain at least one special character (%s)", set)
	}
	rule := containsRune(field, value, match, msg, "validation.has_symbol")
	rule.Error.TranslationValues["set"] = set
	return rule
}

// EqualTo checks that value equals other.
func EqualTo(field, value, otherField, other string) Rule {
	return Rule{
		Check: func() bool {
			return value == other
		},
		Error: ValidationError{
			Field:          field,
			Message:        fmt.Sprintf("must match %s", otherField),
			TranslationKey: "validation.equal_to",
			TranslationValues: map[string]any{
				"field": field,
				"other": otherField,
			},
		},
	}
}

func containsRune(field, value string, match func(rune) bool, msg, key string) Rule {
	return Rule{
		Check: func() bool {
			return strings.IndexFunc(value, match) >= 0
		},
		Error: ValidationError{
			Field:          field,
			Message:        msg,
			TranslationKey: key,
			TranslationValues: map[string]any{
				"field": field,
			},
		},
	}
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }
