package form

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/authscreens/core/validator"
)

// Timing selects when field errors are computed.
type Timing string

const (
	OnBlurThenLive Timing = "on-blur-then-live"
	DebouncedLive  Timing = "debounced-live"
)

// Defaults applied to profiles that leave them unset.
const (
	DefaultDebounce  = 80 * time.Millisecond
	DefaultBannerTTL = 3000 * time.Millisecond
)

// PatternRule rejects values matching Pattern with Message.
type PatternRule struct {
	Pattern string `yaml:"pattern"`
	Message string `yaml:"message"`
}

// UsernameMessages holds the username policy messages. A check with an
// empty message is disabled.
type UsernameMessages struct {
	Required string `yaml:"required"`
	TooShort string `yaml:"too_short"`
	TooLong  string `yaml:"too_long"`
	Charset  string `yaml:"charset"`
}

// UsernamePolicy checks, in order: required, minimum length, maximum length,
// each forbidden start pattern, charset.
type UsernamePolicy struct {
	Field          string           `yaml:"field"`
	Min            int              `yaml:"min"`
	Max            int              `yaml:"max"`
	TrimForLength  bool             `yaml:"trim_for_length"`
	ForbiddenStart []PatternRule    `yaml:"forbidden_start"`
	Charset        string           `yaml:"charset"`
	Messages       UsernameMessages `yaml:"messages"`
}

// EmailMessages holds the email policy messages.
type EmailMessages struct {
	Required string `yaml:"required"`
	Invalid  string `yaml:"invalid"`
}

// EmailPolicy checks required, then the shape from validator.EmailPattern.
type EmailPolicy struct {
	Field    string        `yaml:"field"`
	Messages EmailMessages `yaml:"messages"`
}

// PasswordMessages holds the password policy messages.
type PasswordMessages struct {
	Required string `yaml:"required"`
	TooShort string `yaml:"too_short"`
	Upper    string `yaml:"upper"`
	Lower    string `yaml:"lower"`
	Digit    string `yaml:"digit"`
	Symbol   string `yaml:"symbol"`
}

// PasswordPolicy checks, in order: required, minimum length, uppercase,
// lowercase, digit, symbol. An empty Symbols set accepts any character that
// is not an ASCII letter or digit.
type PasswordPolicy struct {
	Field    string           `yaml:"field"`
	Min      int              `yaml:"min"`
	Symbols  string           `yaml:"symbols"`
	Messages PasswordMessages `yaml:"messages"`
}

// ConfirmPolicy requires the confirmation to equal the password once both
// are non-empty.
type ConfirmPolicy struct {
	Field   string `yaml:"field"`
	Against string `yaml:"against"`
	Message string `yaml:"message"`
}

// ErrorRoute sends backend messages containing any of Keywords to Field.
type ErrorRoute struct {
	Field    string   `yaml:"field"`
	Keywords []string `yaml:"keywords"`
}

// Profile configures one form variant.
type Profile struct {
	Name        string          `yaml:"name"`
	Username    *UsernamePolicy `yaml:"username,omitempty"`
	Email       *EmailPolicy    `yaml:"email,omitempty"`
	Password    *PasswordPolicy `yaml:"password,omitempty"`
	Confirm     *ConfirmPolicy  `yaml:"confirm,omitempty"`
	ErrorRoutes []ErrorRoute    `yaml:"error_routes"`
	Timing      Timing          `yaml:"timing"`
	Debounce    time.Duration   `yaml:"debounce"`
	BannerTTL   time.Duration   `yaml:"banner_ttl"`
}

// ErrInvalidProfile is returned for profiles that cannot be built.
var ErrInvalidProfile = errors.New("invalid form profile")

// Validator builds the validator for the profile's fields.
func (p Profile) Validator() *Validator {
	v := NewValidator()
	if p.Username != nil {
		v.Register(fieldOr(p.Username.Field, FieldUsername), p.Username.rules()...)
	}
	if p.Email != nil {
		v.Register(fieldOr(p.Email.Field, FieldEmail), p.Email.rules()...)
	}
	if p.Password != nil {
		v.Register(fieldOr(p.Password.Field, FieldPassword), p.Password.rules()...)
	}
	if p.Confirm != nil {
		v.Register(fieldOr(p.Confirm.Field, FieldConfirmPassword), p.Confirm.rules()...)
	}
	return v
}

// Check reports pattern and timing errors.
func (p Profile) Check() error {
	var errs []error
	if p.Username != nil {
		for _, pattern := range p.Username.patterns() {
			if _, err := regexp.Compile(pattern); err != nil {
				errs = append(errs, fmt.Errorf("%s: username pattern %q: %w", p.Name, pattern, err))
			}
		}
	}
	switch p.Timing {
	case "", OnBlurThenLive, DebouncedLive:
	default:
		errs = append(errs, fmt.Errorf("%s: unknown timing %q", p.Name, p.Timing))
	}
	if err := errors.Join(errs...); err != nil {
		return errors.Join(ErrInvalidProfile, err)
	}
	return nil
}

func (p Profile) withDefaults() Profile {
	if p.Timing == "" {
		p.Timing = OnBlurThenLive
	}
	if p.Debounce <= 0 {
		p.Debounce = DefaultDebounce
	}
	if p.BannerTTL <= 0 {
		p.BannerTTL = DefaultBannerTTL
	}
	return p
}

// LoadProfiles decodes a YAML document mapping profile names to profiles.
// Unset timing, debounce and banner TTL take their defaults.
func LoadProfiles(r io.Reader) (map[string]Profile, error) {
	var raw map[string]Profile
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Join(ErrInvalidProfile, err)
	}

	profiles := make(map[string]Profile, len(raw))
	for name, p := range raw {
		if p.Name == "" {
			p.Name = name
		}
		p = p.withDefaults()
		if err := p.Check(); err != nil {
			return nil, err
		}
		profiles[name] = p
	}
	return profiles, nil
}

func (u *UsernamePolicy) patterns() []string {
	out := make([]string, 0, len(u.ForbiddenStart)+1)
	for _, fs := range u.ForbiddenStart {
		out = append(out, fs.Pattern)
	}
	if u.Charset != "" {
		out = append(out, u.Charset)
	}
	return out
}

func (u *UsernamePolicy) measured(value string) string {
	if u.TrimForLength {
		return strings.TrimSpace(value)
	}
	return value
}

func (u *UsernamePolicy) rules() RuleSet {
	var rs RuleSet
	msg := u.Messages
	if msg.Required != "" {
		rs = append(rs, func(field, value string, _ Values) validator.Rule {
			return validator.Required(field, value).WithMessage(msg.Required)
		})
	}
	if u.Min > 0 && msg.TooShort != "" {
		rs = append(rs, func(field, value string, _ Values) validator.Rule {
			return validator.MinLength(field, u.measured(value), u.Min).WithMessage(msg.TooShort)
		})
	}
	if u.Max > 0 && msg.TooLong != "" {
		rs = append(rs, func(field, value string, _ Values) validator.Rule {
			return validator.MaxLength(field, u.measured(value), u.Max).WithMessage(msg.TooLong)
		})
	}
	for _, fs := range u.ForbiddenStart {
		rs = append(rs, func(field, value string, _ Values) validator.Rule {
			return validator.NotMatchesRegex(field, value, fs.Pattern, "forbidden start").WithMessage(fs.Message)
		})
	}
	if u.Charset != "" && msg.Charset != "" {
		rs = append(rs, func(field, value string, _ Values) validator.Rule {
			return validator.MatchesRegex(field, value, u.Charset, "allowed characters").WithMessage(msg.Charset)
		})
	}
	return rs
}

func (e *EmailPolicy) rules() RuleSet {
	var rs RuleSet
	msg := e.Messages
	if msg.Required != "" {
		rs = append(rs, func(field, value string, _ Values) validator.Rule {
			return validator.Required(field, value).WithMessage(msg.Required)
		})
	}
	if msg.Invalid != "" {
		rs = append(rs, func(field, value string, _ Values) validator.Rule {
			return validator.ValidEmail(field, value).WithMessage(msg.Invalid)
		})
	}
	return rs
}

func (p *PasswordPolicy) rules() RuleSet {
	var rs RuleSet
	msg := p.Messages
	add := func(text string, build func(field, value string) validator.Rule) {
		if text == "" {
			return
		}
		rs = append(rs, func(field, value string, _ Values) validator.Rule {
			return build(field, value).WithMessage(text)
		})
	}

	add(msg.Required, validator.NotEmpty)
	if p.Min > 0 {
		add(msg.TooShort, func(field, value string) validator.Rule {
			return validator.MinLength(field, value, p.Min)
		})
	}
	add(msg.Upper, validator.HasUpper)
	add(msg.Lower, validator.HasLower)
	add(msg.Digit, validator.HasDigit)
	add(msg.Symbol, func(field, value string) validator.Rule {
		return validator.HasSymbol(field, value, p.Symbols)
	})
	return rs
}

func (c *ConfirmPolicy) rules() RuleSet {
	if c.Message == "" {
		return nil
	}
	against := fieldOr(c.Against, FieldPassword)
	return RuleSet{func(field, value string, values Values) validator.Rule {
		password := values.Get(against)
		rule := validator.EqualTo(field, value, against, password).WithMessage(c.Message)
		if value == "" || password == "" {
			rule.Check = nil
		}
		return rule
	}}
}

// dependents lists fields whose rules read field.
func (p Profile) dependents(field string) []string {
	if p.Confirm != nil && fieldOr(p.Confirm.Against, FieldPassword) == field {
		return []string{fieldOr(p.Confirm.Field, FieldConfirmPassword)}
	}
	return nil
}

func fieldOr(field, fallback string) string {
	if field == "" {
		return fallback
	}
	return field
}
