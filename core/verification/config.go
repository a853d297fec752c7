package verification

import "time"

// Config holds the verification timing settings.
type Config struct {
	CodeTTL         time.Duration `env:"VERIFICATION_CODE_TTL" envDefault:"300s"`
	NavigationDelay time.Duration `env:"VERIFICATION_NAVIGATION_DELAY" envDefault:"1200ms"`
	MessageTTL      time.Duration `env:"VERIFICATION_MESSAGE_TTL" envDefault:"3000ms"`
	RequestTimeout  time.Duration `env:"VERIFICATION_REQUEST_TIMEOUT" envDefault:"10s"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		CodeTTL:         DefaultDuration,
		NavigationDelay: DefaultNavigationDelay,
		MessageTTL:      DefaultMessageTTL,
		RequestTimeout:  DefaultRequestTimeout,
	}
}

// Options converts the config into controller options.
func (c Config) Options() []Option {
	return []Option{
		WithDuration(c.CodeTTL),
		WithNavigationDelay(c.NavigationDelay),
		WithMessageTTL(c.MessageTTL),
		WithRequestTimeout(c.RequestTimeout),
	}
}
