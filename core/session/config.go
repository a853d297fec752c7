package session

import (
	"time"
)

// Config holds session manager configuration.
type Config struct {
	TTL           time.Duration `env:"SESSION_TTL" envDefault:"24h"`           // idle timeout
	TouchInterval time.Duration `env:"SESSION_TOUCH_INTERVAL" envDefault:"5m"` // 0 = touch on every access
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		TTL:           24 * time.Hour,
		TouchInterval: 5 * time.Minute,
	}
}

// Option is a functional option for configuring the session manager.
type Option func(*Config)

// WithTTL sets the session time-to-live.
func WithTTL(ttl time.Duration) Option {
	return func(c *Config) {
		if ttl > 0 {
			c.TTL = ttl
		}
	}
}

// WithTouchInterval sets the minimum time between session activity updates.
// Set to 0 to touch on every access.
func WithTouchInterval(interval time.Duration) Option {
	return func(c *Config) {
		if interval >= 0 {
			c.TouchInterval = interval
		}
	}
}
