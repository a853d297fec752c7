package backend

import "time"

// Config holds the API location and request timeout.
type Config struct {
	BaseURL   string        `env:"BACKEND_URL" envDefault:"http://localhost:8000"`
	Timeout   time.Duration `env:"BACKEND_TIMEOUT" envDefault:"10s"`
	UserAgent string        `env:"BACKEND_USER_AGENT" envDefault:"authscreens"`
}
