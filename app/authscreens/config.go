package authscreens

import (
	"time"

	"github.com/dmitrymomot/authscreens/core/cache"
	"github.com/dmitrymomot/authscreens/core/cookie"
	"github.com/dmitrymomot/authscreens/core/logger"
	"github.com/dmitrymomot/authscreens/core/server"
	"github.com/dmitrymomot/authscreens/core/session"
	"github.com/dmitrymomot/authscreens/core/sessiontransport"
	"github.com/dmitrymomot/authscreens/core/verification"
	"github.com/dmitrymomot/authscreens/integration/backend"
	"github.com/dmitrymomot/authscreens/integration/database/redis"
	"github.com/dmitrymomot/authscreens/pkg/ratelimiter"
)

// Session store kinds.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config is the application configuration, loaded with config.Load.
type Config struct {
	AppName string `env:"APP_NAME" envDefault:"Auth Screens"`
	Env     string `env:"APP_ENV" envDefault:"development"`

	// SessionStore selects where sessions and rate limit buckets live.
	SessionStore string `env:"SESSION_STORE" envDefault:"memory"`
	// ProfilesFile is a YAML document overriding the built-in form profiles.
	ProfilesFile string `env:"FORM_PROFILES_FILE"`
	HTMXSrc      string `env:"HTMX_SRC" envDefault:"https://unpkg.com/htmx.org@2.0.4"`

	VerificationIdle time.Duration `env:"VERIFICATION_IDLE_TIMEOUT" envDefault:"15m"`
	CleanupInterval  time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"10m"`

	Navigation   NavigationConfig
	Limits       LimitsConfig
	Logger       logger.Config
	Server       server.Config
	Cookie       cookie.Config
	Session      session.Config
	Transport    sessiontransport.CookieConfig
	Backend      backend.Config
	Verification verification.Config
	Redis        redis.Config
	UserCache    cache.Config `envPrefix:"USER_"`
}

// NavigationConfig holds the delays before the browser moves on after a
// successful step, so the banner stays readable.
type NavigationConfig struct {
	Registered      time.Duration `env:"NAV_REGISTERED_DELAY" envDefault:"3000ms"`
	NotVerified     time.Duration `env:"NAV_NOT_VERIFIED_DELAY" envDefault:"2000ms"`
	LoggedIn        time.Duration `env:"NAV_LOGGED_IN_DELAY" envDefault:"1500ms"`
	AccountVerified time.Duration `env:"NAV_ACCOUNT_VERIFIED_DELAY" envDefault:"3000ms"`
}

// LimitsConfig is the number of attempts per client IP and minute.
type LimitsConfig struct {
	Login  int `env:"RATE_LIMIT_LOGIN" envDefault:"10"`
	Verify int `env:"RATE_LIMIT_VERIFY" envDefault:"10"`
	Resend int `env:"RATE_LIMIT_RESEND" envDefault:"3"`
}

// perMinute is a bucket of n attempts refilled evenly over a minute.
func perMinute(n int) ratelimiter.Config {
	return ratelimiter.Config{
		Capacity:       n,
		RefillRate:     1,
		RefillInterval: time.Minute / time.Duration(max(n, 1)),
	}
}

// IsDevelopment reports whether the app runs in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// DefaultConfig mirrors the envDefault tags. Tests start from it.
func DefaultConfig() Config {
	return Config{
		AppName:          "Auth Screens",
		Env:              "development",
		SessionStore:     StoreMemory,
		HTMXSrc:          "https://unpkg.com/htmx.org@2.0.4",
		VerificationIdle: verification.DefaultIdleTimeout,
		CleanupInterval:  10 * time.Minute,
		Navigation: NavigationConfig{
			Registered:      3000 * time.Millisecond,
			NotVerified:     2000 * time.Millisecond,
			LoggedIn:        1500 * time.Millisecond,
			AccountVerified: 3000 * time.Millisecond,
		},
		Limits:       LimitsConfig{Login: 10, Verify: 10, Resend: 3},
		Logger:       logger.Config{Level: "info", Format: "text", Service: "authscreens"},
		Server:       server.DefaultConfig(),
		Cookie:       cookie.DefaultConfig(),
		Session:      session.DefaultConfig(),
		Transport:    sessiontransport.DefaultCookieConfig(),
		Backend:      backend.Config{BaseURL: "http://localhost:8000", Timeout: 10 * time.Second, UserAgent: "authscreens"},
		Verification: verification.DefaultConfig(),
		UserCache:    cache.Config{MaxItems: 10000, TTL: 30 * time.Second},
	}
}
