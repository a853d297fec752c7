package sessiontransport

import (
	"github.com/dmitrymomot/authscreens/core/cookie"
	"github.com/dmitrymomot/authscreens/core/session"
)

// CookieConfig provides environment-based configuration for the cookie transport.
type CookieConfig struct {
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"__session"`
}

// DefaultCookieConfig returns a CookieConfig with defaults.
func DefaultCookieConfig() CookieConfig {
	return CookieConfig{CookieName: "__session"}
}

// NewCookieFromConfig creates a cookie transport from configuration.
func NewCookieFromConfig[Data any](cfg CookieConfig, mgr *session.Manager[Data], cookieMgr *cookie.Manager) *Cookie[Data] {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieConfig().CookieName
	}
	return NewCookie(mgr, cookieMgr, cfg.CookieName)
}
