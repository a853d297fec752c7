package middleware

import (
	"maps"
	"net/http"

	"github.com/dmitrymomot/authscreens/core/handler"
)

// SecurityHeadersConfig lists the headers set on every response. Empty values are skipped.
type SecurityHeadersConfig struct {
	Skip                    func(ctx handler.Context) bool
	ContentTypeOptions      string
	FrameOptions            string
	StrictTransportSecurity string
	ContentSecurityPolicy   string
	ReferrerPolicy          string
	PermissionsPolicy       string
	CrossOriginOpenerPolicy string
	CustomHeaders           map[string]string
	// IsDevelopment drops HSTS so plain-http localhost keeps working.
	IsDevelopment bool
}

// PageSecurity suits server-rendered pages that load htmx from the same origin.
var PageSecurity = SecurityHeadersConfig{
	ContentTypeOptions:      "nosniff",
	FrameOptions:            "DENY",
	StrictTransportSecurity: "max-age=31536000; includeSubDomains",
	ContentSecurityPolicy:   "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; frame-ancestors 'none'; form-action 'self'; base-uri 'self'",
	ReferrerPolicy:          "same-origin",
	PermissionsPolicy:       "camera=(), geolocation=(), microphone=(), payment=()",
	CrossOriginOpenerPolicy: "same-origin",
}

// SecurityHeaders applies PageSecurity.
func SecurityHeaders[C handler.Context]() handler.Middleware[C] {
	return SecurityHeadersWithConfig[C](PageSecurity)
}

// SecurityHeadersWithConfig applies a custom header set.
func SecurityHeadersWithConfig[C handler.Context](cfg SecurityHeadersConfig) handler.Middleware[C] {
	if cfg.IsDevelopment {
		cfg.StrictTransportSecurity = ""
	}

	headers := map[string]string{
		"X-Content-Type-Options":     cfg.ContentTypeOptions,
		"X-Frame-Options":            cfg.FrameOptions,
		"Strict-Transport-Security":  cfg.StrictTransportSecurity,
		"Content-Security-Policy":    cfg.ContentSecurityPolicy,
		"Referrer-Policy":            cfg.ReferrerPolicy,
		"Permissions-Policy":         cfg.PermissionsPolicy,
		"Cross-Origin-Opener-Policy": cfg.CrossOriginOpenerPolicy,
	}
	maps.DeleteFunc(headers, func(_, v string) bool { return v == "" })
	maps.Copy(headers, cfg.CustomHeaders)

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			resp := next(ctx)
			return func(w http.ResponseWriter, r *http.Request) error {
				for key, value := range headers {
					w.Header().Set(key, value)
				}
				return resp(w, r)
			}
		}
	}
}
