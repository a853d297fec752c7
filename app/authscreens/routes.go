package authscreens

import (
	"errors"
	"maps"

	"github.com/dmitrymomot/authscreens/core/handler"
	"github.com/dmitrymomot/authscreens/core/health"
	"github.com/dmitrymomot/authscreens/core/response"
	"github.com/dmitrymomot/authscreens/core/router"
	"github.com/dmitrymomot/authscreens/middleware"
	"github.com/dmitrymomot/authscreens/pkg/ratelimiter"
)

func (a *App) routes(r router.Router[*Context]) {
	r.Use(
		middleware.RequestID[*Context](),
		middleware.Logging[*Context](a.log),
		middleware.SecurityHeadersWithConfig[*Context](a.securityHeaders()),
		middleware.ClientIP[*Context](),
		middleware.BodyLimit[*Context](),
	)

	r.Get("/health", health.Readiness[*Context](a.log, a.checks...))
	r.Get("/health/live", health.Liveness[*Context])

	r.Group(func(r router.Router[*Context]) {
		r.Use(middleware.SessionWithConfig(middleware.SessionConfig[*Context, SessionData]{
			Transport: a.transport,
			Logger:    a.log,
		}))

		r.Get("/", a.home)

		r.Get("/signup", a.showForm(signupScreen))
		r.Post("/signup", a.signup)
		r.Get("/register", a.showForm(registerScreen))
		r.Post("/register", a.register)
		r.Get("/signin", a.showForm(signinScreen))
		r.Get("/login", a.showForm(loginScreen))
		r.Get("/forgot-password", a.showForm(forgotPasswordScreen))
		r.Post("/forgot-password", a.forgotPassword)
		r.Get("/new-password", a.showNewPassword)
		r.Post("/new-password", a.newPassword)
		r.Post("/validate/{profile}", a.validate)

		r.With(a.rateLimit(a.limits.login, "login")).Group(func(r router.Router[*Context]) {
			r.Post("/login", a.login)
			r.Post("/signin", a.signin)
		})

		r.Get("/verification", a.showVerification(accountFlow))
		r.Get("/verify-code", a.showVerification(resetFlow))
		r.Get("/verification/{flow}/state", a.verificationState)
		r.With(a.rateLimit(a.limits.verify, "verify")).Group(func(r router.Router[*Context]) {
			r.Post("/verification", a.verify(accountFlow))
			r.Post("/verify-code", a.verify(resetFlow))
		})
		r.With(a.rateLimit(a.limits.resend, "resend")).Post("/verification/{flow}/resend", a.resend)

		r.Post("/logout", a.logout)
	})

	r.With(middleware.SessionWithConfig(middleware.SessionConfig[*Context, SessionData]{
		Transport:    a.transport,
		Logger:       a.log,
		RequireAuth:  true,
		ErrorHandler: a.requireLogin,
	})).Get("/dashboard", a.dashboard)
}

// requireLogin sends anonymous visitors of protected screens to the login page.
func (a *App) requireLogin(_ *Context, err error) handler.Response {
	if errors.Is(err, response.ErrUnauthorized) {
		return response.Redirect("/login")
	}
	return response.Error(err)
}

func (a *App) rateLimit(l ratelimiter.RateLimiter, prefix string) handler.Middleware[*Context] {
	return middleware.RateLimit[*Context](middleware.RateLimitConfig{
		Limiter:    l,
		KeyPrefix:  prefix,
		SetHeaders: true,
	})
}

// securityHeaders allows the htmx script origin on top of the page defaults.
func (a *App) securityHeaders() middleware.SecurityHeadersConfig {
	cfg := middleware.PageSecurity
	cfg.CustomHeaders = maps.Clone(cfg.CustomHeaders)
	cfg.IsDevelopment = a.cfg.IsDevelopment()
	if origin := scriptOrigin(a.cfg.HTMXSrc); origin != "" {
		cfg.ContentSecurityPolicy = "default-src 'self'; script-src 'self' 'unsafe-inline' " + origin +
			"; style-src 'self' 'unsafe-inline'; img-src 'self' data:; frame-ancestors 'none'; form-action 'self'; base-uri 'self'"
	}
	return cfg
}
