package middleware

import (
	"log/slog"

	"github.com/dmitrymomot/authscreens/core/handler"
	"github.com/dmitrymomot/authscreens/core/logger"
	"github.com/dmitrymomot/authscreens/core/response"
	"github.com/dmitrymomot/authscreens/core/session"
)

type sessionKey struct{}

// SessionTransport loads and persists sessions for a request.
type SessionTransport[Data any] interface {
	Load(handler.Context) (session.Session[Data], error)
	Store(handler.Context, session.Session[Data]) error
}

// SessionConfig configures the session middleware.
type SessionConfig[C handler.Context, Data any] struct {
	Skip      func(ctx C) bool
	Transport SessionTransport[Data]
	Logger    *slog.Logger
	// RequireAuth rejects sessions without a backend token.
	RequireAuth bool
	// RequireGuest rejects signed-in sessions.
	RequireGuest bool
	// ErrorHandler receives response.ErrUnauthorized or response.ErrForbidden
	// for the checks above, or a store error.
	ErrorHandler func(ctx C, err error) handler.Response
}

// Session loads the session before the handler and stores it afterwards.
func Session[C handler.Context, Data any](transport SessionTransport[Data]) handler.Middleware[C] {
	return SessionWithConfig(SessionConfig[C, Data]{Transport: transport})
}

// SessionWithConfig creates a session middleware with custom configuration.
func SessionWithConfig[C handler.Context, Data any](cfg SessionConfig[C, Data]) handler.Middleware[C] {
	if cfg.Transport == nil {
		panic("session middleware: transport is required")
	}
	if cfg.RequireAuth && cfg.RequireGuest {
		panic("session middleware: RequireAuth and RequireGuest cannot both be true")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(_ C, err error) handler.Response {
			return response.Error(err)
		}
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			sess, err := cfg.Transport.Load(ctx)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return response.Error(ctxErr)
				}
				cfg.Logger.ErrorContext(ctx, "failed to load session",
					logger.Component("session"),
					logger.Error(err),
				)
				return cfg.ErrorHandler(ctx, response.ErrServiceUnavailable.WithError(err))
			}

			if cfg.RequireAuth && !sess.IsAuthenticated() {
				return cfg.ErrorHandler(ctx, response.ErrUnauthorized)
			}
			if cfg.RequireGuest && sess.IsAuthenticated() {
				return cfg.ErrorHandler(ctx, response.ErrForbidden)
			}

			SetSession(ctx, sess)
			resp := next(ctx)

			current, ok := GetSession[Data](ctx)
			if !ok {
				return resp
			}
			if err := cfg.Transport.Store(ctx, current); err != nil {
				cfg.Logger.ErrorContext(ctx, "failed to store session",
					logger.Component("session"),
					logger.SessionID(current.ID.String()),
					logger.Error(err),
				)
				return cfg.ErrorHandler(ctx, err)
			}
			return resp
		}
	}
}

// GetSession returns the session loaded by the Session middleware.
func GetSession[Data any](ctx handler.Context) (session.Session[Data], bool) {
	if ctx == nil {
		return session.Session[Data]{}, false
	}
	sess, ok := ctx.Value(sessionKey{}).(session.Session[Data])
	return sess, ok
}

// MustGetSession is GetSession for routes that always run behind the middleware.
func MustGetSession[Data any](ctx handler.Context) session.Session[Data] {
	sess, ok := GetSession[Data](ctx)
	if !ok {
		panic("session not found in context")
	}
	return sess
}

// SetSession replaces the request's session; the middleware persists it after the handler.
func SetSession[Data any](ctx handler.Context, sess session.Session[Data]) {
	ctx.SetValue(sessionKey{}, sess)
}
