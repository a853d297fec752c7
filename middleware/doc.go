// Package middleware holds the handler.Middleware implementations used by the
// auth screens: request IDs, client IP resolution, access logging, body size
// limits, security headers, rate limiting and sessions.
//
// Every middleware is generic over the handler.Context type and has a plain
// constructor plus a WithConfig variant. Values are stored on the request
// context and read back with the Get helpers:
//
//	r.Use(
//		middleware.RequestID[*router.Context](),
//		middleware.ClientIP[*router.Context](),
//		middleware.Logging[*router.Context](log),
//		middleware.SecurityHeaders[*router.Context](),
//		middleware.Session[*router.Context](transport),
//	)
//
//	r.With(middleware.RateLimit[*router.Context](middleware.RateLimitConfig{
//		Limiter:   loginLimiter,
//		KeyPrefix: "login",
//	})).Post("/login", loginHandler)
//
// Order matters: RequestID and ClientIP run first so Logging and RateLimit
// can read their values.
package middleware
