package middleware

import (
	"net/http"

	"github.com/dmitrymomot/authscreens/core/handler"
	"github.com/dmitrymomot/authscreens/core/response"
)

// DefaultBodyLimit fits every auth form with room to spare.
const DefaultBodyLimit int64 = 64 << 10

// BodyLimitConfig configures the request body limit middleware.
type BodyLimitConfig struct {
	Skip    func(ctx handler.Context) bool
	MaxSize int64
}

// BodyLimit caps request bodies at DefaultBodyLimit.
func BodyLimit[C handler.Context]() handler.Middleware[C] {
	return BodyLimitWithConfig[C](BodyLimitConfig{})
}

// BodyLimitWithConfig rejects declared oversize bodies with 413 and wraps the
// body in http.MaxBytesReader so form parsing fails past the limit.
func BodyLimitWithConfig[C handler.Context](cfg BodyLimitConfig) handler.Middleware[C] {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultBodyLimit
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			req := ctx.Request()
			if req.ContentLength > cfg.MaxSize {
				return response.Error(response.ErrRequestTooLarge.WithDetails(map[string]any{"limit": cfg.MaxSize}))
			}
			if req.Body != nil && req.Body != http.NoBody {
				req.Body = http.MaxBytesReader(ctx.ResponseWriter(), req.Body, cfg.MaxSize)
			}
			return next(ctx)
		}
	}
}
