package middleware

import (
	"net/http"
	"strconv"

	"github.com/dmitrymomot/authscreens/core/handler"
	"github.com/dmitrymomot/authscreens/core/response"
	"github.com/dmitrymomot/authscreens/pkg/ratelimiter"
)

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	Skip    func(ctx handler.Context) bool
	Limiter ratelimiter.RateLimiter
	// KeyPrefix separates buckets of limiters sharing one store, e.g. "login".
	KeyPrefix string
	// KeyExtractor defaults to the client IP.
	KeyExtractor func(ctx handler.Context) string
	// ErrorHandler defaults to 429 with a retry_after detail.
	ErrorHandler func(ctx handler.Context, result *ratelimiter.Result) handler.Response
	SetHeaders   bool
}

// RateLimit rejects requests once the key's bucket is empty. It panics without a limiter.
func RateLimit[C handler.Context](cfg RateLimitConfig) handler.Middleware[C] {
	if cfg.Limiter == nil {
		panic("ratelimit middleware: limiter is required")
	}
	if cfg.KeyExtractor == nil {
		cfg.KeyExtractor = ClientIPOrRemote
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(_ handler.Context, result *ratelimiter.Result) handler.Response {
			err := response.ErrTooManyRequests.WithMessage("Too many attempts. Please try again later.")
			if secs := int(result.RetryAfter().Seconds()); secs > 0 {
				err = err.WithDetails(map[string]any{"retry_after": secs})
			}
			return response.Error(err)
		}
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			key := cfg.KeyExtractor(ctx)
			if cfg.KeyPrefix != "" {
				key = cfg.KeyPrefix + ":" + key
			}

			result, err := cfg.Limiter.Allow(ctx, key)
			if err != nil {
				return response.Error(response.ErrServiceUnavailable.WithError(err))
			}

			var resp handler.Response
			if result.Allowed() {
				resp = next(ctx)
			} else {
				resp = cfg.ErrorHandler(ctx, result)
			}

			if !cfg.SetHeaders {
				return resp
			}
			return withRateLimitHeaders(resp, result)
		}
	}
}

func withRateLimitHeaders(resp handler.Response, result *ratelimiter.Result) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		h := w.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(max(0, result.Remaining)))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
		if secs := int(result.RetryAfter().Seconds()); !result.Allowed() && secs > 0 {
			h.Set("Retry-After", strconv.Itoa(secs))
		}
		return resp(w, r)
	}
}
