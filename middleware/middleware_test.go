package middleware_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authscreens/core/handler"
	"github.com/dmitrymomot/authscreens/core/response"
	"github.com/dmitrymomot/authscreens/core/router"
	"github.com/dmitrymomot/authscreens/middleware"
	"github.com/dmitrymomot/authscreens/pkg/ratelimiter"
)

type ctx = *router.Context

// serve runs h behind mw through a real router so error handling and
// response execution match production.
func serve(t *testing.T, r *http.Request, h handler.HandlerFunc[ctx], mw ...handler.Middleware[ctx]) *httptest.ResponseRecorder {
	t.Helper()
	rt := router.New[ctx](router.WithMiddleware(mw...))
	rt.Method(r.URL.Path, h, r.Method)
	w := httptest.NewRecorder()
	rt.ServeHTTP(w, r)
	return w
}

func ok(c ctx) handler.Response { return response.String("ok") }

func TestRequestID(t *testing.T) {
	t.Parallel()

	var seen string
	h := func(c ctx) handler.Response {
		seen, _ = middleware.GetRequestID(c)
		return response.NoContent()
	}

	w := serve(t, httptest.NewRequest(http.MethodGet, "/", nil), h, middleware.RequestID[ctx]())
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))

	tests := []struct {
		name     string
		incoming string
		want     string
	}{
		{name: "trusted", incoming: "req-123", want: "req-123"},
		{name: "control characters replaced", incoming: "bad id\n", want: "generated"},
		{name: "too long replaced", incoming: strings.Repeat("x", 200), want: "generated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set("X-Request-ID", tt.incoming)
			w := serve(t, r, ok, middleware.RequestIDWithConfig[ctx](middleware.RequestIDConfig{
				UseExisting: true,
				Generator:   func() string { return "generated" },
			}))
			assert.Equal(t, tt.want, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestRequestIDExtractor(t *testing.T) {
	t.Parallel()

	_, ok := middleware.RequestIDExtractor(context.Background())
	assert.False(t, ok)

	var attr slog.Attr
	h := func(c ctx) handler.Response {
		attr, ok = middleware.RequestIDExtractor(c)
		return response.NoContent()
	}
	w := serve(t, httptest.NewRequest(http.MethodGet, "/", nil), h, middleware.RequestID[ctx]())
	require.True(t, ok)
	assert.Equal(t, w.Header().Get("X-Request-ID"), attr.Value.String())
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	var seen string
	h := func(c ctx) handler.Response {
		seen, _ = middleware.GetClientIP(c)
		return response.NoContent()
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	w := serve(t, r, h, middleware.ClientIPWithConfig[ctx](middleware.ClientIPConfig{HeaderName: "X-Client-IP"}))
	assert.Equal(t, "203.0.113.5", seen)
	assert.Equal(t, "203.0.113.5", w.Header().Get("X-Client-IP"))

	blocked := serve(t, httptest.NewRequest(http.MethodGet, "/", nil), ok,
		middleware.ClientIPWithConfig[ctx](middleware.ClientIPConfig{
			ValidateFunc: func(handler.Context, string) error { return errors.New("blocked") },
		}))
	assert.Equal(t, http.StatusForbidden, blocked.Code)
}

func TestLogging(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	r := httptest.NewRequest(http.MethodPost, "/login", nil)
	r.Header.Set("Cookie", "__session=secret")
	serve(t, r, func(c ctx) handler.Response { return response.Error(response.ErrUnauthorized) },
		middleware.RequestID[ctx](),
		middleware.LoggingWithConfig[ctx](middleware.LoggingConfig{Logger: log, LogHeaders: true}),
	)

	out := buf.String()
	assert.Contains(t, out, `"level":"WARN"`)
	assert.Contains(t, out, `"status_code":401`)
	assert.Contains(t, out, `"path":"/login"`)
	assert.Contains(t, out, "[REDACTED]")
	assert.NotContains(t, out, "secret")
}

func TestBodyLimit(t *testing.T) {
	t.Parallel()

	mw := middleware.BodyLimitWithConfig[ctx](middleware.BodyLimitConfig{MaxSize: 16})

	declared := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("a", 32)))
	w := serve(t, declared, ok, mw)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	// Bodies without a declared length fail while reading.
	streamed := httptest.NewRequest(http.MethodPost, "/", io.NopCloser(strings.NewReader(strings.Repeat("a", 32))))
	streamed.ContentLength = -1
	var readErr error
	serve(t, streamed, func(c ctx) handler.Response {
		_, readErr = io.ReadAll(c.Request().Body)
		return response.NoContent()
	}, mw)
	var maxErr *http.MaxBytesError
	assert.ErrorAs(t, readErr, &maxErr)

	small := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("email=a"))
	assert.Equal(t, http.StatusOK, serve(t, small, ok, mw).Code)
}

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	w := serve(t, httptest.NewRequest(http.MethodGet, "/", nil), ok, middleware.SecurityHeaders[ctx]())
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))

	dev := middleware.PageSecurity
	dev.IsDevelopment = true
	dev.CustomHeaders = map[string]string{"X-Robots-Tag": "noindex"}
	w = serve(t, httptest.NewRequest(http.MethodGet, "/", nil), ok, middleware.SecurityHeadersWithConfig[ctx](dev))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
	assert.Equal(t, "noindex", w.Header().Get("X-Robots-Tag"))
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (*ratelimiter.Result, error) {
	return nil, errors.New("down")
}

func (failingLimiter) AllowN(context.Context, string, int) (*ratelimiter.Result, error) {
	return nil, errors.New("down")
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	limiter, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), ratelimiter.Config{
		Capacity: 2, RefillRate: 1, RefillInterval: time.Minute,
	})
	require.NoError(t, err)

	rt := router.New[ctx]()
	rt.With(middleware.RateLimit[ctx](middleware.RateLimitConfig{
		Limiter:    limiter,
		KeyPrefix:  "login",
		SetHeaders: true,
	})).Post("/login", ok)

	send := func(ip string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/login", nil)
		r.RemoteAddr = ip + ":1000"
		w := httptest.NewRecorder()
		rt.ServeHTTP(w, r)
		return w
	}

	assert.Equal(t, http.StatusOK, send("192.0.2.1").Code)
	w := send("192.0.2.1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = send("192.0.2.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, send("192.0.2.2").Code)

	down := serve(t, httptest.NewRequest(http.MethodGet, "/", nil), ok,
		middleware.RateLimit[ctx](middleware.RateLimitConfig{Limiter: failingLimiter{}}))
	assert.Equal(t, http.StatusServiceUnavailable, down.Code)

	assert.Panics(t, func() { middleware.RateLimit[ctx](middleware.RateLimitConfig{}) })
}
