package router_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authscreens/core/handler"
	"github.com/dmitrymomot/authscreens/core/router"
)

type ctxKey struct{}

func text(body string) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		_, err := w.Write([]byte(body))
		return err
	}
}

func tag(name string, trail *[]string) handler.Middleware[*router.Context] {
	return func(next handler.HandlerFunc[*router.Context]) handler.HandlerFunc[*router.Context] {
		return func(ctx *router.Context) handler.Response {
			*trail = append(*trail, name)
			return next(ctx)
		}
	}
}

func serve(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestRouter_PathParams(t *testing.T) {
	t.Parallel()

	r := router.New[*router.Context]()
	r.Get("/validate/{profile}", func(ctx *router.Context) handler.Response {
		return text(ctx.Param("profile") + ":" + ctx.Param("missing"))
	})

	w := serve(t, r, http.MethodGet, "/validate/register")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "register:", w.Body.String())
}

func TestRouter_NotFoundAndMethodNotAllowed(t *testing.T) {
	t.Parallel()

	r := router.New[*router.Context]()
	r.Post("/login", func(ctx *router.Context) handler.Response { return text("ok") })

	assert.Equal(t, http.StatusNotFound, serve(t, r, http.MethodGet, "/nope").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(t, r, http.MethodGet, "/login").Code)
	assert.Equal(t, http.StatusOK, serve(t, r, http.MethodPost, "/login").Code)
}

func TestRouter_MiddlewareOrder(t *testing.T) {
	t.Parallel()

	var trail []string
	r := router.New[*router.Context]()
	r.Use(tag("root", &trail))

	r.With(tag("inline", &trail)).Get("/a", func(ctx *router.Context) handler.Response {
		trail = append(trail, "handler")
		return text("a")
	})
	r.Get("/b", func(ctx *router.Context) handler.Response {
		trail = append(trail, "handler")
		return text("b")
	})

	serve(t, r, http.MethodGet, "/a")
	assert.Equal(t, []string{"root", "inline", "handler"}, trail)

	trail = nil
	serve(t, r, http.MethodGet, "/b")
	assert.Equal(t, []string{"root", "handler"}, trail)
}

func TestRouter_GroupInheritsInlineMiddleware(t *testing.T) {
	t.Parallel()

	var trail []string
	r := router.New[*router.Context]()
	r.With(tag("outer", &trail)).Group(func(g router.Router[*router.Context]) {
		g.With(tag("inner", &trail)).Get("/x", func(ctx *router.Context) handler.Response {
			return text("x")
		})
	})

	serve(t, r, http.MethodGet, "/x")
	assert.Equal(t, []string{"outer", "inner"}, trail)
}

func TestRouter_UseAfterRoutesPanics(t *testing.T) {
	t.Parallel()

	r := router.New[*router.Context]()
	r.Get("/", func(ctx *router.Context) handler.Response { return text("") })

	assert.Panics(t, func() { r.Use(tag("late", new([]string))) })
}

func TestRouter_SetValueReachesResponse(t *testing.T) {
	t.Parallel()

	r := router.New[*router.Context]()
	r.Use(func(next handler.HandlerFunc[*router.Context]) handler.HandlerFunc[*router.Context] {
		return func(ctx *router.Context) handler.Response {
			ctx.SetValue(ctxKey{}, "v1")
			return next(ctx)
		}
	})
	r.Get("/", func(ctx *router.Context) handler.Response {
		return func(w http.ResponseWriter, r *http.Request) error {
			_, err := w.Write([]byte(r.Context().Value(ctxKey{}).(string)))
			return err
		}
	})

	assert.Equal(t, "v1", serve(t, r, http.MethodGet, "/").Body.String())
}

func TestRouter_Errors(t *testing.T) {
	t.Parallel()

	t.Run("default handler", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		r.Get("/err", func(ctx *router.Context) handler.Response {
			return func(w http.ResponseWriter, r *http.Request) error { return errors.New("boom") }
		})

		w := serve(t, r, http.MethodGet, "/err")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "boom")
	})

	t.Run("nil response", func(t *testing.T) {
		t.Parallel()

		r := router.New[*router.Context]()
		r.Get("/nil", func(ctx *router.Context) handler.Response { return nil })

		w := serve(t, r, http.MethodGet, "/nil")
		assert.Contains(t, w.Body.String(), router.ErrNilResponse.Error())
	})

	t.Run("panic is recovered", func(t *testing.T) {
		t.Parallel()

		var got error
		r := router.New[*router.Context](router.WithErrorHandler[*router.Context](func(ctx *router.Context, err error) {
			got = err
			ctx.ResponseWriter().WriteHeader(http.StatusTeapot)
		}))
		r.Get("/panic", func(ctx *router.Context) handler.Response { panic("kaboom") })

		w := serve(t, r, http.MethodGet, "/panic")
		assert.Equal(t, http.StatusTeapot, w.Code)

		var pe router.PanicError
		require.ErrorAs(t, got, &pe)
		assert.Equal(t, "kaboom", pe.Value())
		assert.NotEmpty(t, pe.Stack())
	})
}

func TestRouter_Routes(t *testing.T) {
	t.Parallel()

	r := router.New[*router.Context]()
	r.Get("/login", func(ctx *router.Context) handler.Response { return text("") })
	r.Method("/logout", func(ctx *router.Context) handler.Response { return text("") }, "get", "post")

	var got []string
	for _, rt := range r.Routes() {
		got = append(got, rt.Method+" "+rt.Pattern)
	}
	assert.ElementsMatch(t, []string{"GET /login", "GET /logout", "POST /logout"}, got)
}

func TestRouter_InvalidRegistration(t *testing.T) {
	t.Parallel()

	r := router.New[*router.Context]()
	h := func(ctx *router.Context) handler.Response { return text("") }

	assert.Panics(t, func() { r.Get("login", h) })
	assert.Panics(t, func() { r.Method("/x", h) })
	assert.Equal(t, http.StatusNotFound, serve(t, r, http.MethodGet, "/x").Code)
}
