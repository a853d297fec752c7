package response_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authscreens/core/handler"
	"github.com/dmitrymomot/authscreens/core/response"
	"github.com/dmitrymomot/authscreens/core/router"
)

func run(t *testing.T, resp handler.Response, htmx bool) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/login", nil)
	if htmx {
		r.Header.Set(response.HeaderHXRequest, "true")
	}
	w := httptest.NewRecorder()
	require.NoError(t, resp(w, r))
	return w
}

func page(body string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, body)
		return err
	})
}

type coded struct{ status int }

func (c coded) Error() string   { return "coded" }
func (c coded) StatusCode() int { return c.status }

func TestBasicResponses(t *testing.T) {
	t.Parallel()

	w := run(t, response.String("ok"), false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "ok", w.Body.String())

	w = run(t, response.HTML("<p>x</p>"), false)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))

	w = run(t, response.NoContent(), false)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestTempl(t *testing.T) {
	t.Parallel()

	w := run(t, response.TemplWithStatus(page("<form></form>"), http.StatusUnprocessableEntity), false)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "<form></form>", w.Body.String())

	assert.Nil(t, response.Templ(nil))
}

func TestRedirect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		resp       handler.Response
		htmx       bool
		wantStatus int
		wantHeader string
		wantValue  string
	}{
		{name: "plain", resp: response.Redirect("/login"), wantStatus: http.StatusFound, wantHeader: "Location", wantValue: "/login"},
		{name: "see other", resp: response.RedirectSeeOther("/login"), wantStatus: http.StatusSeeOther, wantHeader: "Location", wantValue: "/login"},
		{name: "htmx", resp: response.Redirect("/login"), htmx: true, wantStatus: http.StatusOK, wantHeader: response.HeaderHXLocation, wantValue: "/login"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := run(t, tt.resp, tt.htmx)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantValue, w.Header().Get(tt.wantHeader))
		})
	}
}

func TestNavigate(t *testing.T) {
	t.Parallel()

	body := response.Templ(page("Login successful!"))

	t.Run("plain request gets refresh header", func(t *testing.T) {
		t.Parallel()

		w := run(t, response.Navigate("/dashboard", 1500*time.Millisecond, body), false)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "1.5; url=/dashboard", w.Header().Get("Refresh"))
		assert.Equal(t, "Login successful!", w.Body.String())
	})

	t.Run("htmx request gets navigate event", func(t *testing.T) {
		t.Parallel()

		w := run(t, response.Navigate("/verification?email=a%40b.com", 3*time.Second, body), true)
		assert.Empty(t, w.Header().Get("Refresh"))

		var events map[string]map[string]any
		require.NoError(t, json.Unmarshal([]byte(w.Header().Get(response.HeaderHXTrigger)), &events))
		assert.Equal(t, "/verification?email=a%40b.com", events[response.NavigateEvent]["url"])
		assert.InDelta(t, 3000, events[response.NavigateEvent]["delay"], 0)
	})

	t.Run("zero delay redirects", func(t *testing.T) {
		t.Parallel()

		w := run(t, response.Navigate("/login", 0, body), false)
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})
}

func TestWithHTMX(t *testing.T) {
	t.Parallel()

	w := run(t, response.WithHTMX(response.HTML("x"),
		response.Retarget("#banner"),
		response.Reswap("outerHTML"),
		response.PushURL("/login"),
		response.HTMXRedirect("/dashboard"),
	), true)

	assert.Equal(t, "#banner", w.Header().Get(response.HeaderHXRetarget))
	assert.Equal(t, "outerHTML", w.Header().Get(response.HeaderHXReswap))
	assert.Equal(t, "/login", w.Header().Get(response.HeaderHXPushURL))
	assert.Equal(t, "/dashboard", w.Header().Get(response.HeaderHXRedirect))
}

func TestAsHTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "http error", err: response.ErrTooManyRequests, wantStatus: http.StatusTooManyRequests, wantCode: "too_many_requests"},
		{name: "status coder", err: coded{status: http.StatusBadGateway}, wantStatus: http.StatusBadGateway, wantCode: "bad_gateway"},
		{name: "unknown status", err: coded{status: 418}, wantStatus: http.StatusInternalServerError, wantCode: "internal_server_error"},
		{name: "plain error", err: errors.New("x"), wantStatus: http.StatusInternalServerError, wantCode: "internal_server_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := response.AsHTTPError(tt.err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantCode, got.Code)
		})
	}
}

func TestErrorHandlers(t *testing.T) {
	t.Parallel()

	errPage := func(e response.HTTPError) templ.Component { return page("<h1>" + e.Message + "</h1>") }

	t.Run("page", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		ctx := router.NewContext(w, httptest.NewRequest(http.MethodGet, "/", nil), nil)
		response.PageErrorHandler[*router.Context](nil, errPage)(ctx, response.ErrNotFound)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "<h1>Not Found</h1>", w.Body.String())
	})

	t.Run("page for htmx falls back to text", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(response.HeaderHXRequest, "true")
		w := httptest.NewRecorder()
		response.PageErrorHandler[*router.Context](nil, errPage)(router.NewContext(w, r, nil), response.ErrForbidden)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Forbidden", w.Body.String())
	})
}
