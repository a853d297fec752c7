package authscreens_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authscreens/app/authscreens"
	"github.com/dmitrymomot/authscreens/pkg/timers"
)

type apiReply struct {
	status int
	body   string
}

// fakeAPI stands in for the account backend.
type fakeAPI struct {
	mu      sync.Mutex
	replies map[string]apiReply
	calls   map[string][]map[string]any
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	api := &fakeAPI{
		replies: map[string]apiReply{},
		calls:   map[string][]map[string]any{},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&body)
		}
		if auth := r.Header.Get("Authorization"); auth != "" {
			if body == nil {
				body = map[string]any{}
			}
			body["authorization"] = auth
		}

		api.mu.Lock()
		api.calls[r.URL.Path] = append(api.calls[r.URL.Path], body)
		reply, ok := api.replies[r.URL.Path]
		api.mu.Unlock()

		if !ok {
			reply = apiReply{status: http.StatusOK, body: `{"message":"ok"}`}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(reply.status)
		_, _ = io.WriteString(w, reply.body)
	}))
	t.Cleanup(srv.Close)
	return api, srv
}

func (f *fakeAPI) reply(path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[path] = apiReply{status: status, body: body}
}

func (f *fakeAPI) called(path string) []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

type harness struct {
	api    *fakeAPI
	clock  *timers.FakeClock
	server *httptest.Server
	client *http.Client
}

func newHarness(t *testing.T, mutate ...func(*authscreens.Config)) *harness {
	t.Helper()
	api, apiSrv := newFakeAPI(t)

	cfg := authscreens.DefaultConfig()
	cfg.Backend.BaseURL = apiSrv.URL
	cfg.Cookie.Secrets = strings.Repeat("s", 32)
	for _, fn := range mutate {
		fn(&cfg)
	}

	clock := timers.NewFakeClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	app, err := authscreens.New(context.Background(), cfg,
		authscreens.WithClock(clock),
		authscreens.WithLogger(slog.New(slog.DiscardHandler)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &harness{
		api:    api,
		clock:  clock,
		server: srv,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type page struct {
	status int
	header http.Header
	body   string
}

func (h *harness) do(t *testing.T, req *http.Request) page {
	t.Helper()
	resp, err := h.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return page{status: resp.StatusCode, header: resp.Header, body: string(body)}
}

func (h *harness) get(t *testing.T, path string) page {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, h.server.URL+path, nil)
	require.NoError(t, err)
	return h.do(t, req)
}

func (h *harness) post(t *testing.T, path string, form url.Values, headers ...string) page {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, h.server.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return h.do(t, req)
}

func TestApp_Health(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	assert.Equal(t, http.StatusOK, h.get(t, "/health").status)
	live := h.get(t, "/health/live")
	assert.Equal(t, http.StatusOK, live.status)
	assert.Equal(t, "ALIVE", live.body)
}

func TestApp_FormPages(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	for _, path := range []string{"/signup", "/register", "/login", "/signin", "/forgot-password"} {
		p := h.get(t, path)
		assert.Equal(t, http.StatusOK, p.status, path)
		assert.Contains(t, p.body, `action="`+path+`"`, path)
		assert.Contains(t, p.body, `hx-post="/validate/`, path)
	}
	assert.Contains(t, h.get(t, "/register").body, "delay:80ms")
}

func TestApp_SignupValidation(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	p := h.post(t, "/signup", url.Values{"email": {"not-an-email"}})
	assert.Equal(t, http.StatusUnprocessableEntity, p.status)
	assert.Contains(t, p.body, "Username is required.")
	assert.Contains(t, p.body, "Email is not valid.")
	assert.Contains(t, p.body, "Password is required.")
	assert.Empty(t, h.api.called("/api/users"), "invalid forms never reach the backend")
}

func TestApp_SignupSuccess(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	p := h.post(t, "/signup", url.Values{
		"name":     {"alice"},
		"email":    {"alice@example.com"},
		"password": {"Secret1!"},
	})
	assert.Equal(t, http.StatusOK, p.status)
	assert.Contains(t, p.body, "Signup successful!")
	assert.NotContains(t, p.body, "alice@example.com", "form is reset")

	calls := h.api.called("/api/users")
	require.Len(t, calls, 1)
	assert.Equal(t, "alice", calls[0]["name"])
}

func TestApp_SignupBackendErrorsRouteToFields(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.api.reply("/api/users", http.StatusConflict, `{"errors":["Email already taken","Something else"]}`)

	p := h.post(t, "/signup", url.Values{
		"name":     {"alice"},
		"email":    {"alice@example.com"},
		"password": {"Secret1!"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, p.status)
	assert.Contains(t, p.body, `id="error-email"`)
	assert.Contains(t, p.body, "Email already taken")
	assert.Contains(t, p.body, "Something else")
}

func TestApp_EmptyRejectionShowsBanner(t *testing.T) {
	t.Parallel()

	valid := url.Values{
		"name":     {"alice"},
		"email":    {"alice@example.com"},
		"password": {"Secret1!"},
	}

	t.Run("server error without payload", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		h.api.reply("/api/users", http.StatusInternalServerError, `<html>oops</html>`)

		p := h.post(t, "/signup", valid)
		assert.Equal(t, http.StatusBadGateway, p.status)
		assert.Contains(t, p.body, "Network error. Please try again.")
	})

	t.Run("client error with empty object", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		h.api.reply("/api/users", http.StatusBadRequest, `{}`)

		p := h.post(t, "/signup", valid)
		assert.Equal(t, http.StatusUnprocessableEntity, p.status)
		assert.Contains(t, p.body, "Request failed. Please try again.")
	})
}

func TestApp_LongPasswordIsSentVerbatim(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	password := "Abcdef1!" + strings.Repeat("x", 292)
	p := h.post(t, "/signup", url.Values{
		"name":     {"alice"},
		"email":    {"alice@example.com"},
		"password": {password},
	})
	assert.Equal(t, http.StatusOK, p.status)

	calls := h.api.called("/api/users")
	require.Len(t, calls, 1)
	assert.Equal(t, password, calls[0]["password"])
}

func TestApp_NetworkError(t *testing.T) {
	t.Parallel()
	h := newHarness(t, func(cfg *authscreens.Config) {
		cfg.Backend.BaseURL = "http://127.0.0.1:1"
		cfg.Backend.Timeout = time.Second
	})

	p := h.post(t, "/signin", url.Values{"email": {"a@b.com"}, "password": {"x"}})
	assert.Equal(t, http.StatusBadGateway, p.status)
	assert.Contains(t, p.body, "Network error. Please try again.")
}

func TestApp_RegisterNavigatesToVerification(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.api.reply("/api/users2/register", http.StatusCreated, `{"message":"Check your inbox"}`)

	form := url.Values{
		"username": {"alice"},
		"email":    {"alice@example.com"},
		"password": {"Secret1!"},
	}
	p := h.post(t, "/register", form)
	assert.Equal(t, http.StatusOK, p.status)
	assert.Contains(t, p.body, "Check your inbox")
	assert.Equal(t, "3; url=/verification?email=alice%40example.com", p.header.Get("Refresh"))

	p = h.post(t, "/register", form, "HX-Request", "true")
	assert.Contains(t, p.header.Get("HX-Trigger"), `"url":"/verification?email=alice%40example.com"`)
	assert.Contains(t, p.header.Get("HX-Trigger"), `"delay":3000`)
}

func TestApp_LoginFlow(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.api.reply("/api/users2/login", http.StatusOK, `{"token":"tok-1","user":{"username":"alice","email":"alice@example.com","role":"admin"}}`)
	h.api.reply("/api/users2/me", http.StatusOK, `{"user":{"username":"alice","email":"alice@example.com","role":"admin"}}`)

	p := h.get(t, "/dashboard")
	assert.Equal(t, http.StatusFound, p.status)
	assert.Equal(t, "/login", p.header.Get("Location"))

	p = h.post(t, "/login", url.Values{"email": {"alice@example.com"}, "password": {"pw"}})
	assert.Equal(t, http.StatusOK, p.status)
	assert.Contains(t, p.body, "Login successful! Redirecting...")
	assert.Equal(t, "1.5; url=/dashboard", p.header.Get("Refresh"))

	p = h.get(t, "/dashboard?tab=profile")
	assert.Equal(t, http.StatusOK, p.status)
	assert.Contains(t, p.body, "Welcome, alice")
	assert.Contains(t, p.body, "<dd>admin</dd>")

	p = h.post(t, "/logout", url.Values{})
	assert.Equal(t, http.StatusSeeOther, p.status)
	home := h.get(t, "/")
	assert.Contains(t, home.body, "You have been logged out.")

	p = h.get(t, "/dashboard")
	assert.Equal(t, http.StatusFound, p.status)
}

func TestApp_DashboardRejectedTokenLogsOut(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.api.reply("/api/users2/login", http.StatusOK, `{"token":"tok-1"}`)
	h.api.reply("/api/users2/me", http.StatusUnauthorized, `{"error":"token expired"}`)

	h.post(t, "/login", url.Values{"email": {"alice@example.com"}, "password": {"pw"}})

	p := h.get(t, "/dashboard")
	assert.Equal(t, http.StatusFound, p.status)
	assert.Equal(t, "/login", p.header.Get("Location"))
	assert.Equal(t, http.StatusFound, h.get(t, "/dashboard").status)
}

func TestApp_LoginNotVerified(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.api.reply("/api/users2/login", http.StatusForbidden, `{"error":"Account not verified"}`)

	p := h.post(t, "/login", url.Values{"email": {"alice@example.com"}, "password": {"pw"}})
	assert.Equal(t, http.StatusUnprocessableEntity, p.status)
	assert.Contains(t, p.body, "Your account is not verified. Please check your email.")
	assert.Equal(t, "2; url=/verification?email=alice%40example.com", p.header.Get("Refresh"))
}

func TestApp_LoginRateLimited(t *testing.T) {
	t.Parallel()
	h := newHarness(t, func(cfg *authscreens.Config) {
		cfg.Limits.Login = 2
	})
	h.api.reply("/api/users2/login", http.StatusUnauthorized, `{"error":"Invalid credentials"}`)

	creds := url.Values{"email": {"alice@example.com"}, "password": {"pw"}}
	assert.Equal(t, http.StatusUnprocessableEntity, h.post(t, "/login", creds).status)
	assert.Equal(t, http.StatusUnprocessableEntity, h.post(t, "/login", creds).status)
	assert.Equal(t, http.StatusTooManyRequests, h.post(t, "/login", creds).status)
}

func TestApp_Validate(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	p := h.post(t, "/validate/register", url.Values{
		"username": {"1abc"},
		"email":    {""},
		"password": {""},
	}, "HX-Request", "true", "HX-Trigger-Name", "username")
	assert.Equal(t, http.StatusOK, p.status)
	assert.Contains(t, p.body, `id="error-username" hx-swap-oob="true">Username cannot start with a number.</p>`)
	assert.NotContains(t, p.body, "error-password", "untouched empty fields are left alone")

	assert.Equal(t, http.StatusNotFound, h.post(t, "/validate/unknown", url.Values{}).status)
}

func TestApp_AccountVerification(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.api.reply("/api/users2/verify", http.StatusOK, `{"message":"Account verified!"}`)

	assert.Equal(t, http.StatusFound, h.get(t, "/verification?email=bad").status)

	p := h.get(t, "/verification?email=alice%40example.com")
	assert.Equal(t, http.StatusOK, p.status)
	assert.Contains(t, p.body, "Code expires in 5:00")

	h.clock.Advance(2 * time.Second)
	state := h.get(t, "/verification/account/state")
	assert.Equal(t, http.StatusOK, state.status)
	assert.Contains(t, state.body, "Code expires in 4:58")

	p = h.post(t, "/verification", url.Values{"email": {"alice@example.com"}, "code": {"12", "3"}})
	assert.Equal(t, http.StatusUnprocessableEntity, p.status)
	assert.Contains(t, p.body, "Please enter the full 6-digit code")
	assert.Empty(t, h.api.called("/api/users2/verify"))

	p = h.post(t, "/verification", url.Values{"email": {"alice@example.com"}, "code": {"123456"}})
	assert.Equal(t, http.StatusOK, p.status)
	assert.Contains(t, p.body, "Account verified!")
	assert.Equal(t, "3; url=/login", p.header.Get("Refresh"))

	calls := h.api.called("/api/users2/verify")
	require.Len(t, calls, 1)
	assert.Equal(t, "123456", calls[0]["code"])
}

func TestApp_VerificationExpiresAndResends(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	h.get(t, "/verification?email=alice%40example.com")
	h.clock.Advance(300 * time.Second)

	state := h.get(t, "/verification/account/state")
	assert.Contains(t, state.body, "The code has expired.")

	p := h.post(t, "/verification", url.Values{"email": {"alice@example.com"}, "code": {"1", "2", "3", "4", "5", "6"}})
	assert.Equal(t, http.StatusUnprocessableEntity, p.status)
	assert.Empty(t, h.api.called("/api/users2/verify"))

	p = h.post(t, "/verification/account/resend", url.Values{"email": {"alice@example.com"}}, "HX-Request", "true")
	assert.Equal(t, http.StatusOK, p.status)
	assert.Contains(t, p.body, "Code expires in 5:00")
	assert.Contains(t, p.body, `hx-swap-oob="true"`)
	assert.Len(t, h.api.called("/api/users2/resend-code"), 1)
}

func TestApp_VerificationStateWithoutFlowStopsPolling(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	assert.Equal(t, 286, h.get(t, "/verification/account/state").status)
	assert.Equal(t, http.StatusNotFound, h.get(t, "/verification/nope/state").status)
}

func TestApp_PasswordReset(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.api.reply("/api/users2/forgot-password", http.StatusOK, `{"message":"Reset code sent"}`)

	p := h.get(t, "/new-password?email=alice%40example.com")
	assert.Equal(t, http.StatusFound, p.status, "no verified reset code yet")

	p = h.post(t, "/forgot-password", url.Values{"email": {"alice@example.com"}})
	assert.Equal(t, http.StatusSeeOther, p.status)
	assert.Equal(t, "/verify-code?email=alice%40example.com", p.header.Get("Location"))

	p = h.get(t, "/verify-code?email=alice%40example.com")
	assert.Equal(t, http.StatusOK, p.status)
	assert.Contains(t, p.body, "Reset code sent")

	p = h.post(t, "/verify-code", url.Values{"email": {"alice@example.com"}, "code": {"654321"}})
	assert.Equal(t, http.StatusOK, p.status)
	assert.Equal(t, "1.2; url=/new-password?email=alice%40example.com", p.header.Get("Refresh"))
	assert.Len(t, h.api.called("/api/users2/verify-code-password"), 1)

	p = h.get(t, "/new-password?email=alice%40example.com")
	assert.Equal(t, http.StatusOK, p.status)

	p = h.post(t, "/new-password", url.Values{
		"email":           {"alice@example.com"},
		"password":        {"Secret1!"},
		"confirmPassword": {"Secret2!"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, p.status)
	assert.Contains(t, p.body, "Passwords do not match.")

	p = h.post(t, "/new-password", url.Values{
		"email":           {"alice@example.com"},
		"password":        {"Secret1!"},
		"confirmPassword": {"Secret1!"},
	})
	assert.Equal(t, http.StatusSeeOther, p.status)
	assert.Equal(t, "/login", p.header.Get("Location"))

	calls := h.api.called("/api/users2/reset-password")
	require.Len(t, calls, 1)
	assert.Equal(t, "Secret1!", calls[0]["newPassword"])

	assert.Contains(t, h.get(t, "/login").body, "Password updated. Please log in.")
	assert.Equal(t, http.StatusFound, h.get(t, "/new-password?email=alice%40example.com").status)
}

func TestApp_UnknownStore(t *testing.T) {
	t.Parallel()

	cfg := authscreens.DefaultConfig()
	cfg.SessionStore = "etcd"
	cfg.Cookie.Secrets = strings.Repeat("s", 32)
	_, err := authscreens.New(context.Background(), cfg, authscreens.WithLogger(slog.New(slog.DiscardHandler)))
	require.ErrorIs(t, err, authscreens.ErrUnknownStore)
}
