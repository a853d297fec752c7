package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authscreens/core/cookie"
)

const (
	secretA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	secretB = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

// replay copies Set-Cookie headers from w into a new request.
func replay(w *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := cookie.New(nil)
	assert.ErrorIs(t, err, cookie.ErrNoSecret)

	_, err = cookie.New([]string{"", ""})
	assert.ErrorIs(t, err, cookie.ErrNoSecret)

	_, err = cookie.New([]string{"short"})
	assert.ErrorIs(t, err, cookie.ErrSecretTooShort)

	m, err := cookie.New([]string{secretA})
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestSetGet(t *testing.T) {
	t.Parallel()

	m, err := cookie.New([]string{secretA}, cookie.WithSecure(true))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, m.Set(w, "plain", "value", cookie.WithMaxAge(60)))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	assert.Equal(t, 60, cookies[0].MaxAge)

	got, err := m.Get(replay(w), "plain")
	require.NoError(t, err)
	assert.Equal(t, "value", got)

	_, err = m.Get(httptest.NewRequest(http.MethodGet, "/", nil), "plain")
	assert.ErrorIs(t, err, cookie.ErrCookieNotFound)
}

func TestSigned(t *testing.T) {
	t.Parallel()

	m, err := cookie.New([]string{secretA})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, m.SetSigned(w, "sid", "token-123"))

	got, err := m.GetSigned(replay(w), "sid")
	require.NoError(t, err)
	assert.Equal(t, "token-123", got)

	t.Run("tampered", func(t *testing.T) {
		t.Parallel()

		value := w.Result().Cookies()[0].Value
		_, sig, _ := strings.Cut(value, "|")

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "sid", Value: "dG9rZW4tOTk5|" + sig})
		_, err := m.GetSigned(r, "sid")
		assert.ErrorIs(t, err, cookie.ErrInvalidSignature)
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "sid", Value: "no-separator"})
		_, err := m.GetSigned(r, "sid")
		assert.ErrorIs(t, err, cookie.ErrInvalidFormat)
	})
}

func TestKeyRotation(t *testing.T) {
	t.Parallel()

	old, err := cookie.New([]string{secretA})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, old.SetSigned(w, "sid", "signed"))
	require.NoError(t, old.SetEncrypted(w, "enc", "secret"))
	r := replay(w)

	rotated, err := cookie.New([]string{secretB, secretA})
	require.NoError(t, err)

	got, err := rotated.GetSigned(r, "sid")
	require.NoError(t, err)
	assert.Equal(t, "signed", got)

	got, err = rotated.GetEncrypted(r, "enc")
	require.NoError(t, err)
	assert.Equal(t, "secret", got)

	other, err := cookie.New([]string{secretB})
	require.NoError(t, err)

	_, err = other.GetSigned(r, "sid")
	assert.ErrorIs(t, err, cookie.ErrInvalidSignature)
	_, err = other.GetEncrypted(r, "enc")
	assert.ErrorIs(t, err, cookie.ErrDecryptionFailed)
}

func TestEncrypted(t *testing.T) {
	t.Parallel()

	m, err := cookie.New([]string{secretA})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, m.SetEncrypted(w, "enc", "a@b.com"))

	raw := w.Result().Cookies()[0].Value
	assert.NotContains(t, raw, "a@b.com")

	got, err := m.GetEncrypted(replay(w), "enc")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", got)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "enc", Value: "!!"})
	_, err = m.GetEncrypted(r, "enc")
	assert.ErrorIs(t, err, cookie.ErrInvalidFormat)
}

func TestFlash(t *testing.T) {
	t.Parallel()

	type banner struct {
		Kind string `json:"kind"`
		Text string `json:"text"`
	}

	m, err := cookie.New([]string{secretA})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, m.SetFlash(w, "banner", banner{Kind: "success", Text: "Account verified"}))

	read := httptest.NewRecorder()
	var got banner
	require.NoError(t, m.GetFlash(read, replay(w), "banner", &got))
	assert.Equal(t, banner{Kind: "success", Text: "Account verified"}, got)

	deleted := read.Result().Cookies()
	require.Len(t, deleted, 1)
	assert.Equal(t, -1, deleted[0].MaxAge)

	err = m.GetFlash(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), "banner", &got)
	assert.ErrorIs(t, err, cookie.ErrCookieNotFound)
}

func TestCookieTooLarge(t *testing.T) {
	t.Parallel()

	m, err := cookie.NewWithOptions([]string{secretA}, nil, cookie.WithMaxSize(64))
	require.NoError(t, err)

	err = m.Set(httptest.NewRecorder(), "big", strings.Repeat("x", 100))
	var tooLarge cookie.ErrCookieTooLarge
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, "big", tooLarge.Name)
	assert.Equal(t, 64, tooLarge.Max)
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	cfg := cookie.DefaultConfig()
	cfg.Secrets = " " + secretB + " , " + secretA + ","
	cfg.Secure = true
	cfg.Domain = "example.com"

	m, err := cookie.NewFromConfig(cfg)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, m.Set(w, "k", "v"))
	c := w.Result().Cookies()[0]
	assert.True(t, c.Secure)
	assert.Equal(t, "example.com", c.Domain)
	assert.Equal(t, "/", c.Path)

	_, err = cookie.NewFromConfig(cookie.DefaultConfig())
	assert.ErrorIs(t, err, cookie.ErrNoSecret)
}
