package authscreens

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/url"

	"github.com/dmitrymomot/authscreens/app/authscreens/views"
	"github.com/dmitrymomot/authscreens/core/form"
	"github.com/dmitrymomot/authscreens/core/logger"
	"github.com/dmitrymomot/authscreens/core/response"
	"github.com/dmitrymomot/authscreens/core/sanitizer"
)

const flashKey = "banner"

type flashBanner struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// flash stores a banner for the next page the browser loads.
func (a *App) flash(ctx *Context, success bool, msg string) {
	err := a.cookies.SetFlash(ctx.ResponseWriter(), flashKey, flashBanner{Success: success, Message: msg})
	if err != nil {
		a.log.WarnContext(ctx, "failed to set flash banner", logger.Component("screens"), logger.Error(err))
	}
}

// takeFlash returns and clears the pending banner.
func (a *App) takeFlash(ctx *Context) *views.Banner {
	var fb flashBanner
	if err := a.cookies.GetFlash(ctx.ResponseWriter(), ctx.Request(), flashKey, &fb); err != nil || fb.Message == "" {
		return nil
	}
	return &views.Banner{Success: fb.Success, Message: fb.Message, TTL: form.DefaultBannerTTL}
}

// parseForm reads the posted body. An oversized body is a 413.
func parseForm(r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return response.ErrRequestTooLarge
		}
		return response.ErrBadRequest.WithError(err)
	}
	return nil
}

// maxInputLength caps posted single-line values. Passwords are bounded by
// the body limit only.
const maxInputLength = 256

// postedValues reads fields from a parsed form body. Passwords are taken
// verbatim; other inputs lose control characters and are capped.
func postedValues(r *http.Request, fields []string) form.Values {
	values := make(form.Values, len(fields))
	for _, name := range fields {
		v := r.PostForm.Get(name)
		if inputType(name) != "password" {
			v = sanitizer.Line(sanitizer.MaxLength(v, maxInputLength))
		}
		values[name] = v
	}
	return values
}

func inputType(field string) string {
	switch field {
	case form.FieldEmail:
		return "email"
	case form.FieldPassword, form.FieldConfirmPassword:
		return "password"
	default:
		return "text"
	}
}

func autocomplete(field, profile string) string {
	switch field {
	case form.FieldEmail:
		return "email"
	case form.FieldName, form.FieldUsername:
		return "username"
	case form.FieldPassword:
		if profile == form.ProfileLogin || profile == form.ProfileSignin {
			return "current-password"
		}
		return "new-password"
	case form.FieldConfirmPassword:
		return "new-password"
	default:
		return ""
	}
}

func withEmail(path, email string) string {
	return path + "?" + url.Values{"email": {email}}.Encode()
}

// userKey keys the user cache without keeping raw tokens as map keys.
func userKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// scriptOrigin returns scheme://host of an absolute script URL.
func scriptOrigin(src string) string {
	u, err := url.Parse(src)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
