package response

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrymomot/authscreens/core/handler"
)

// NavigateEvent is the HX-Trigger event name used for delayed navigation.
const NavigateEvent = "navigate"

// Redirect creates a 302 Found response.
// For HTMX requests it answers 200 with HX-Location instead.
func Redirect(url string) handler.Response {
	return RedirectWithStatus(url, http.StatusFound)
}

// RedirectSeeOther creates a 303 See Other response, used after form POSTs.
func RedirectSeeOther(url string) handler.Response {
	return RedirectWithStatus(url, http.StatusSeeOther)
}

// RedirectWithStatus creates a redirect with a custom 3xx status.
func RedirectWithStatus(url string, status int) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		if IsHTMXRequest(r) {
			w.Header().Set(HeaderHXLocation, url)
			w.WriteHeader(http.StatusOK)
			return nil
		}
		http.Redirect(w, r, url, status)
		return nil
	}
}

// Navigate renders body and moves the browser to url once delay has elapsed,
// so a success banner stays readable before the next page loads.
// Plain requests get a Refresh header; HTMX requests get a "navigate" event
// carrying the target and the delay in milliseconds.
// A non-positive delay degrades to an immediate redirect.
func Navigate(url string, delay time.Duration, body handler.Response) handler.Response {
	if delay <= 0 || body == nil {
		return RedirectSeeOther(url)
	}

	return func(w http.ResponseWriter, r *http.Request) error {
		if IsHTMXRequest(r) {
			return WithHTMX(body, TriggerEvent(NavigateEvent, map[string]any{
				"url":   url,
				"delay": delay.Milliseconds(),
			}))(w, r)
		}
		w.Header().Set("Refresh", RefreshValue(url, delay))
		return body(w, r)
	}
}

// RefreshValue formats a Refresh header value: seconds with millisecond precision, then the URL.
func RefreshValue(url string, delay time.Duration) string {
	return strconv.FormatFloat(delay.Seconds(), 'f', -1, 64) + "; url=" + url
}
