package response

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrymomot/authscreens/core/handler"
)

// HTMX response headers.
const (
	HeaderHXLocation = "HX-Location"
	HeaderHXPushURL  = "HX-Push-Url"
	HeaderHXRedirect = "HX-Redirect"
	HeaderHXReswap   = "HX-Reswap"
	HeaderHXRetarget = "HX-Retarget"
	HeaderHXTrigger  = "HX-Trigger"
)

// HTMX request headers.
const (
	HeaderHXRequest     = "HX-Request"
	HeaderHXTarget      = "HX-Target"
	HeaderHXTriggerName = "HX-Trigger-Name"
)

// HTMXOption configures HTMX-specific response headers.
type HTMXOption func(*htmxConfig)

type htmxConfig struct {
	trigger  map[string]any
	pushURL  string
	redirect string
	reswap   string
	retarget string
}

// WithHTMX wraps a response with HTMX headers. Headers are set before the
// wrapped response writes its status.
func WithHTMX(response handler.Response, opts ...HTMXOption) handler.Response {
	if response == nil || len(opts) == 0 {
		return response
	}

	return func(w http.ResponseWriter, r *http.Request) error {
		cfg := &htmxConfig{}
		for _, opt := range opts {
			opt(cfg)
		}

		h := w.Header()
		if cfg.pushURL != "" {
			h.Set(HeaderHXPushURL, cfg.pushURL)
		}
		if cfg.redirect != "" {
			h.Set(HeaderHXRedirect, cfg.redirect)
		}
		if cfg.reswap != "" {
			h.Set(HeaderHXReswap, cfg.reswap)
		}
		if cfg.retarget != "" {
			h.Set(HeaderHXRetarget, cfg.retarget)
		}
		if len(cfg.trigger) > 0 {
			if data, err := json.Marshal(cfg.trigger); err == nil {
				h.Set(HeaderHXTrigger, string(data))
			}
		}

		return response(w, r)
	}
}

// TriggerEvent adds a client-side event to the HX-Trigger header.
func TriggerEvent(name string, detail any) HTMXOption {
	return func(c *htmxConfig) {
		if c.trigger == nil {
			c.trigger = make(map[string]any)
		}
		c.trigger[name] = detail
	}
}

// PushURL sets the HX-Push-Url header.
func PushURL(url string) HTMXOption {
	return func(c *htmxConfig) { c.pushURL = url }
}

// HTMXRedirect sets the HX-Redirect header for a full page navigation.
func HTMXRedirect(url string) HTMXOption {
	return func(c *htmxConfig) { c.redirect = url }
}

// Reswap overrides the swap strategy, e.g. "outerHTML".
func Reswap(method string) HTMXOption {
	return func(c *htmxConfig) { c.reswap = method }
}

// Retarget overrides the swap target with a CSS selector.
func Retarget(selector string) HTMXOption {
	return func(c *htmxConfig) { c.retarget = selector }
}

// IsHTMXRequest reports whether the request was issued by htmx.
func IsHTMXRequest(r *http.Request) bool {
	return r.Header.Get(HeaderHXRequest) == "true"
}
