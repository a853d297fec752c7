package views

import (
	"context"

	"github.com/a-h/templ"
)

// Verification describes a code entry screen.
type Verification struct {
	Title     string
	Action    string
	StateURL  string
	ResendURL string
	Email     string
	Slots     []string
	Focus     int
	Countdown string
	State     string
	Polling   bool
	CanSubmit bool
	CanResend bool
	Message   *Banner
	Links     []Link
}

// VerificationView renders the full code entry page.
func VerificationView(site Site, v Verification) templ.Component {
	return Page(site, v.Title, component(func(ctx context.Context, h *html) {
		h.raw(`<form id="verification-form" class="card" method="post"`)
		h.attr("action", v.Action)
		h.raw(`><h2>`)
		h.text(v.Title)
		h.raw(`</h2>`)
		if v.Email != "" {
			h.raw(`<p class="countdown">Enter the code sent to <strong>`)
			h.text(v.Email)
			h.raw(`</strong></p>`)
		}
		h.raw(`<input type="hidden" name="email"`)
		h.attr("value", v.Email)
		h.raw(`>`)
		h.render(ctx, CodeSlots(v, false))
		h.render(ctx, VerificationPanel(v))
		links(h, v.Links)
		h.raw(`</form>`)
	}))
}

// CodeSlots renders the six digit inputs. With oob set they replace the
// slots already on the page.
func CodeSlots(v Verification, oob bool) templ.Component {
	return component(func(ctx context.Context, h *html) {
		h.raw(`<div id="code-slots" class="code-slots"`)
		if oob {
			h.attr("hx-swap-oob", "true")
		}
		h.raw(`>`)
		for i, slot := range v.Slots {
			h.raw(`<input class="code-slot" name="code" inputmode="numeric" autocomplete="one-time-code" maxlength="1" pattern="[0-9]?"`)
			h.attr("aria-label", "Digit "+itoa(i+1))
			h.attr("value", slot)
			h.flag("autofocus", i == v.Focus)
			h.raw(`>`)
		}
		h.raw(`</div>`)
	})
}

// VerificationPanel renders the countdown, message and actions. While
// polling it refreshes itself every second.
func VerificationPanel(v Verification) templ.Component {
	return component(func(ctx context.Context, h *html) {
		h.raw(`<div id="verification-panel"`)
		h.attr("data-state", v.State)
		if v.Polling && v.StateURL != "" {
			h.attr("hx-get", v.StateURL)
			h.attr("hx-trigger", "every 1s")
			h.attr("hx-swap", "outerHTML")
		}
		h.raw(`><p class="countdown">`)
		if v.State == "expired" {
			h.raw(`The code has expired.`)
		} else {
			h.raw(`Code expires in `)
			h.text(v.Countdown)
		}
		h.raw(`</p>`)
		banners(h, v.Message)

		h.raw(`<button type="submit"`)
		h.flag("disabled", !v.CanSubmit)
		h.raw(`>`)
		if v.State == "submitting" {
			h.raw(`Verifying...`)
		} else {
			h.raw(`Verify`)
		}
		h.raw(`</button>`)

		if v.ResendURL != "" {
			h.raw(`<p class="links"><button type="button" hx-target="#verification-panel" hx-swap="outerHTML"`)
			h.attr("hx-post", v.ResendURL)
			h.flag("disabled", !v.CanResend)
			h.raw(`>`)
			if v.State == "resend_in_progress" {
				h.raw(`Sending...`)
			} else {
				h.raw(`Resend code`)
			}
			h.raw(`</button></p>`)
		}
		h.raw(`</div>`)
	})
}

// Resent answers a resend with the refreshed panel and cleared slots.
func Resent(v Verification) templ.Component {
	return component(func(ctx context.Context, h *html) {
		h.render(ctx, VerificationPanel(v))
		h.render(ctx, CodeSlots(v, true))
	})
}
