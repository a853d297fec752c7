package authscreens

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrymomot/authscreens/app/authscreens/views"
	"github.com/dmitrymomot/authscreens/core/form"
	"github.com/dmitrymomot/authscreens/core/handler"
	"github.com/dmitrymomot/authscreens/core/logger"
	"github.com/dmitrymomot/authscreens/core/response"
	"github.com/dmitrymomot/authscreens/core/sanitizer"
	"github.com/dmitrymomot/authscreens/core/verification"
	"github.com/dmitrymomot/authscreens/integration/backend"
)

// statusStopPolling tells htmx to stop an "every" trigger.
const statusStopPolling = 286

// flow is one of the two code entry screens.
type flow struct {
	name     string
	path     string
	title    string
	fallback string
}

var (
	accountFlow = flow{name: "account", path: "/verification", title: "Verify your account", fallback: "/register"}
	resetFlow   = flow{name: "reset", path: "/verify-code", title: "Enter reset code", fallback: "/forgot-password"}
)

func flowByName(name string) (flow, bool) {
	switch name {
	case accountFlow.name:
		return accountFlow, true
	case resetFlow.name:
		return resetFlow, true
	default:
		return flow{}, false
	}
}

func (a *App) verifier(fl flow) verification.Verifier {
	if fl == resetFlow {
		return backend.ResetVerifier{Client: a.backend}
	}
	return backend.AccountVerifier{Client: a.backend}
}

// openFlow returns the session's controller for fl, replacing it when it
// verifies a different address.
func (a *App) openFlow(ctx *Context, fl flow, email string) *verification.Controller {
	return a.flows.Open(ctx.SessionKey(), fl.name, email, func(email string) *verification.Controller {
		opts := append(a.cfg.Verification.Options(),
			verification.WithClock(a.clock),
			verification.WithLogger(a.log.With(logger.Flow(fl.name))),
		)
		return verification.New(email, a.verifier(fl), opts...)
	})
}

// validEmail checks the address carried in verification URLs.
func (a *App) validEmail(email string) bool {
	v, ok := a.validators[form.ProfileForgotPassword]
	if !ok {
		return email != ""
	}
	return v.Validate(form.FieldEmail, email, nil) == ""
}

func (a *App) showVerification(fl flow) handler.HandlerFunc[*Context] {
	return func(ctx *Context) handler.Response {
		email := sanitizer.Email(ctx.Request().URL.Query().Get("email"))
		if !a.validEmail(email) {
			return response.Redirect(fl.fallback)
		}

		key := ctx.SessionKey()
		if ctrl, ok := a.flows.Get(key, fl.name); ok && ctrl.Email() == email && ctrl.State() == verification.Verified {
			a.flows.Remove(key, fl.name)
		}
		ctrl := a.openFlow(ctx, fl, email)

		v := a.verificationPage(fl, ctrl.Snapshot())
		if v.Message == nil {
			v.Message = a.takeFlash(ctx)
		}
		return response.Templ(views.VerificationView(a.site, v))
	}
}

// enterCode loads posted digits into ctrl. A single value longer than one
// character is treated as a paste.
func enterCode(ctrl *verification.Controller, digits []string) {
	if len(digits) == 1 && len(strings.TrimSpace(digits[0])) > 1 {
		if !ctrl.Paste(digits[0]) {
			ctrl.SetCode("")
		}
		return
	}
	ctrl.SetCode("")
	for i, d := range digits {
		if i >= verification.CodeLength {
			break
		}
		ctrl.Input(i, strings.TrimSpace(d))
	}
}

func (a *App) verify(fl flow) handler.HandlerFunc[*Context] {
	return func(ctx *Context) handler.Response {
		r := ctx.Request()
		if err := parseForm(r); err != nil {
			return response.Error(err)
		}
		email := sanitizer.Email(r.PostForm.Get("email"))
		if !a.validEmail(email) {
			return response.RedirectSeeOther(fl.fallback)
		}

		ctrl := a.openFlow(ctx, fl, email)
		enterCode(ctrl, r.PostForm["code"])

		_, err := ctrl.Submit(ctx)
		switch {
		case err == nil:
		case errors.Is(err, verification.ErrRequestInFlight):
			return a.renderVerification(fl, ctrl, http.StatusConflict)
		default:
			return a.renderVerification(fl, ctrl, http.StatusUnprocessableEntity)
		}

		page := a.renderVerification(fl, ctrl, http.StatusOK)
		if fl == resetFlow {
			sess := ctx.Session()
			sess.SetData(SessionData{ResetEmail: email})
			ctx.SetSession(sess)
			return response.Navigate(withEmail(newPasswordScreen.path, email), a.cfg.Verification.NavigationDelay, page)
		}
		return response.Navigate(loginScreen.path, a.cfg.Navigation.AccountVerified, page)
	}
}

// verificationState serves the polled panel. Polling stops once there is
// no flow left to watch.
func (a *App) verificationState(ctx *Context) handler.Response {
	fl, ok := flowByName(ctx.Param("flow"))
	if !ok {
		return response.Error(response.ErrNotFound)
	}
	ctrl, ok := a.flows.Get(ctx.SessionKey(), fl.name)
	if !ok {
		return response.Status(statusStopPolling)
	}
	return response.Templ(views.VerificationPanel(a.verificationPage(fl, ctrl.Snapshot())))
}

func (a *App) resend(ctx *Context) handler.Response {
	fl, ok := flowByName(ctx.Param("flow"))
	if !ok {
		return response.Error(response.ErrNotFound)
	}
	ctrl, ok := a.flows.Get(ctx.SessionKey(), fl.name)
	if !ok {
		return response.Status(statusStopPolling)
	}

	if _, err := ctrl.Resend(ctx); err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, verification.ErrRequestInFlight) {
			status = http.StatusConflict
		}
		return response.TemplWithStatus(views.VerificationPanel(a.verificationPage(fl, ctrl.Snapshot())), status)
	}
	return response.Templ(views.Resent(a.verificationPage(fl, ctrl.Snapshot())))
}

func (a *App) renderVerification(fl flow, ctrl *verification.Controller, status int) handler.Response {
	return response.TemplWithStatus(views.VerificationView(a.site, a.verificationPage(fl, ctrl.Snapshot())), status)
}

func (a *App) verificationPage(fl flow, s verification.Snapshot) views.Verification {
	v := views.Verification{
		Title:     fl.title,
		Action:    fl.path,
		StateURL:  "/verification/" + fl.name + "/state",
		ResendURL: "/verification/" + fl.name + "/resend",
		Email:     s.Email,
		Slots:     s.Slots[:],
		Focus:     s.Focus,
		Countdown: s.Countdown,
		State:     s.State.String(),
		Polling:   s.State != verification.Verified,
		CanSubmit: s.CanSubmit,
		CanResend: s.CanResend,
		Links:     []views.Link{{Href: fl.fallback, Text: "Use a different email"}},
	}
	if s.HasMessage {
		v.Message = &views.Banner{
			Success: s.Message.Success,
			Message: s.Message.Text,
			TTL:     a.cfg.Verification.MessageTTL,
		}
	}
	return v
}
