package authscreens

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/authscreens/app/authscreens/views"
	"github.com/dmitrymomot/authscreens/core/form"
	"github.com/dmitrymomot/authscreens/core/handler"
	"github.com/dmitrymomot/authscreens/core/logger"
	"github.com/dmitrymomot/authscreens/core/response"
	"github.com/dmitrymomot/authscreens/core/sanitizer"
	"github.com/dmitrymomot/authscreens/integration/backend"
)

// screen describes one form page.
type screen struct {
	profile string
	path    string
	title   string
	submit  string
	links   []views.Link
}

var (
	signupScreen = screen{
		profile: form.ProfileSignup,
		path:    "/signup",
		title:   "Sign Up",
		submit:  "Sign Up",
		links:   []views.Link{{Href: "/signin", Text: "Already have an account? Sign in"}},
	}
	registerScreen = screen{
		profile: form.ProfileRegister,
		path:    "/register",
		title:   "Register",
		submit:  "Register",
		links:   []views.Link{{Href: "/login", Text: "Already registered? Log in"}},
	}
	loginScreen = screen{
		profile: form.ProfileLogin,
		path:    "/login",
		title:   "Login",
		submit:  "Login",
		links: []views.Link{
			{Href: "/forgot-password", Text: "Forgot Password?"},
			{Href: "/register", Text: "Create an account"},
		},
	}
	signinScreen = screen{
		profile: form.ProfileSignin,
		path:    "/signin",
		title:   "Sign In",
		submit:  "Sign In",
		links:   []views.Link{{Href: "/signup", Text: "Don't have an account? Sign up"}},
	}
	forgotPasswordScreen = screen{
		profile: form.ProfileForgotPassword,
		path:    "/forgot-password",
		title:   "Forgot Password",
		submit:  "Send Code",
		links:   []views.Link{{Href: "/login", Text: "Back to login"}},
	}
	newPasswordScreen = screen{
		profile: form.ProfileNewPassword,
		path:    "/new-password",
		title:   "Set New Password",
		submit:  "Update Password",
		links:   []views.Link{{Href: "/login", Text: "Back to login"}},
	}
)

// User-facing messages of the form screens.
const (
	SignupSuccessMessage      = "Signup successful!"
	RegisterSuccessMessage    = "Registration successful! Check your email for a verification code."
	LoginSuccessMessage       = "Login successful! Redirecting..."
	SigninSuccessMessage      = "Login successful!"
	NotVerifiedMessage        = "Your account is not verified. Please check your email."
	PasswordUpdatedMessage    = "Password updated. Please log in."
	LoggedOutMessage          = "You have been logged out."
	ForgotPasswordSentMessage = "A reset code has been sent to your email."
)

func (a *App) newForm(s screen) *form.Form {
	return form.New(a.profiles[s.profile], form.WithClock(a.clock))
}

// formPage snapshots f for rendering.
func (a *App) formPage(s screen, f *form.Form, hidden ...views.Hidden) views.FormPage {
	prof := f.Profile()
	errs := f.VisibleErrors()

	p := views.FormPage{
		Title:  s.title,
		Action: s.path,
		Submit: s.submit,
		Hidden: hidden,
		Live:   views.Live{URL: "/validate/" + s.profile},
		Links:  s.links,
	}
	if prof.Timing == form.DebouncedLive {
		p.Live.Debounce = prof.Debounce
	}
	for _, ff := range f.Fields() {
		p.Fields = append(p.Fields, views.Field{
			Name:         ff.Name,
			Type:         inputType(ff.Name),
			Value:        ff.Value,
			Error:        errs.Get(ff.Name),
			Autocomplete: autocomplete(ff.Name, s.profile),
		})
	}
	if msg := errs.Get(form.FieldForm); msg != "" {
		p.Errors = []string{msg}
	}
	if b, ok := f.Banner(); ok {
		p.Banner = &views.Banner{Success: b.Kind == form.BannerSuccess, Message: b.Message, TTL: prof.BannerTTL}
	}
	return p
}

func (a *App) renderForm(p views.FormPage, status int) handler.Response {
	return response.TemplWithStatus(views.FormView(a.site, p), status)
}

// showForm renders an empty form with any banner carried over a redirect.
func (a *App) showForm(s screen) handler.HandlerFunc[*Context] {
	return func(ctx *Context) handler.Response {
		f := a.newForm(s)
		defer f.Close()

		p := a.formPage(s, f)
		p.Banner = a.takeFlash(ctx)
		return a.renderForm(p, http.StatusOK)
	}
}

// submitted loads the posted body into a fresh form and validates it.
// The caller closes the form.
func (a *App) submitted(ctx *Context, s screen) (*form.Form, form.Values, form.Errors, error) {
	r := ctx.Request()
	if err := parseForm(r); err != nil {
		return nil, nil, nil, err
	}
	f := a.newForm(s)
	f.Fill(postedValues(r, f.Validator().Fields()))
	values, errs := f.Submit()
	return f, values, errs, nil
}

// rejected shows a failed backend call on f and returns the status to
// render with.
func (a *App) rejected(ctx *Context, s screen, f *form.Form, err error) int {
	var rej *backend.Rejection
	if errors.As(err, &rej) && rej.Empty() {
		a.log.WarnContext(ctx, "backend rejected request without a message",
			logger.Component("screens"),
			logger.Key("profile", s.profile),
			logger.Key("status", rej.Status),
		)
		if rej.Status >= http.StatusInternalServerError {
			f.Fail(backend.NetworkErrorMessage)
			return http.StatusBadGateway
		}
		f.Fail(backend.RejectedMessage)
		return http.StatusUnprocessableEntity
	}
	if rej != nil {
		prof := f.Profile()
		errs := form.MapBackendErrors(rej.All(), prof.ErrorRoutes).
			Merge(form.MergeFieldErrors(rej.Fields, f.Validator().Fields()...))
		f.ApplyBackendErrors(errs)
		return http.StatusUnprocessableEntity
	}

	a.log.WarnContext(ctx, "backend call failed",
		logger.Component("screens"),
		logger.Key("profile", s.profile),
		logger.Error(err),
	)
	f.Fail(backend.NetworkErrorMessage)
	return http.StatusBadGateway
}

func (a *App) signup(ctx *Context) handler.Response {
	f, values, errs, err := a.submitted(ctx, signupScreen)
	if err != nil {
		return response.Error(err)
	}
	defer f.Close()
	if errs.Any() {
		return a.renderForm(a.formPage(signupScreen, f), http.StatusUnprocessableEntity)
	}

	_, err = a.backend.SignUp(ctx, backend.SignUpRequest{
		Name:     values.Get(form.FieldName),
		Email:    values.Get(form.FieldEmail),
		Password: values.Get(form.FieldPassword),
	})
	if err != nil {
		status := a.rejected(ctx, signupScreen, f, err)
		return a.renderForm(a.formPage(signupScreen, f), status)
	}

	f.Succeed(SignupSuccessMessage)
	f.Reset()
	return a.renderForm(a.formPage(signupScreen, f), http.StatusOK)
}

func (a *App) register(ctx *Context) handler.Response {
	f, values, errs, err := a.submitted(ctx, registerScreen)
	if err != nil {
		return response.Error(err)
	}
	defer f.Close()
	if errs.Any() {
		return a.renderForm(a.formPage(registerScreen, f), http.StatusUnprocessableEntity)
	}

	email := values.Get(form.FieldEmail)
	reply, err := a.backend.Register(ctx, backend.RegisterRequest{
		Username: values.Get(form.FieldUsername),
		Email:    email,
		Password: values.Get(form.FieldPassword),
	})
	if err != nil {
		status := a.rejected(ctx, registerScreen, f, err)
		return a.renderForm(a.formPage(registerScreen, f), status)
	}

	msg := reply.Message
	if msg == "" {
		msg = RegisterSuccessMessage
	}
	f.Succeed(msg)
	f.Reset()
	return response.Navigate(withEmail("/verification", email), a.cfg.Navigation.Registered,
		a.renderForm(a.formPage(registerScreen, f), http.StatusOK))
}

func (a *App) login(ctx *Context) handler.Response {
	f, values, errs, err := a.submitted(ctx, loginScreen)
	if err != nil {
		return response.Error(err)
	}
	defer f.Close()
	if errs.Any() {
		return a.renderForm(a.formPage(loginScreen, f), http.StatusUnprocessableEntity)
	}

	email := values.Get(form.FieldEmail)
	reply, err := a.backend.Login(ctx, backend.Credentials{Email: email, Password: values.Get(form.FieldPassword)})
	if err == nil && reply.Token == "" {
		err = backend.ErrUnexpectedResponse
	}
	switch {
	case backend.IsNotVerified(err):
		f.Fail(NotVerifiedMessage)
		return response.Navigate(withEmail("/verification", email), a.cfg.Navigation.NotVerified,
			a.renderForm(a.formPage(loginScreen, f), http.StatusUnprocessableEntity))
	case err != nil:
		status := a.rejected(ctx, loginScreen, f, err)
		return a.renderForm(a.formPage(loginScreen, f), status)
	}

	sess, err := a.transport.Authenticate(ctx, ctx.Session(), reply.Token, email)
	if err != nil {
		return response.Error(err)
	}
	ctx.SetSession(sess)
	if reply.User != nil {
		a.users.Set(userKey(reply.Token), *reply.User)
	}
	a.log.InfoContext(ctx, "user logged in", logger.Component("screens"), logger.SessionID(sess.ID.String()))

	f.Succeed(LoginSuccessMessage)
	f.Reset()
	return response.Navigate("/dashboard", a.cfg.Navigation.LoggedIn,
		a.renderForm(a.formPage(loginScreen, f), http.StatusOK))
}

// signin checks credentials without starting a session.
func (a *App) signin(ctx *Context) handler.Response {
	f, values, errs, err := a.submitted(ctx, signinScreen)
	if err != nil {
		return response.Error(err)
	}
	defer f.Close()
	if errs.Any() {
		return a.renderForm(a.formPage(signinScreen, f), http.StatusUnprocessableEntity)
	}

	_, err = a.backend.SignIn(ctx, backend.Credentials{
		Email:    values.Get(form.FieldEmail),
		Password: values.Get(form.FieldPassword),
	})
	if err != nil {
		status := a.rejected(ctx, signinScreen, f, err)
		return a.renderForm(a.formPage(signinScreen, f), status)
	}

	f.Succeed(SigninSuccessMessage)
	f.Reset()
	return a.renderForm(a.formPage(signinScreen, f), http.StatusOK)
}

func (a *App) forgotPassword(ctx *Context) handler.Response {
	f, values, errs, err := a.submitted(ctx, forgotPasswordScreen)
	if err != nil {
		return response.Error(err)
	}
	defer f.Close()
	if errs.Any() {
		return a.renderForm(a.formPage(forgotPasswordScreen, f), http.StatusUnprocessableEntity)
	}

	email := values.Get(form.FieldEmail)
	msg, err := a.backend.ForgotPassword(ctx, email)
	if err != nil {
		status := a.rejected(ctx, forgotPasswordScreen, f, err)
		return a.renderForm(a.formPage(forgotPasswordScreen, f), status)
	}
	if msg == "" {
		msg = ForgotPasswordSentMessage
	}
	a.flash(ctx, true, msg)
	return response.RedirectSeeOther(withEmail("/verify-code", email))
}

// resetEmail returns the address whose reset code this session verified,
// provided it matches the requested one.
func resetEmail(ctx *Context, email string) (string, bool) {
	verified := ctx.Session().Data.ResetEmail
	return verified, verified != "" && verified == email
}

func (a *App) showNewPassword(ctx *Context) handler.Response {
	email, ok := resetEmail(ctx, sanitizer.Email(ctx.Request().URL.Query().Get("email")))
	if !ok {
		return response.Redirect(forgotPasswordScreen.path)
	}

	f := a.newForm(newPasswordScreen)
	defer f.Close()
	return a.renderForm(a.formPage(newPasswordScreen, f, views.Hidden{Name: form.FieldEmail, Value: email}), http.StatusOK)
}

func (a *App) newPassword(ctx *Context) handler.Response {
	f, values, errs, err := a.submitted(ctx, newPasswordScreen)
	if err != nil {
		return response.Error(err)
	}
	defer f.Close()

	email, ok := resetEmail(ctx, sanitizer.Email(ctx.Request().PostForm.Get(form.FieldEmail)))
	if !ok {
		return response.RedirectSeeOther(forgotPasswordScreen.path)
	}
	hidden := views.Hidden{Name: form.FieldEmail, Value: email}
	if errs.Any() {
		return a.renderForm(a.formPage(newPasswordScreen, f, hidden), http.StatusUnprocessableEntity)
	}

	if _, err := a.backend.ResetPassword(ctx, email, values.Get(form.FieldPassword)); err != nil {
		status := a.rejected(ctx, newPasswordScreen, f, err)
		return a.renderForm(a.formPage(newPasswordScreen, f, hidden), status)
	}

	sess := ctx.Session()
	sess.SetData(SessionData{})
	ctx.SetSession(sess)
	a.flows.Remove(ctx.SessionKey(), resetFlow.name)

	a.flash(ctx, true, PasswordUpdatedMessage)
	return response.RedirectSeeOther(loginScreen.path)
}

// validate answers live validation requests with out-of-band field errors.
// The triggering field and every non-empty field count as touched.
func (a *App) validate(ctx *Context) handler.Response {
	v, ok := a.validators[ctx.Param("profile")]
	if !ok {
		return response.Error(response.ErrNotFound)
	}
	r := ctx.Request()
	if err := parseForm(r); err != nil {
		return response.Error(err)
	}

	values := postedValues(r, v.Fields())
	trigger := r.Header.Get(response.HeaderHXTriggerName)

	var fields []views.Field
	for _, name := range v.Fields() {
		value := values[name]
		if name != trigger && value == "" {
			continue
		}
		fields = append(fields, views.Field{Name: name, Error: v.Validate(name, value, values)})
	}
	return response.Templ(views.FieldErrors(fields))
}

func (a *App) home(ctx *Context) handler.Response {
	return response.Templ(views.Home(a.site, a.takeFlash(ctx)))
}
