package authscreens

import (
	"context"
	"errors"

	"github.com/dmitrymomot/authscreens/app/authscreens/views"
	"github.com/dmitrymomot/authscreens/core/handler"
	"github.com/dmitrymomot/authscreens/core/logger"
	"github.com/dmitrymomot/authscreens/core/response"
	"github.com/dmitrymomot/authscreens/integration/backend"
)

// dashboard shows the signed-in account. A token the backend no longer
// accepts ends the session.
func (a *App) dashboard(ctx *Context) handler.Response {
	sess := ctx.Session()
	key := userKey(sess.AuthToken)

	user, err := a.users.GetOrLoad(ctx, key, func(ctx context.Context) (backend.User, error) {
		u, err := a.backend.Me(ctx, sess.AuthToken)
		if err != nil {
			return backend.User{}, err
		}
		return *u, nil
	})
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		a.users.Remove(key)
		anon, err := a.transport.Logout(ctx, sess)
		if err != nil {
			return response.Error(err)
		}
		ctx.SetSession(anon)
		return response.Redirect(loginScreen.path)
	case err != nil:
		a.log.WarnContext(ctx, "failed to load account", logger.Component("dashboard"), logger.Error(err))
		return response.Error(response.ErrBadGateway.WithError(err))
	}

	tab := ctx.Request().URL.Query().Get("tab")
	if tab != views.TabProfile {
		tab = views.TabUsers
	}
	return response.Templ(views.DashboardView(a.site, views.Dashboard{
		Account: views.Account{Username: user.Username, Email: user.Email, Role: user.Role},
		Tab:     tab,
		Banner:  a.takeFlash(ctx),
	}))
}

func (a *App) logout(ctx *Context) handler.Response {
	sess := ctx.Session()
	if sess.IsAuthenticated() {
		a.users.Remove(userKey(sess.AuthToken))
		anon, err := a.transport.Logout(ctx, sess)
		if err != nil {
			return response.Error(err)
		}
		ctx.SetSession(anon)
		a.log.InfoContext(ctx, "user logged out", logger.Component("screens"), logger.SessionID(sess.ID.String()))
		a.flash(ctx, true, LoggedOutMessage)
	}
	return response.RedirectSeeOther("/")
}
