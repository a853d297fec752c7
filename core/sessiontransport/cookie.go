package sessiontransport

import (
	"errors"
	"fmt"

	"github.com/dmitrymomot/authscreens/core/cookie"
	"github.com/dmitrymomot/authscreens/core/handler"
	"github.com/dmitrymomot/authscreens/core/session"
	"github.com/dmitrymomot/authscreens/pkg/clientip"
)

// Cookie carries Session.Token in a signed cookie.
type Cookie[Data any] struct {
	manager   *session.Manager[Data]
	cookieMgr *cookie.Manager
	name      string
}

// NewCookie creates a cookie-based session transport.
func NewCookie[Data any](mgr *session.Manager[Data], cookieMgr *cookie.Manager, name string) *Cookie[Data] {
	return &Cookie[Data]{
		manager:   mgr,
		cookieMgr: cookieMgr,
		name:      name,
	}
}

// Load returns the session referenced by the request cookie.
// A missing, forged or expired cookie yields a fresh anonymous session.
func (c *Cookie[Data]) Load(ctx handler.Context) (session.Session[Data], error) {
	token, err := c.token(ctx)
	if err != nil {
		return c.anonymous(ctx)
	}

	sess, err := c.manager.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) || errors.Is(err, session.ErrExpired) {
			return c.anonymous(ctx)
		}
		return session.Session[Data]{}, err
	}
	return sess, nil
}

// Store persists the session and keeps the cookie in sync with its token.
// A deleted session clears the cookie.
func (c *Cookie[Data]) Store(ctx handler.Context, sess session.Session[Data]) error {
	modified := sess.IsModified()

	if err := c.manager.Store(ctx, sess); err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			c.cookieMgr.Delete(ctx.ResponseWriter(), c.name)
			return nil
		}
		return err
	}

	current, _ := c.token(ctx)
	if modified || current != sess.Token {
		return c.save(ctx, sess)
	}
	return nil
}

// Authenticate signs the current session in with the backend token and
// writes the rotated session token to the cookie.
func (c *Cookie[Data]) Authenticate(ctx handler.Context, sess session.Session[Data], authToken, email string) (session.Session[Data], error) {
	authSess, err := c.manager.Authenticate(ctx, sess, authToken, email)
	if err != nil {
		return session.Session[Data]{}, err
	}
	if err := c.save(ctx, authSess); err != nil {
		return session.Session[Data]{}, err
	}
	return authSess, nil
}

// Logout removes the session and replaces the cookie with a new anonymous one.
func (c *Cookie[Data]) Logout(ctx handler.Context, sess session.Session[Data]) (session.Session[Data], error) {
	anon, err := c.manager.Logout(ctx, sess)
	if err != nil {
		return session.Session[Data]{}, err
	}
	if err := c.manager.Store(ctx, anon); err != nil {
		return session.Session[Data]{}, err
	}
	if err := c.save(ctx, anon); err != nil {
		return session.Session[Data]{}, err
	}
	return anon, nil
}

// Delete removes the session and its cookie.
func (c *Cookie[Data]) Delete(ctx handler.Context, sess session.Session[Data]) error {
	if err := c.manager.Delete(ctx, sess.ID); err != nil {
		return err
	}
	c.cookieMgr.Delete(ctx.ResponseWriter(), c.name)
	return nil
}

func (c *Cookie[Data]) token(ctx handler.Context) (string, error) {
	token, err := c.cookieMgr.GetSigned(ctx.Request(), c.name)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

func (c *Cookie[Data]) anonymous(ctx handler.Context) (session.Session[Data], error) {
	r := ctx.Request()
	return c.manager.New(ctx, session.NewSessionParams{
		IP:        clientip.GetIP(r),
		UserAgent: r.UserAgent(),
	})
}

func (c *Cookie[Data]) save(ctx handler.Context, sess session.Session[Data]) error {
	maxAge := int(c.manager.TTL().Seconds())
	if err := c.cookieMgr.SetSigned(ctx.ResponseWriter(), c.name, sess.Token, cookie.WithMaxAge(maxAge)); err != nil {
		return fmt.Errorf("set session cookie: %w", err)
	}
	return nil
}
