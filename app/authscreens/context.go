package authscreens

import (
	"net/http"

	"github.com/dmitrymomot/authscreens/core/router"
	"github.com/dmitrymomot/authscreens/core/session"
	"github.com/dmitrymomot/authscreens/middleware"
)

// Context is the request context handed to every handler.
type Context struct {
	*router.Context
}

func newContext(w http.ResponseWriter, r *http.Request, params map[string]string) *Context {
	return &Context{Context: router.NewContext(w, r, params)}
}

// Session returns the browser session loaded by the session middleware.
func (c *Context) Session() session.Session[SessionData] {
	return middleware.MustGetSession[SessionData](c)
}

// SetSession replaces the session; it is persisted after the handler returns.
func (c *Context) SetSession(sess session.Session[SessionData]) {
	middleware.SetSession(c, sess)
}

// SessionKey identifies the browser session in the verification registry.
func (c *Context) SessionKey() string {
	return c.Session().ID.String()
}
