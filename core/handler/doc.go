// Package handler defines the typed handler contract shared by the router,
// middleware and response packages.
//
// A HandlerFunc receives a request context and returns a Response: a
// function that renders headers and body. Rendering errors flow back to the
// router's ErrorHandler instead of being written inline.
//
//	func showLogin(ctx *router.Context) handler.Response {
//		return response.Templ(views.LoginPage(data))
//	}
//
// Middleware wraps a HandlerFunc and may store values on the context with
// SetValue; they are visible through ctx.Value and the request context.
package handler
