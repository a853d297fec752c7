package router

import (
	"net/http"

	"github.com/dmitrymomot/authscreens/core/handler"
)

// Router is the routing interface used by the application.
// Patterns follow gorilla/mux syntax: "/validate/{profile}", "/items/{id:[0-9]+}".
type Router[C handler.Context] interface {
	http.Handler
	Routes

	Get(pattern string, h handler.HandlerFunc[C])
	Post(pattern string, h handler.HandlerFunc[C])
	Method(pattern string, h handler.HandlerFunc[C], methods ...string)

	// Use appends middleware applied to every route of the router.
	Use(middlewares ...handler.Middleware[C])
	// With returns an inline router that adds middlewares to routes registered through it.
	With(middlewares ...handler.Middleware[C]) Router[C]
	// Group registers routes on an inline router.
	Group(fn func(r Router[C])) Router[C]
}

// Routes provides route introspection for debugging and startup logs.
type Routes interface {
	Routes() []Route
}

// Route describes a single registered route.
type Route struct {
	Method  string
	Pattern string
}

// New creates a router. Without WithContextFactory the context type must be *Context.
func New[C handler.Context](opts ...Option[C]) Router[C] {
	return newMux(opts...)
}
