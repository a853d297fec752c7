package router

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	gmux "github.com/gorilla/mux"

	"github.com/dmitrymomot/authscreens/core/handler"
)

// mux adapts gorilla/mux to typed handlers.
type mux[C handler.Context] struct {
	router       *gmux.Router
	middlewares  []handler.Middleware[C]
	errorHandler handler.ErrorHandler[C]
	newContext   func(http.ResponseWriter, *http.Request, map[string]string) C
	logger       *slog.Logger
	root         *mux[C]
	hasRoutes    bool
}

func newMux[C handler.Context](opts ...Option[C]) *mux[C] {
	m := &mux[C]{
		router:       gmux.NewRouter(),
		errorHandler: defaultErrorHandler[C],
		logger:       slog.New(slog.DiscardHandler),
	}
	m.root = m

	for _, opt := range opts {
		opt(m)
	}

	if m.newContext == nil {
		m.newContext = func(w http.ResponseWriter, r *http.Request, params map[string]string) C {
			var zero C
			if _, ok := any(zero).(*Context); ok {
				return any(NewContext(w, r, params)).(C)
			}
			panic(ErrNoContextFactory)
		}
	}

	m.router.NotFoundHandler = m.fail(ErrNotFound)
	m.router.MethodNotAllowedHandler = m.fail(ErrMethodNotAllowed)

	return m
}

// ServeHTTP implements http.Handler.
func (m *mux[C]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.root.router.ServeHTTP(w, r)
}

func (m *mux[C]) Get(pattern string, h handler.HandlerFunc[C]) {
	m.Method(pattern, h, http.MethodGet)
}

func (m *mux[C]) Post(pattern string, h handler.HandlerFunc[C]) {
	m.Method(pattern, h, http.MethodPost)
}

// Method registers a handler for one or more HTTP methods.
func (m *mux[C]) Method(pattern string, h handler.HandlerFunc[C], methods ...string) {
	if len(pattern) == 0 || pattern[0] != '/' {
		panic(fmt.Errorf("%w: '%s'", ErrInvalidPattern, pattern))
	}
	if len(methods) == 0 {
		panic(fmt.Errorf("%w: no methods provided", ErrInvalidMethod))
	}
	upper := make([]string, len(methods))
	for i, method := range methods {
		upper[i] = strings.ToUpper(method)
	}

	if len(m.middlewares) > 0 && m != m.root {
		h = chain(m.middlewares, h)
	}
	m.root.hasRoutes = true
	m.root.router.Handle(pattern, m.root.serve(h)).Methods(upper...)
}

// Use appends middleware to the router. Root middlewares must be defined before routes.
func (m *mux[C]) Use(middlewares ...handler.Middleware[C]) {
	if m == m.root && m.hasRoutes {
		panic("router: all middlewares must be defined before routes on a mux")
	}
	m.middlewares = append(m.middlewares, middlewares...)
}

// With creates an inline router whose routes get the parent's inline middlewares plus the given ones.
func (m *mux[C]) With(middlewares ...handler.Middleware[C]) Router[C] {
	var inherited []handler.Middleware[C]
	if m != m.root {
		inherited = append(inherited, m.middlewares...)
	}
	return &mux[C]{
		root:        m.root,
		middlewares: append(inherited, middlewares...),
	}
}

// Group creates an inline router for grouping routes.
func (m *mux[C]) Group(fn func(r Router[C])) Router[C] {
	im := m.With()
	if fn != nil {
		fn(im)
	}
	return im
}

// Routes returns all registered routes.
func (m *mux[C]) Routes() []Route {
	var routes []Route
	_ = m.root.router.Walk(func(route *gmux.Route, _ *gmux.Router, _ []*gmux.Route) error {
		tpl, err := route.GetPathTemplate()
		if err != nil {
			return nil
		}
		methods, _ := route.GetMethods()
		for _, method := range methods {
			routes = append(routes, Route{Method: method, Pattern: tpl})
		}
		return nil
	})
	return routes
}

func (m *mux[C]) serve(fn handler.HandlerFunc[C]) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := newResponseWriter(w)
		ctx := m.newContext(ww, r, gmux.Vars(r))

		defer func() {
			if p := recover(); p != nil {
				panicErr := &panicError{value: p, stack: debug.Stack()}
				if ww.Written() {
					m.logger.Error("panic after response written",
						"value", panicErr.value,
						"stack", string(panicErr.stack),
						"path", r.URL.Path,
						"method", r.Method,
						"status", ww.Status(),
					)
					return
				}
				m.errorHandler(ctx, panicErr)
			}
		}()

		h := fn
		if len(m.middlewares) > 0 {
			h = chain(m.middlewares, fn)
		}

		response := h(ctx)
		if response == nil {
			m.errorHandler(ctx, ErrNilResponse)
			return
		}

		// Middlewares may have replaced the request (context values).
		if err := response(ww, ctx.Request()); err != nil {
			m.errorHandler(ctx, err)
		}
	})
}

func (m *mux[C]) fail(err error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.errorHandler(m.newContext(newResponseWriter(w), r, nil), err)
	})
}

// chain builds a single handler from a middleware stack and endpoint.
// The first middleware runs first.
func chain[C handler.Context](middlewares []handler.Middleware[C], endpoint handler.HandlerFunc[C]) handler.HandlerFunc[C] {
	h := endpoint
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
