// Package router adapts gorilla/mux to typed handlers.
//
// Handlers receive a handler.Context and return a handler.Response; errors
// returned while rendering are passed to the router's error handler, and
// panics are recovered into a PanicError.
//
//	r := router.New[*router.Context]()
//	r.Use(middleware.RequestID[*router.Context]())
//	r.Get("/validate/{profile}", validateField)
//	r.With(limiter).Post("/verification/{flow}/resend", resend)
//
//	http.ListenAndServe(":8080", r)
//
// Path variables use gorilla/mux syntax and are read with ctx.Param.
package router
