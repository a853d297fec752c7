// Package response builds handler.Response values: templ pages, HTMX-aware
// redirects, delayed navigation after a success banner and structured HTTP
// errors.
//
//	return response.Navigate("/dashboard", 1500*time.Millisecond,
//		response.Templ(views.LoginPage(page)))
//
// Errors returned from a response are routed to the router's error handler;
// PageErrorHandler renders them with a templ page.
package response
