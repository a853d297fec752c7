package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/authscreens/core/handler"
	"github.com/dmitrymomot/authscreens/core/logger"
)

type statusCode interface {
	StatusCode() int
}

// AsHTTPError converts any error to an HTTPError. Errors exposing a
// StatusCode method keep their status; everything else is a 500.
func AsHTTPError(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	status := http.StatusInternalServerError
	var sc statusCode
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}

	base, ok := httpErrorsByStatus[status]
	if !ok {
		base = ErrInternalServerError
	}
	return base.WithError(err)
}

// ErrorHandler renders errors as plain text.
func ErrorHandler[C handler.Context](ctx C, err error) {
	httpErr := AsHTTPError(err)
	Render(ctx, StringWithStatus(httpErr.Error(), httpErr.Status))
}

// PageErrorHandler renders errors with a templ page and logs server-side failures.
// HTMX requests get a plain text body so the client-side swap stays small.
func PageErrorHandler[C handler.Context](log *slog.Logger, page func(HTTPError) templ.Component) handler.ErrorHandler[C] {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return func(ctx C, err error) {
		httpErr := AsHTTPError(err)
		if httpErr.Status >= http.StatusInternalServerError {
			log.ErrorContext(ctx, "request failed",
				logger.Path(ctx.Request().URL.Path),
				logger.StatusCode(httpErr.Status),
				logger.Error(err),
			)
		}

		var comp templ.Component
		if page != nil && !IsHTMXRequest(ctx.Request()) {
			comp = page(httpErr)
		}
		if comp == nil {
			Render(ctx, StringWithStatus(httpErr.Error(), httpErr.Status))
			return
		}
		Render(ctx, TemplWithStatus(comp, httpErr.Status))
	}
}
