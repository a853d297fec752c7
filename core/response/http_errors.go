package response

import "net/http"

// HTTPError represents a structured error response that implements the error interface.
type HTTPError struct {
	Status  int            `json:"-"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// NewHTTPError creates an internal server error with a custom message.
func NewHTTPError(message string) HTTPError {
	return HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_server_error",
		Message: message,
	}
}

func (e HTTPError) Error() string {
	return e.Message
}

// StatusCode lets the router's error handler pick up the status.
func (e HTTPError) StatusCode() int {
	return e.Status
}

// Is matches errors of the same status and code, so errors.Is(err, ErrUnauthorized)
// holds for copies made with WithMessage and friends.
func (e HTTPError) Is(target error) bool {
	t, ok := target.(HTTPError)
	return ok && t.Status == e.Status && t.Code == e.Code
}

// WithMessage returns a copy of the error with a custom message.
func (e HTTPError) WithMessage(message string) HTTPError {
	e.Message = message
	return e
}

// WithDetails returns a copy of the error with additional details.
func (e HTTPError) WithDetails(details map[string]any) HTTPError {
	e.Details = details
	return e
}

// WithError returns a copy of the error with the cause recorded in Details.
func (e HTTPError) WithError(err error) HTTPError {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details["cause"] = err.Error()
	e.Details = details
	return e
}

func statusError(status int, code string) HTTPError {
	return HTTPError{Status: status, Code: code, Message: http.StatusText(status)}
}

// Predefined errors for the statuses the auth screens produce.
var (
	ErrBadRequest          = statusError(http.StatusBadRequest, "bad_request")
	ErrUnauthorized        = statusError(http.StatusUnauthorized, "unauthorized")
	ErrForbidden           = statusError(http.StatusForbidden, "forbidden")
	ErrNotFound            = statusError(http.StatusNotFound, "not_found")
	ErrMethodNotAllowed    = statusError(http.StatusMethodNotAllowed, "method_not_allowed")
	ErrConflict            = statusError(http.StatusConflict, "conflict")
	ErrRequestTooLarge     = statusError(http.StatusRequestEntityTooLarge, "request_entity_too_large")
	ErrUnprocessableEntity = statusError(http.StatusUnprocessableEntity, "unprocessable_entity")
	ErrTooManyRequests     = statusError(http.StatusTooManyRequests, "too_many_requests")
	ErrInternalServerError = statusError(http.StatusInternalServerError, "internal_server_error")
	ErrBadGateway          = statusError(http.StatusBadGateway, "bad_gateway")
	ErrServiceUnavailable  = statusError(http.StatusServiceUnavailable, "service_unavailable")
	ErrGatewayTimeout      = statusError(http.StatusGatewayTimeout, "gateway_timeout")
)

var httpErrorsByStatus = map[int]HTTPError{
	http.StatusBadRequest:            ErrBadRequest,
	http.StatusUnauthorized:          ErrUnauthorized,
	http.StatusForbidden:             ErrForbidden,
	http.StatusNotFound:              ErrNotFound,
	http.StatusMethodNotAllowed:      ErrMethodNotAllowed,
	http.StatusConflict:              ErrConflict,
	http.StatusRequestEntityTooLarge: ErrRequestTooLarge,
	http.StatusUnprocessableEntity:   ErrUnprocessableEntity,
	http.StatusTooManyRequests:       ErrTooManyRequests,
	http.StatusInternalServerError:   ErrInternalServerError,
	http.StatusBadGateway:            ErrBadGateway,
	http.StatusServiceUnavailable:    ErrServiceUnavailable,
	http.StatusGatewayTimeout:        ErrGatewayTimeout,
}
