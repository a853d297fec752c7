package backend

import (
	"errors"
	"net/http"
	"strings"
)

var (
	ErrInvalidConfig      = errors.New("backend: invalid config")
	ErrNetwork            = errors.New("backend: network error")
	ErrUnexpectedResponse = errors.New("backend: unexpected response")
	ErrUnauthorized       = errors.New("backend: unauthorized")
)

// NetworkErrorMessage is shown when the API could not be reached.
const NetworkErrorMessage = "Network error. Please try again."

// RejectedMessage is shown when the API refused a request without saying why.
const RejectedMessage = "Request failed. Please try again."

// Rejection is an error payload returned by the API.
type Rejection struct {
	Status   int
	Message  string
	Messages []string
	Fields   map[string]string
}

func (r *Rejection) Error() string {
	msg := r.PublicMessage()
	if msg == "" {
		msg = http.StatusText(r.Status)
	}
	return "backend: rejected (" + http.StatusText(r.Status) + "): " + msg
}

// PublicMessage returns the first message suitable for display.
func (r *Rejection) PublicMessage() string {
	if r.Message != "" {
		return r.Message
	}
	if len(r.Messages) > 0 {
		return r.Messages[0]
	}
	return ""
}

// All returns the single message followed by the message list.
func (r *Rejection) All() []string {
	out := make([]string, 0, len(r.Messages)+1)
	if r.Message != "" {
		out = append(out, r.Message)
	}
	return append(out, r.Messages...)
}

// Empty reports whether the API gave no message to show.
func (r *Rejection) Empty() bool {
	for _, msg := range r.All() {
		if msg != "" {
			return false
		}
	}
	for _, msg := range r.Fields {
		if msg != "" {
			return false
		}
	}
	return true
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 rejections.
func (r *Rejection) Is(target error) bool {
	return target == ErrUnauthorized && r.Status == http.StatusUnauthorized
}

// NetworkError wraps a transport failure.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return ErrNetwork.Error() + ": " + e.Err.Error()
}

func (e *NetworkError) Unwrap() []error {
	return []error{ErrNetwork, e.Err}
}

// PublicMessage hides transport details.
func (e *NetworkError) PublicMessage() string {
	return NetworkErrorMessage
}

// IsNotVerified reports whether err is the login rejection for an account
// that has not confirmed its email yet.
func IsNotVerified(err error) bool {
	var rej *Rejection
	if !errors.As(err, &rej) {
		return false
	}
	for _, msg := range rej.All() {
		if strings.Contains(strings.ToLower(msg), "not verified") {
			return true
		}
	}
	return false
}
