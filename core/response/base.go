package response

import (
	"net/http"

	"github.com/dmitrymomot/authscreens/core/handler"
)

// Render executes resp against the context's writer.
// A rendering error becomes a plain 500 response.
func Render(ctx handler.Context, resp handler.Response) {
	if err := resp(ctx.ResponseWriter(), ctx.Request()); err != nil {
		http.Error(ctx.ResponseWriter(), err.Error(), http.StatusInternalServerError)
	}
}

// String creates a text/plain response with 200 OK status.
func String(content string) handler.Response {
	return StringWithStatus(content, http.StatusOK)
}

// StringWithStatus creates a text/plain response with custom status code.
func StringWithStatus(content string, status int) handler.Response {
	return write("text/plain; charset=utf-8", []byte(content), status)
}

// HTML creates a text/html response from a pre-rendered fragment.
func HTML(content string) handler.Response {
	return write("text/html; charset=utf-8", []byte(content), http.StatusOK)
}

// NoContent creates a 204 response.
func NoContent() handler.Response {
	return Status(http.StatusNoContent)
}

// Status creates a response with only a status code.
func Status(code int) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		w.WriteHeader(code)
		return nil
	}
}

func write(contentType string, body []byte, status int) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		w.Header().Set("Content-Type", contentType)
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		if len(body) == 0 {
			return nil
		}
		_, err := w.Write(body)
		return err
	}
}
