package backend

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func textPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// sanitize strips markup and returns plain text. Views escape on output, so
// the entities bluemonday adds are decoded again.
func sanitize(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(textPolicy().Sanitize(s)))
}

func sanitizeReply(r *Reply) {
	r.Error = sanitize(r.Error)
	r.Message = sanitize(r.Message)
	for i, msg := range r.Errors {
		r.Errors[i] = sanitize(msg)
	}
	for k, msg := range r.Fields {
		r.Fields[k] = sanitize(msg)
	}
	if r.User != nil {
		r.User.Username = sanitize(r.User.Username)
		r.User.Email = sanitize(r.User.Email)
		r.User.Role = sanitize(r.User.Role)
	}
}
