package form

import (
	"slices"
	"strings"
)

// MapBackendErrors routes free-text backend messages to fields by
// case-insensitive keyword match. The first route with a matching keyword
// wins; messages matching no route land in FieldForm. When several messages
// reach the same field the last one is kept.
func MapBackendErrors(messages []string, routes []ErrorRoute) Errors {
	errs := make(Errors)
	for _, msg := range messages {
		if msg == "" {
			continue
		}
		errs[routeFor(msg, routes)] = msg
	}
	return errs
}

func routeFor(msg string, routes []ErrorRoute) string {
	lower := strings.ToLower(msg)
	for _, route := range routes {
		for _, kw := range route.Keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				return route.Field
			}
		}
	}
	return FieldForm
}

// MergeFieldErrors accepts a field-keyed error map from the backend.
// Keys outside known are moved to FieldForm. An existing FieldForm message
// is kept over a moved one.
func MergeFieldErrors(fields map[string]string, known ...string) Errors {
	errs := make(Errors, len(fields))
	var stray []string
	for field, msg := range fields {
		if msg == "" {
			continue
		}
		if field == FieldForm || slices.Contains(known, field) {
			errs[field] = msg
			continue
		}
		stray = append(stray, msg)
	}
	if !errs.Has(FieldForm) && len(stray) > 0 {
		// map iteration order is random; pick deterministically
		errs[FieldForm] = slices.Min(stray)
	}
	return errs
}
