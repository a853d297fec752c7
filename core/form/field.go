package form

// Field names used by the authentication forms.
const (
	FieldName            = "name"
	FieldUsername        = "username"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"

	// FieldForm collects errors that belong to no single field.
	FieldForm = "form"
)

// Values maps field names to raw input.
type Values map[string]string

// Get returns the value of field, or "" when it is absent.
func (v Values) Get(field string) string {
	if v == nil {
		return ""
	}
	return v[field]
}

// FormField is the state of one input.
type FormField struct {
	Name    string
	Value   string
	Touched bool
	Error   string
}

// Errors maps field names to at most one message each.
type Errors map[string]string

// Has reports whether field has a non-empty message.
func (e Errors) Has(field string) bool {
	return e[field] != ""
}

// Get returns the message for field.
func (e Errors) Get(field string) string {
	return e[field]
}

// Any reports whether at least one field has a message.
func (e Errors) Any() bool {
	for _, msg := range e {
		if msg != "" {
			return true
		}
	}
	return false
}

// Merge returns a copy of e overlaid with other. Messages in other win.
func (e Errors) Merge(other Errors) Errors {
	out := make(Errors, len(e)+len(other))
	for field, msg := range e {
		if msg != "" {
			out[field] = msg
		}
	}
	for field, msg := range other {
		if msg != "" {
			out[field] = msg
		}
	}
	return out
}

func (e Errors) clone() Errors {
	if e == nil {
		return nil
	}
	return e.Merge(nil)
}
