package backend

// Reply is the JSON body every endpoint answers with.
type Reply struct {
	Error   string            `json:"error,omitempty"`
	Errors  []string          `json:"errors,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	Token   string            `json:"token,omitempty"`
	Message string            `json:"message,omitempty"`
	User    *User             `json:"user,omitempty"`
}

func (r *Reply) failed() bool {
	return r.Error != "" || len(r.Errors) > 0 || len(r.Fields) > 0
}

// User is the account returned by /me.
type User struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// SignUpRequest is the body of the sign-up form.
type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of the registration form.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Credentials is the body of both login forms.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type codeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"newPassword"`
}
