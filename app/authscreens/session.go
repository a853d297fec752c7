package authscreens

// SessionData is the per-browser state kept between screens.
type SessionData struct {
	// ResetEmail is set once a password reset code has been verified and
	// unlocks the new password screen for that address.
	ResetEmail string `json:"reset_email,omitempty"`
}
