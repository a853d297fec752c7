package verification

import "errors"

var (
	ErrIncompleteCode  = errors.New("verification code is incomplete")
	ErrCodeExpired     = errors.New("verification code has expired")
	ErrRequestInFlight = errors.New("verification request already in progress")
	ErrAlreadyVerified = errors.New("verification code already verified")
	ErrClosed          = errors.New("verification controller is closed")
)

// Messages shown to the user.
const (
	IncompleteCodeMessage  = "Please enter the full 6-digit code"
	ExpiredCodeMessage     = "The code has expired. Please request a new one."
	DefaultVerifiedMessage = "Code verified successfully!"
	DefaultResentMessage   = "A new code has been sent to your email."
	DefaultVerifyFailure   = "Invalid code"
	DefaultResendFailure   = "Could not resend the code. Please try again."
)

// publicMessager is implemented by errors that carry a message safe to show.
type publicMessager interface {
	PublicMessage() string
}

// displayMessage picks the user-facing text for err.
func displayMessage(err error, fallback string) string {
	var pm publicMessager
	if errors.As(err, &pm) {
		if msg := pm.PublicMessage(); msg != "" {
			return msg
		}
	}
	return fallback
}
