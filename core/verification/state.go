package verification

// State is the controller's position in the verification flow.
type State int

const (
	Entering State = iota
	Submitting
	Verified
	Expired
	ResendInProgress
)

func (s State) String() string {
	switch s {
	case Entering:
		return "entering"
	case Submitting:
		return "submitting"
	case Verified:
		return "verified"
	case Expired:
		return "expired"
	case ResendInProgress:
		return "resend_in_progress"
	default:
		return "unknown"
	}
}

// InFlight reports whether a request is outstanding in this state.
func (s State) InFlight() bool {
	return s == Submitting || s == ResendInProgress
}

// CanSubmit reports whether the verify action is enabled.
func (s State) CanSubmit() bool {
	return s == Entering
}

// CanResend reports whether the resend action is enabled.
func (s State) CanResend() bool {
	return s == Entering || s == Expired
}
