// Package verification drives entry and submission of six-digit one-time
// codes.
//
// Code holds the six input slots together with the focused slot and
// implements the keyboard behavior of the code input: typing a digit moves
// focus forward, backspace on an empty slot moves it back, and pasting up to
// six digits fills the slots from the left.
//
// Countdown counts whole seconds down to zero. A Controller ticks it once per
// second and moves from Entering to Expired when it runs out:
//
//	Entering ──Submit──▶ Submitting ──ok──▶ Verified
//	    ▲                     │
//	    └───────error─────────┘
//	Entering/Expired ──Resend──▶ ResendInProgress ──ok──▶ Entering (fresh code, full countdown)
//	                                   └──error──▶ previous state
//
// Submit and Resend call a Verifier. Only one request may be outstanding per
// controller; overlapping calls fail with ErrRequestInFlight. Close cancels
// the countdown and any pending navigation, and results of requests that
// finish after Close are dropped.
package verification
