// Package form implements field validation and per-form input state for the
// authentication screens.
//
// A Validator holds an ordered RuleSet per field. Validate returns the message
// of the first failing rule, or an empty string when the value is valid:
//
//	v := form.SignupProfile().Validator()
//	msg := v.Validate(form.FieldPassword, "abc", nil)
//	// msg == "Password must be at least 8 characters."
//
// The page variants differ only in configuration. A Profile describes the
// username, email, password and confirmation policies, the validation timing
// and how backend error messages are routed to fields. Profiles are plain
// data and can be loaded from YAML with LoadProfiles.
//
// # Form state
//
// Form tracks value, touched flag and error per field and applies the
// profile's timing:
//
//   - OnBlurThenLive validates a field when it loses focus and, once touched,
//     on every change.
//   - DebouncedLive marks a field touched on change and validates all touched
//     fields in one batch after the debounce delay. A later change cancels the
//     pending batch.
//
// Errors returned by the backend are merged into the same per-field mapping
// with ApplyBackendErrors and clear themselves after the profile's banner TTL.
// Messages that match no field are kept under FieldForm.
//
// Close cancels every pending timer; the form must not be used afterwards.
package form
