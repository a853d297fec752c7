// Package validator provides small, composable validation rules for raw
// string input.
//
// A Rule defers its check until evaluated and carries the error to report
// when the check fails. Rules are evaluated either all at once with Apply or
// in order with First, which stops at the first failure:
//
//	if verr, failed := validator.First(
//		validator.Required("email", email).WithMessage("Email is required."),
//		validator.ValidEmail("email", email).WithMessage("Email is not valid."),
//	); failed {
//		fmt.Println(verr.Message)
//	}
//
// Every ValidationError carries a TranslationKey and TranslationValues so
// messages can be localized by the caller. WithMessage overrides the default
// English message when a form needs its own wording.
//
// Character-class rules (HasUpper, HasLower, HasDigit, HasSymbol) work on
// ASCII classes, matching the password policies used by the authentication
// screens.
package validator
