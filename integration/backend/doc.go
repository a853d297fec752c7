// Package backend is the HTTP client for the authentication API behind the
// screens.
//
// Every endpoint takes and returns JSON. Failures come back in one of two
// shapes: a *Rejection when the API answered with an error payload
// ({"error": "..."} or {"errors": ["..."]}), or a *NetworkError when the
// request never got an answer. Both implement PublicMessage so callers can
// show them without leaking transport details:
//
//	reply, err := client.Login(ctx, backend.Credentials{Email: email, Password: pw})
//	switch {
//	case backend.IsNotVerified(err):
//		// redirect to account verification
//	case err != nil:
//		var rej *backend.Rejection
//		if errors.As(err, &rej) {
//			form.ApplyBackendMessages(rej.All()...)
//		}
//	}
//
// Messages from the API are passed through a strict bluemonday policy, so
// markup in them is dropped before display.
//
// AccountVerifier and ResetVerifier adapt the client to the verification
// controller for the two code flows.
package backend
