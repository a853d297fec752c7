package backend

import "context"

// AccountVerifier confirms new accounts. It satisfies the verification
// controller's Verifier.
type AccountVerifier struct {
	Client *Client
}

func (v AccountVerifier) Verify(ctx context.Context, email, code string) (string, error) {
	return v.Client.VerifyAccount(ctx, email, code)
}

func (v AccountVerifier) Resend(ctx context.Context, email string) (string, error) {
	return v.Client.ResendCode(ctx, email)
}

// ResetVerifier checks password reset codes.
type ResetVerifier struct {
	Client *Client
}

func (v ResetVerifier) Verify(ctx context.Context, email, code string) (string, error) {
	return v.Client.VerifyResetCode(ctx, email, code)
}

func (v ResetVerifier) Resend(ctx context.Context, email string) (string, error) {
	return v.Client.ResendCode(ctx, email)
}
