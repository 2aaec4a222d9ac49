// Package identity models the external sign-in provider. The interactive
// OAuth popup happens in the browser; the backend only sees the resulting
// ID token, verifies it, and occasionally asks the provider to disable an
// account that an administrator blocked.
package identity

import (
	"context"
	"errors"
)

var (
	// ErrInvalidToken is returned when an ID token fails verification.
	ErrInvalidToken = errors.New("identity: invalid token")
)

// Identity is the verified assertion extracted from a provider ID token.
type Identity struct {
	Subject     string
	Email       string
	DisplayName string
}

// Provider exposes the operations the booking service consumes from the
// external identity provider.
type Provider interface {
	// VerifyIDToken validates a provider-issued ID token and returns the
	// asserted identity.
	VerifyIDToken(ctx context.Context, idToken string) (Identity, error)
	// SetDisabled enables or disables the account at the provider. Callers
	// treat failures as best-effort.
	SetDisabled(ctx context.Context, uid string, disabled bool) error
}
