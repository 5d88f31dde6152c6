package ports

import (
	"context"

	"github.com/passgate/passgate/core"
)

// Verifier is the hosted provider's server-side API as consumed by the
// session service. All security-critical work (credential issuance, ceremony
// handling, token verification) happens behind this interface.
type Verifier interface {
	// ValidateProof checks a proof token with the provider. Returns
	// core.ErrProofInvalid for a rejected proof.
	ValidateProof(ctx context.Context, proofToken string) error

	// AttributesByProof fetches the identity attributes associated with a
	// proof token.
	AttributesByProof(ctx context.Context, proofToken string) (core.UserAttributes, error)

	// RevokeAllByIssuer asks the provider to invalidate every outstanding
	// proof for the given issuer.
	RevokeAllByIssuer(ctx context.Context, issuer string) error
}

// Authenticator runs a provider login ceremony and returns the resulting
// proof token. Each method corresponds to one core.LoginMethod.
type Authenticator interface {
	LoginWithEmailLink(ctx context.Context, email string) (string, error)
	LoginWithSocial(ctx context.Context, provider string) (string, error)
	WebAuthnLogin(ctx context.Context, username string) (string, error)
	WebAuthnRegister(ctx context.Context, username string) (string, error)
}
