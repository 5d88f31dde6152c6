package ports

import "github.com/passgate/passgate/core"

// Tokenizer converts between session credentials and their signed cookie
// representation.
type Tokenizer interface {
	// CredentialToToken signs a credential into its cookie value.
	CredentialToToken(cred *core.SessionCredential) (string, error)

	// TokenToCredential verifies a cookie value and decodes the credential.
	// Any signature, structure, or expiry failure is an error.
	TokenToCredential(token string) (*core.SessionCredential, error)
}
