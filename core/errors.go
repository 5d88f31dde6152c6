package core

import "errors"

var (
	ErrEmptyProof          = errors.New("proof token is empty")
	ErrProofInvalid        = errors.New("proof token is invalid or expired")
	ErrProviderUnreachable = errors.New("authentication provider unreachable")
	ErrIssuerMissing       = errors.New("provider reported no issuer")
	ErrInvalidToken        = errors.New("invalid session token")
	ErrRevocationFailed    = errors.New("upstream revocation failed")
	ErrUnknownLoginMethod  = errors.New("unknown login method")
	ErrLoginFailed         = errors.New("login attempt rejected by provider")
)
