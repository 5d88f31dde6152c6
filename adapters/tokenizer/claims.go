package tokenizer

import "github.com/golang-jwt/jwt/v5"

// SessionClaims combines standard claims with the provider-reported identity.
// The subject carries the issuer identifier.
type SessionClaims struct {
	jwt.RegisteredClaims
	PublicAddress string `json:"public_address,omitempty"`
	Email         string `json:"email,omitempty"`
}
