package core

import "time"

// UserAttributes holds the identity attributes the hosted provider reports
// for a verified proof token.
type UserAttributes struct {
	Issuer        string // Stable per-user identifier
	PublicAddress string // Wallet address managed by the provider; may be empty
	Email         string // May be empty for some login methods
}

// SessionCredential is a signed, self-contained session asserting a
// principal's identity and an absolute expiry. There is no server-side record
// of it; the cookie the client holds is the only copy. A credential that was
// issued and not yet expired stays verifiable even after upstream revocation,
// which is the documented limitation of stateless signed sessions.
type SessionCredential struct {
	ID            string    // Unique credential identifier (token JTI)
	Issuer        string    // Stable per-user identifier; sole revocation key
	PublicAddress string    // Secondary identifier, may be empty
	Email         string    // May be empty depending on login method
	IssuedAt      time.Time // When this credential was signed
	ExpiresAt     time.Time // Absolute expiry; advanced on every refresh
}

// Expired reports whether the credential's expiry has passed at t.
func (c *SessionCredential) Expired(t time.Time) bool {
	return !c.ExpiresAt.After(t)
}
