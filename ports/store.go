package ports

import (
	"context"
	"time"
)

// Store is the issuer denylist backing strict revocation mode. Entries expire
// with the residual lifetime of the credential being revoked, after which the
// natural expiry takes over.
type Store interface {
	DenyIssuer(ctx context.Context, issuer string, ttl time.Duration) error
	IsIssuerDenied(ctx context.Context, issuer string) (bool, error)
}
