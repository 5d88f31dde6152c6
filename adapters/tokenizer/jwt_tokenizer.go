package tokenizer

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/passgate/passgate/core"
	"github.com/passgate/passgate/ports"
)

// AudienceSession marks tokens minted for the session cookie.
const AudienceSession = "session:cookie"

// JWTTokenizer implements the Tokenizer interface using HS256 JWTs signed
// with the server secret. The same secret verifies, so a credential is valid
// iff this process (or one sharing the secret) minted it.
type JWTTokenizer struct {
	secret []byte
	now    func() time.Time
}

// NewJWTTokenizer creates a new JWT tokenizer.
func NewJWTTokenizer(secret []byte) *JWTTokenizer {
	return &JWTTokenizer{secret: secret, now: time.Now}
}

// WithTimeFunc overrides the time source used for expiry validation.
// Intended for tests.
func (j *JWTTokenizer) WithTimeFunc(now func() time.Time) *JWTTokenizer {
	j.now = now
	return j
}

var _ ports.Tokenizer = (*JWTTokenizer)(nil)

// CredentialToToken converts a SessionCredential to a signed JWT string.
func (j *JWTTokenizer) CredentialToToken(cred *core.SessionCredential) (string, error) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   cred.Issuer,
			ID:        cred.ID,
			ExpiresAt: jwt.NewNumericDate(cred.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(cred.IssuedAt),
			Audience:  jwt.ClaimStrings{AudienceSession},
		},
		PublicAddress: cred.PublicAddress,
		Email:         cred.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signedToken, nil
}

// TokenToCredential verifies a JWT string and decodes the SessionCredential.
func (j *JWTTokenizer) TokenToCredential(tokenStr string) (*core.SessionCredential, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	}, jwt.WithAudience(AudienceSession), jwt.WithTimeFunc(j.now))

	if err != nil {
		return nil, fmt.Errorf("failed to parse session token: %w", err)
	}

	if !token.Valid {
		return nil, core.ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, core.ErrInvalidToken
	}

	cred := &core.SessionCredential{
		ID:            claims.ID,
		Issuer:        claims.Subject,
		PublicAddress: claims.PublicAddress,
		Email:         claims.Email,
	}
	if claims.IssuedAt != nil {
		cred.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		cred.ExpiresAt = claims.ExpiresAt.Time
	}

	if cred.Issuer == "" {
		return nil, core.ErrInvalidToken
	}

	return cred, nil
}
