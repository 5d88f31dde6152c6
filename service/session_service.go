package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/passgate/passgate/core"
	"github.com/passgate/passgate/ports"
)

// DefaultSessionTTL is the sliding expiration window for session credentials.
const DefaultSessionTTL = 7 * 24 * time.Hour

// SessionService issues, verifies, refreshes, and revokes the signed session
// credential carried in the cookie. It keeps no per-session state: the
// credential is self-contained, and the only server-side state touched is the
// provider's own revocation list (plus the optional local denylist in strict
// revocation mode).
type SessionService struct {
	verifier  ports.Verifier
	tokenizer ports.Tokenizer
	store     ports.Store
	events    ports.EventPublisher

	sessionTTL time.Duration
	strict     bool
	log        *slog.Logger
	now        func() time.Time
}

// Options tune the session service. Zero values get sensible defaults.
type Options struct {
	// SessionTTL is the sliding window length. Defaults to 7 days.
	SessionTTL time.Duration

	// StrictRevocation additionally denylists revoked issuers locally so
	// outstanding credentials stop verifying before natural expiry. Off by
	// default: the stateless credential then stays valid until ExpiresAt
	// even after upstream revocation.
	StrictRevocation bool

	// Logger is optional.
	Logger *slog.Logger

	// Now is an injectable time source for tests.
	Now func() time.Time
}

// NewSessionService creates a new session service. store and events may be
// nil; strict revocation requires a store.
func NewSessionService(verifier ports.Verifier, tokenizer ports.Tokenizer, store ports.Store, events ports.EventPublisher, opts Options) *SessionService {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &SessionService{
		verifier:   verifier,
		tokenizer:  tokenizer,
		store:      store,
		events:     events,
		sessionTTL: opts.SessionTTL,
		strict:     opts.StrictRevocation && store != nil,
		log:        opts.Logger,
		now:        opts.Now,
	}
}

// IssueSession exchanges a proof token for a signed session credential.
// Returns the signed cookie value alongside the decoded credential.
func (s *SessionService) IssueSession(ctx context.Context, proofToken string) (string, *core.SessionCredential, error) {
	if proofToken == "" {
		return "", nil, core.ErrEmptyProof
	}

	if err := s.verifier.ValidateProof(ctx, proofToken); err != nil {
		return "", nil, fmt.Errorf("proof validation: %w", err)
	}

	attrs, err := s.verifier.AttributesByProof(ctx, proofToken)
	if err != nil {
		return "", nil, fmt.Errorf("attribute lookup: %w", err)
	}
	if attrs.Issuer == "" {
		return "", nil, core.ErrIssuerMissing
	}

	now := s.now()
	cred := &core.SessionCredential{
		ID:            uuid.New().String(),
		Issuer:        attrs.Issuer,
		PublicAddress: attrs.PublicAddress,
		Email:         attrs.Email,
		IssuedAt:      now,
		ExpiresAt:     now.Add(s.sessionTTL),
	}

	token, err := s.tokenizer.CredentialToToken(cred)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign credential: %w", err)
	}

	s.log.Info("session issued", "issuer", cred.Issuer, "expires_at", cred.ExpiresAt)

	return token, cred, nil
}

// VerifySession checks a cookie value and returns the decoded credential.
// An absent, malformed, tampered, or expired cookie yields (nil, nil):
// anonymous is a normal state, not an error. Only infrastructure failures
// (denylist lookup in strict mode) return an error.
func (s *SessionService) VerifySession(ctx context.Context, cookieValue string) (*core.SessionCredential, error) {
	if cookieValue == "" {
		return nil, nil
	}

	cred, err := s.tokenizer.TokenToCredential(cookieValue)
	if err != nil {
		s.log.Debug("session cookie rejected", "error", err)
		return nil, nil
	}

	if cred.Issuer == "" || cred.Expired(s.now()) {
		return nil, nil
	}

	if s.strict {
		denied, err := s.store.IsIssuerDenied(ctx, cred.Issuer)
		if err != nil {
			return nil, fmt.Errorf("denylist lookup: %w", err)
		}
		if denied {
			return nil, nil
		}
	}

	return cred, nil
}

// RefreshSession re-signs a verified credential with the expiry advanced to
// now + the session window. Identity fields never change; the expiry never
// moves backwards. Callers must invoke this on every authenticated request so
// active sessions slide instead of lapsing mid-use.
func (s *SessionService) RefreshSession(ctx context.Context, cred *core.SessionCredential) (string, *core.SessionCredential, error) {
	now := s.now()

	refreshed := &core.SessionCredential{
		ID:            uuid.New().String(),
		Issuer:        cred.Issuer,
		PublicAddress: cred.PublicAddress,
		Email:         cred.Email,
		IssuedAt:      now,
		ExpiresAt:     now.Add(s.sessionTTL),
	}

	// Guards against a clock stepping backwards between requests
	if refreshed.ExpiresAt.Before(cred.ExpiresAt) {
		refreshed.ExpiresAt = cred.ExpiresAt
	}

	token, err := s.tokenizer.CredentialToToken(refreshed)
	if err != nil {
		return "", nil, fmt.Errorf("failed to re-sign credential: %w", err)
	}

	return token, refreshed, nil
}

// RevokeSession instructs the provider to invalidate all of the issuer's
// outstanding proofs and, in strict mode, denylists the issuer for the
// residual credential lifetime. The caller clears the cookie regardless of
// the outcome: revocation is advisory to the provider, and already-issued
// copies of the credential stay verifiable until expiry unless strict mode
// is on.
func (s *SessionService) RevokeSession(ctx context.Context, cred *core.SessionCredential) error {
	if cred == nil || cred.Issuer == "" {
		return core.ErrInvalidToken
	}

	upstreamErr := s.verifier.RevokeAllByIssuer(ctx, cred.Issuer)

	// Local denylisting proceeds even when the upstream call failed
	if s.strict {
		if ttl := cred.ExpiresAt.Sub(s.now()); ttl > 0 {
			if err := s.store.DenyIssuer(ctx, cred.Issuer, ttl); err != nil {
				s.log.Warn("failed to denylist issuer", "issuer", cred.Issuer, "error", err)
			}
		}
	}

	if s.events != nil {
		if err := s.events.PublishLogout(ctx, cred.Issuer, cred.ID); err != nil {
			s.log.Warn("failed to publish logout event", "issuer", cred.Issuer, "error", err)
		}
	}

	if upstreamErr != nil {
		return fmt.Errorf("%w: %v", core.ErrRevocationFailed, upstreamErr)
	}

	s.log.Info("session revoked", "issuer", cred.Issuer)

	return nil
}
