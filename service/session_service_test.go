package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passgate/passgate/adapters/tokenizer"
	"github.com/passgate/passgate/core"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type fakeVerifier struct {
	mu        sync.Mutex
	proofs    map[string]core.UserAttributes
	revokeErr error
	revoked   []string
}

func (v *fakeVerifier) ValidateProof(ctx context.Context, proofToken string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.proofs[proofToken]; !ok {
		return core.ErrProofInvalid
	}
	return nil
}

func (v *fakeVerifier) AttributesByProof(ctx context.Context, proofToken string) (core.UserAttributes, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	attrs, ok := v.proofs[proofToken]
	if !ok {
		return core.UserAttributes{}, core.ErrProofInvalid
	}
	return attrs, nil
}

func (v *fakeVerifier) RevokeAllByIssuer(ctx context.Context, issuer string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.revokeErr != nil {
		return v.revokeErr
	}
	v.revoked = append(v.revoked, issuer)
	return nil
}

type fakeStore struct {
	mu     sync.Mutex
	denied map[string]time.Time
	now    func() time.Time
}

func newFakeStore(now func() time.Time) *fakeStore {
	return &fakeStore{denied: make(map[string]time.Time), now: now}
}

func (s *fakeStore) DenyIssuer(ctx context.Context, issuer string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.denied[issuer] = s.now().Add(ttl)
	return nil
}

func (s *fakeStore) IsIssuerDenied(ctx context.Context, issuer string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.denied[issuer]
	return ok && until.After(s.now()), nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (p *fakePublisher) PublishLogout(ctx context.Context, issuer, credentialID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, issuer)
	return nil
}

type fixture struct {
	svc      *SessionService
	verifier *fakeVerifier
	store    *fakeStore
	events   *fakePublisher
	clock    *time.Time
}

func newFixture(t *testing.T, strict bool) *fixture {
	t.Helper()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := &now
	nowFn := func() time.Time { return *clock }

	v := &fakeVerifier{proofs: map[string]core.UserAttributes{
		"valid-token-1": {Issuer: "u1", Email: "a@b.com"},
		"valid-token-2": {Issuer: "u2", PublicAddress: "0xAb", Email: "c@d.com"},
	}}
	st := newFakeStore(nowFn)
	pub := &fakePublisher{}

	svc := NewSessionService(
		v,
		tokenizer.NewJWTTokenizer(testSecret).WithTimeFunc(nowFn),
		st,
		pub,
		Options{StrictRevocation: strict, Now: nowFn},
	)

	return &fixture{svc: svc, verifier: v, store: st, events: pub, clock: clock}
}

func TestIssueSessionMatchesProviderAttributes(t *testing.T) {
	f := newFixture(t, false)

	token, cred, err := f.svc.IssueSession(context.Background(), "valid-token-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.Equal(t, "u1", cred.Issuer)
	assert.Equal(t, "a@b.com", cred.Email)
	assert.Empty(t, cred.PublicAddress)
	assert.Equal(t, f.clock.Add(7*24*time.Hour), cred.ExpiresAt)
}

func TestIssueSessionRejectsInvalidProof(t *testing.T) {
	f := newFixture(t, false)

	_, _, err := f.svc.IssueSession(context.Background(), "nope")
	assert.ErrorIs(t, err, core.ErrProofInvalid)
}

func TestIssueSessionRejectsEmptyProof(t *testing.T) {
	f := newFixture(t, false)

	_, _, err := f.svc.IssueSession(context.Background(), "")
	assert.ErrorIs(t, err, core.ErrEmptyProof)
}

func TestVerifySessionRoundTrip(t *testing.T) {
	f := newFixture(t, false)

	token, issued, err := f.svc.IssueSession(context.Background(), "valid-token-2")
	require.NoError(t, err)

	cred, err := f.svc.VerifySession(context.Background(), token)
	require.NoError(t, err)
	require.NotNil(t, cred)

	assert.Equal(t, issued.Issuer, cred.Issuer)
	assert.Equal(t, issued.PublicAddress, cred.PublicAddress)
	assert.Equal(t, issued.Email, cred.Email)
}

func TestVerifySessionAbsentCookieIsAnonymous(t *testing.T) {
	f := newFixture(t, false)

	cred, err := f.svc.VerifySession(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, cred)
}

func TestVerifySessionTamperedCookieIsAnonymous(t *testing.T) {
	f := newFixture(t, false)

	token, _, err := f.svc.IssueSession(context.Background(), "valid-token-1")
	require.NoError(t, err)

	cred, err := f.svc.VerifySession(context.Background(), token[:len(token)-4]+"AAAA")
	require.NoError(t, err)
	assert.Nil(t, cred)
}

func TestVerifySessionExpiredCookieIsAnonymous(t *testing.T) {
	f := newFixture(t, false)

	token, _, err := f.svc.IssueSession(context.Background(), "valid-token-1")
	require.NoError(t, err)

	*f.clock = f.clock.Add(8 * 24 * time.Hour)

	cred, err := f.svc.VerifySession(context.Background(), token)
	require.NoError(t, err)
	assert.Nil(t, cred)
}

func TestRefreshSessionSlidesWindow(t *testing.T) {
	f := newFixture(t, false)

	_, cred, err := f.svc.IssueSession(context.Background(), "valid-token-1")
	require.NoError(t, err)

	*f.clock = f.clock.Add(3 * 24 * time.Hour)

	token, refreshed, err := f.svc.RefreshSession(context.Background(), cred)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.Equal(t, cred.Issuer, refreshed.Issuer)
	assert.Equal(t, cred.PublicAddress, refreshed.PublicAddress)
	assert.Equal(t, cred.Email, refreshed.Email)
	assert.Equal(t, f.clock.Add(7*24*time.Hour), refreshed.ExpiresAt)
}

func TestRefreshSessionMonotonicExpiry(t *testing.T) {
	f := newFixture(t, false)

	_, cred, err := f.svc.IssueSession(context.Background(), "valid-token-1")
	require.NoError(t, err)

	// Repeated refreshes never decrease the expiry and never change identity
	prev := cred
	for i := 0; i < 5; i++ {
		_, next, err := f.svc.RefreshSession(context.Background(), prev)
		require.NoError(t, err)
		assert.False(t, next.ExpiresAt.Before(prev.ExpiresAt))
		assert.Equal(t, cred.Issuer, next.Issuer)
		prev = next
		*f.clock = f.clock.Add(time.Hour)
	}
}

func TestRefreshSessionClockStepBack(t *testing.T) {
	f := newFixture(t, false)

	_, cred, err := f.svc.IssueSession(context.Background(), "valid-token-1")
	require.NoError(t, err)

	*f.clock = f.clock.Add(-time.Hour)

	_, refreshed, err := f.svc.RefreshSession(context.Background(), cred)
	require.NoError(t, err)
	assert.Equal(t, cred.ExpiresAt, refreshed.ExpiresAt)
}

func TestRevokeSessionCallsProvider(t *testing.T) {
	f := newFixture(t, false)

	_, cred, err := f.svc.IssueSession(context.Background(), "valid-token-1")
	require.NoError(t, err)

	require.NoError(t, f.svc.RevokeSession(context.Background(), cred))
	assert.Equal(t, []string{"u1"}, f.verifier.revoked)
	assert.Equal(t, []string{"u1"}, f.events.events)
}

func TestRevokeSessionUpstreamFailure(t *testing.T) {
	f := newFixture(t, false)
	f.verifier.revokeErr = errors.New("provider 500")

	_, cred, err := f.svc.IssueSession(context.Background(), "valid-token-1")
	require.NoError(t, err)

	err = f.svc.RevokeSession(context.Background(), cred)
	assert.ErrorIs(t, err, core.ErrRevocationFailed)
}

func TestStrictRevocationDeniesOutstandingCredential(t *testing.T) {
	f := newFixture(t, true)

	token, cred, err := f.svc.IssueSession(context.Background(), "valid-token-1")
	require.NoError(t, err)

	// Valid before revocation
	got, err := f.svc.VerifySession(context.Background(), token)
	require.NoError(t, err)
	require.NotNil(t, got)

	require.NoError(t, f.svc.RevokeSession(context.Background(), cred))

	got, err = f.svc.VerifySession(context.Background(), token)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDefaultModeKeepsCredentialAfterRevocation(t *testing.T) {
	f := newFixture(t, false)

	token, cred, err := f.svc.IssueSession(context.Background(), "valid-token-1")
	require.NoError(t, err)

	require.NoError(t, f.svc.RevokeSession(context.Background(), cred))

	// Stateless credential stays verifiable until natural expiry
	got, err := f.svc.VerifySession(context.Background(), token)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestRevokeSessionNilCredential(t *testing.T) {
	f := newFixture(t, false)

	err := f.svc.RevokeSession(context.Background(), nil)
	assert.ErrorIs(t, err, core.ErrInvalidToken)
}
