package store

import (
	"context"
	"sync"
	"time"

	"github.com/passgate/passgate/ports"
)

// MemoryStore is an in-memory implementation of the denylist Store. Suitable
// for single-instance deployments and tests; entries do not survive restarts.
type MemoryStore struct {
	deniedIssuers map[string]time.Time
	mu            sync.RWMutex
	now           func() time.Time
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		deniedIssuers: make(map[string]time.Time),
		now:           time.Now,
	}
}

var _ ports.Store = (*MemoryStore)(nil)

// DenyIssuer records the issuer as denied for ttl.
func (s *MemoryStore) DenyIssuer(ctx context.Context, issuer string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	until := s.now().Add(ttl)

	// A longer-lived existing entry wins
	if existing, ok := s.deniedIssuers[issuer]; ok && existing.After(until) {
		return nil
	}
	s.deniedIssuers[issuer] = until

	return nil
}

// IsIssuerDenied checks whether the issuer is currently denied. Expired
// entries are pruned lazily.
func (s *MemoryStore) IsIssuerDenied(ctx context.Context, issuer string) (bool, error) {
	s.mu.RLock()
	until, exists := s.deniedIssuers[issuer]
	s.mu.RUnlock()

	if !exists {
		return false, nil
	}

	if s.now().After(until) {
		s.mu.Lock()
		if stored, ok := s.deniedIssuers[issuer]; ok && !stored.After(until) {
			delete(s.deniedIssuers, issuer)
		}
		s.mu.Unlock()
		return false, nil
	}

	return true, nil
}
