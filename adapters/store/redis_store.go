package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/passgate/passgate/ports"
)

// RedisStore is a Redis implementation of the denylist Store, for
// multi-instance deployments where a logout on one instance must deny the
// issuer everywhere.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "passgate:denied:",
	}
}

var _ ports.Store = (*RedisStore)(nil)

// DenyIssuer records the issuer as denied for ttl.
func (s *RedisStore) DenyIssuer(ctx context.Context, issuer string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	key := s.prefix + issuer
	if err := s.client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to deny issuer: %w", err)
	}

	return nil
}

// IsIssuerDenied checks whether the issuer is currently denied.
func (s *RedisStore) IsIssuerDenied(ctx context.Context, issuer string) (bool, error) {
	key := s.prefix + issuer

	val, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check issuer denylist: %w", err)
	}

	return val > 0, nil
}
