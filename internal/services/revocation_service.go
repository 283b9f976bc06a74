package services

import (
	"context"
	"fmt"
	"time"

	cache "github.com/patrickmn/go-cache"
)

const revokedKeyPrefix = "revoked:jti:"

// RevocationStore records session token IDs invalidated by logout.
// Entries only need to live until the token would have expired anyway.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RedisRevocationStore keeps revoked token IDs in Redis so every instance sees them
type RedisRevocationStore struct {
	redis *RedisService
}

// NewRedisRevocationStore creates a revocation store backed by Redis
func NewRedisRevocationStore(redis *RedisService) *RedisRevocationStore {
	return &RedisRevocationStore{redis: redis}
}

// Revoke marks jti revoked until the given time
func (s *RedisRevocationStore) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if jti == "" || ttl <= 0 {
		return nil
	}
	if _, err := s.redis.SetNX(ctx, revokedKeyPrefix+jti, 1, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti was revoked
func (s *RedisRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	revoked, err := s.redis.Exists(ctx, revokedKeyPrefix+jti)
	if err != nil {
		return false, fmt.Errorf("failed to check revocation: %w", err)
	}
	return revoked, nil
}

// MemoryRevocationStore keeps revoked token IDs in process memory.
// Used when no Redis is configured; revocations are lost on restart.
type MemoryRevocationStore struct {
	entries *cache.Cache
}

// NewMemoryRevocationStore creates an in-memory revocation store
func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{
		entries: cache.New(cache.NoExpiration, 10*time.Minute),
	}
}

// Revoke marks jti revoked until the given time
func (s *MemoryRevocationStore) Revoke(_ context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if jti == "" || ttl <= 0 {
		return nil
	}
	s.entries.Set(jti, struct{}{}, ttl)
	return nil
}

// IsRevoked reports whether jti was revoked
func (s *MemoryRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	_, found := s.entries.Get(jti)
	return found, nil
}
