package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"proofgate/pkg/platform/sentinel"
)

const keyPrefix = "proofgate:nullifier:"

// RedisStore tracks consumed nullifiers in Redis so replay prevention holds
// across gateway instances. SET NX makes the check-and-consume atomic.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisStore creates a store. Entries expire after ttl; a zero ttl keeps
// them until Redis evicts them.
func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Consume marks the nullifier as used, returning sentinel.ErrAlreadyUsed if
// another submission consumed it first.
func (s *RedisStore) Consume(ctx context.Context, nullifier string) error {
	ok, err := s.client.SetNX(ctx, keyPrefix+nullifier, 1, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("consume nullifier: %w", err)
	}
	if !ok {
		return sentinel.ErrAlreadyUsed
	}
	return nil
}
