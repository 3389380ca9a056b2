package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const liveStatusKeyPrefix = "drover:agent:status:"

// LiveStatusStore keeps the agent's self-reported status from its latest
// check-in. The value is advisory only; derived client status is computed
// from the database and never reads it.
type LiveStatusStore interface {
	// Set records the reported status for a client.
	Set(ctx context.Context, clientSID, status string) error

	// Get returns the last reported status, or "" when none is stored
	// or the entry has expired.
	Get(ctx context.Context, clientSID string) (string, error)
}

// RedisLiveStatusStore implements LiveStatusStore on Redis with a TTL so
// stale statuses age out on their own.
type RedisLiveStatusStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLiveStatusStore creates a new RedisLiveStatusStore instance.
func NewRedisLiveStatusStore(client *redis.Client, ttl time.Duration) *RedisLiveStatusStore {
	return &RedisLiveStatusStore{
		client: client,
		ttl:    ttl,
	}
}

// Set records the reported status for a client.
func (s *RedisLiveStatusStore) Set(ctx context.Context, clientSID, status string) error {
	if clientSID == "" {
		return errors.New("client sid cannot be empty")
	}
	if status == "" {
		return nil
	}

	key := liveStatusKeyPrefix + clientSID
	if err := s.client.Set(ctx, key, status, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store agent status: %w", err)
	}
	return nil
}

// Get returns the last reported status, or "" when absent.
func (s *RedisLiveStatusStore) Get(ctx context.Context, clientSID string) (string, error) {
	if clientSID == "" {
		return "", errors.New("client sid cannot be empty")
	}

	val, err := s.client.Get(ctx, liveStatusKeyPrefix+clientSID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get agent status: %w", err)
	}
	return val, nil
}

// NoopLiveStatusStore is used when Redis is disabled. Writes are dropped
// and reads always miss.
type NoopLiveStatusStore struct{}

// NewNoopLiveStatusStore creates a no-op live status store.
func NewNoopLiveStatusStore() *NoopLiveStatusStore {
	return &NoopLiveStatusStore{}
}

// Set drops the reported status.
func (s *NoopLiveStatusStore) Set(context.Context, string, string) error {
	return nil
}

// Get always misses.
func (s *NoopLiveStatusStore) Get(context.Context, string) (string, error) {
	return "", nil
}
