package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})

	ctx := context.Background()
	err := client.Ping(ctx).Err()
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	client.FlushDB(ctx)

	t.Cleanup(func() {
		client.FlushDB(ctx)
		client.Close()
	})

	return client
}

func TestRedisRateLimiter_Allow(t *testing.T) {
	client := setupTestRedis(t)
	limiter := NewRedisRateLimiter(client, 5, time.Minute)
	ctx := context.Background()

	key := "test-key-allow"

	for i := 0; i < 5; i++ {
		allowed, err := limiter.Allow(ctx, key)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}

	allowed, err := limiter.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, allowed, "6th request should be denied")
}

func TestRedisRateLimiter_Allow_DifferentKeys(t *testing.T) {
	client := setupTestRedis(t)
	limiter := NewRedisRateLimiter(client, 2, time.Minute)
	ctx := context.Background()

	key1 := "test-key-1"
	key2 := "test-key-2"

	for i := 0; i < 2; i++ {
		allowed, err := limiter.Allow(ctx, key1)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := limiter.Allow(ctx, key1)
	require.NoError(t, err)
	assert.False(t, allowed, "key1 should be rate limited")

	allowed, err = limiter.Allow(ctx, key2)
	require.NoError(t, err)
	assert.True(t, allowed, "key2 should not be affected")
}

func TestRedisRateLimiter_Remaining(t *testing.T) {
	client := setupTestRedis(t)
	limiter := NewRedisRateLimiter(client, 5, time.Minute)
	ctx := context.Background()

	key := "test-key-remaining"

	remaining, err := limiter.Remaining(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(5), remaining)

	for i := 0; i < 3; i++ {
		_, err := limiter.Allow(ctx, key)
		require.NoError(t, err)
	}

	remaining, err = limiter.Remaining(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(2), remaining)
}

func TestRedisRateLimiter_Reset(t *testing.T) {
	client := setupTestRedis(t)
	limiter := NewRedisRateLimiter(client, 2, time.Minute)
	ctx := context.Background()

	key := "test-key-reset"

	for i := 0; i < 2; i++ {
		allowed, err := limiter.Allow(ctx, key)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := limiter.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, allowed)

	err = limiter.Reset(ctx, key)
	require.NoError(t, err)

	allowed, err = limiter.Allow(ctx, key)
	require.NoError(t, err)
	assert.True(t, allowed, "should be allowed after reset")
}

func TestRedisRateLimiter_SlidingWindow(t *testing.T) {
	client := setupTestRedis(t)
	limiter := NewRedisRateLimiter(client, 3, time.Minute)
	ctx := context.Background()

	key := "test-key-sliding"

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, key)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := limiter.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, allowed)

	time.Sleep(2 * time.Second)

	allowed, err = limiter.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, allowed, "should still be limited in sliding window")
}

func TestRedisRateLimiter_ShortWindowExpires(t *testing.T) {
	client := setupTestRedis(t)
	limiter := NewRedisRateLimiter(client, 1, time.Second)
	ctx := context.Background()

	key := "test-key-short-window"

	allowed, err := limiter.Allow(ctx, key)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, allowed)

	time.Sleep(1100 * time.Millisecond)

	allowed, err = limiter.Allow(ctx, key)
	require.NoError(t, err)
	assert.True(t, allowed, "window should have slid past the first request")
}

func TestRedisRateLimiter_ZeroLimit(t *testing.T) {
	client := setupTestRedis(t)
	limiter := NewRedisRateLimiter(client, 0, time.Minute)
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "test-key-zero")
	require.NoError(t, err)
	assert.True(t, allowed, "zero limit disables the limiter")
}

func BenchmarkRedisRateLimiter_Allow(b *testing.B) {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})

	ctx := context.Background()
	err := client.Ping(ctx).Err()
	if err != nil {
		b.Skipf("Redis not available: %v", err)
	}

	client.FlushDB(ctx)
	defer client.Close()

	limiter := NewRedisRateLimiter(client, 100000, time.Minute)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = limiter.Allow(ctx, "bench-key")
	}
}
