package ratelimit

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(3, time.Minute)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i)
	}
	ok, _ := l.Allow(ctx, "1.2.3.4")
	assert.False(t, ok)

	other, _ := l.Allow(ctx, "5.6.7.8")
	assert.True(t, other)

	now = now.Add(20 * time.Second)
	ok, _ = l.Allow(ctx, "1.2.3.4")
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "1.2.3.4")
	assert.False(t, ok)
}

func TestMemoryLimiter_Prune(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	_, _ = l.Allow(context.Background(), "a")
	assert.Equal(t, 0, l.Prune())

	now = now.Add(time.Minute)
	assert.Equal(t, 1, l.Prune())
}

func TestRedisLimiter(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	prefix := "ratelimit-test-" + time.Now().Format("150405.000000")
	l := NewRedisLimiter(client, prefix, 2, time.Minute)

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i)
	}
	ok, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)

	ttl, err := client.PTTL(ctx, prefix+":10.0.0.1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)

	// A counter left without a TTL gets one on the next request.
	require.NoError(t, client.Set(ctx, prefix+":10.0.0.2", 5, 0).Err())
	ok, err = l.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.False(t, ok)
	ttl, err = client.PTTL(ctx, prefix+":10.0.0.2").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	t.Cleanup(func() { client.Del(ctx, prefix+":10.0.0.1", prefix+":10.0.0.2") })
}
