package redisadapter

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis uses DB 15 on a local redis and skips when none is running.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("Redis not available for testing: %v", err)
	}
	client.FlushDB(ctx)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestSettlementLockIsExclusiveUntilReleased(t *testing.T) {
	client := setupTestRedis(t)
	lock := NewSettlementLock(client, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	token, acquired, err := lock.Acquire(ctx, "contest-engine:settlement", time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)
	require.NotEmpty(t, token)

	_, acquired, err = lock.Acquire(ctx, "contest-engine:settlement", time.Minute)
	require.NoError(t, err)
	assert.False(t, acquired)

	require.NoError(t, lock.Release(ctx, "contest-engine:settlement", token))

	_, acquired, err = lock.Acquire(ctx, "contest-engine:settlement", time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestSettlementLockReleaseIgnoresForeignToken(t *testing.T) {
	client := setupTestRedis(t)
	lock := NewSettlementLock(client, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	token, acquired, err := lock.Acquire(ctx, "contest-engine:settlement", time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)

	require.NoError(t, lock.Release(ctx, "contest-engine:settlement", "someone-else"))

	stored, err := client.Get(ctx, "lock:contest-engine:settlement").Result()
	require.NoError(t, err)
	assert.Equal(t, token, stored)
}
