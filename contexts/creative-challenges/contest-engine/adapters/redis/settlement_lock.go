package redisadapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"studio/contexts/creative-challenges/contest-engine/ports"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SettlementLock is a lease stored as a single redis key with a PX expiry.
type SettlementLock struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

func NewSettlementLock(client *redis.Client, logger *slog.Logger) *SettlementLock {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettlementLock{
		client: client,
		prefix: "lock:",
		logger: logger,
	}
}

func (l *SettlementLock) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	token := uuid.NewString()
	acquired, err := l.client.SetNX(ctx, l.key(key), token, ttl).Result()
	if err != nil {
		l.logger.Error("settlement lease acquire failed",
			"event", "contest_settlement_lease_acquire_failed",
			"module", "creative-challenges/contest-engine",
			"layer", "adapter",
			"key", key,
			"error", err.Error(),
		)
		return "", false, fmt.Errorf("acquire lease %s: %w", key, err)
	}
	if !acquired {
		return "", false, nil
	}
	return token, true, nil
}

func (l *SettlementLock) Release(ctx context.Context, key string, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	deleted, err := releaseScript.Run(ctx, l.client, []string{l.key(key)}, token).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		l.logger.Error("settlement lease release failed",
			"event", "contest_settlement_lease_release_failed",
			"module", "creative-challenges/contest-engine",
			"layer", "adapter",
			"key", key,
			"error", err.Error(),
		)
		return fmt.Errorf("release lease %s: %w", key, err)
	}
	if deleted == 0 {
		l.logger.Warn("settlement lease expired before release",
			"event", "contest_settlement_lease_expired",
			"module", "creative-challenges/contest-engine",
			"layer", "adapter",
			"key", key,
		)
	}
	return nil
}

func (l *SettlementLock) key(key string) string {
	return l.prefix + strings.TrimSpace(key)
}

var _ ports.SettlementLock = (*SettlementLock)(nil)
