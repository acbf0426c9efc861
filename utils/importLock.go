package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"registration-backend/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrImportInProgress = errors.New("another import is already running")

// ImportLock serializes import commits against one target store.
type ImportLock interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

type RedisImportLock struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisImportLock(client *redis.Client, ttl time.Duration) *RedisImportLock {
	return &RedisImportLock{client: client, ttl: ttl}
}

// Only the holder's token may delete the key.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (l *RedisImportLock) Acquire(ctx context.Context, key string) (func(), error) {
	lockKey := "lock:" + key
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, lockKey, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire import lock: %w", err)
	}
	if !ok {
		return nil, ErrImportInProgress
	}

	release := func() {
		if err := releaseScript.Run(context.Background(), l.client, []string{lockKey}, token).Err(); err != nil {
			config.Logger.Warn("Failed to release import lock", zap.String("key", lockKey), zap.Error(err))
		}
	}
	return release, nil
}
