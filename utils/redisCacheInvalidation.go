package utils

import (
	"context"
	"fmt"

	"registration-backend/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type CacheInvalidator struct {
	client *redis.Client
}

func NewCacheInvalidator(client *redis.Client) *CacheInvalidator {
	return &CacheInvalidator{client: client}
}

// InvalidateCache will invalidate all cached keys for the given resource type
func (c *CacheInvalidator) InvalidateCache(ctx context.Context, resourceType string) error {
	// SCAN instead of KEYS to avoid blocking redis
	pattern := fmt.Sprintf("%s:*", resourceType)
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()

	for iter.Next(ctx) {
		key := iter.Val()
		if err := c.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("failed to delete key %s: %w", key, err)
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("error during SCAN iteration: %w", err)
	}

	return nil
}

// InvalidateCacheAsync invalidates the cache for a given resource type asynchronously
func (c *CacheInvalidator) InvalidateCacheAsync(resourceType string) {
	go func() {
		if err := c.InvalidateCache(context.Background(), resourceType); err != nil {
			config.Logger.Warn("Cache invalidation failed", zap.String("resource", resourceType), zap.Error(err))
		}
	}()
}
