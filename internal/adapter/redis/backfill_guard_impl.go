package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/user/catalog-scraper/pkg/utils"
)

const backfillKeyPrefix = "scraper:backfill:"

// BackfillGuardImpl provides a concrete implementation for the BackfillGuard interface using Redis.
type BackfillGuardImpl struct {
	client *redis.Client
}

// NewBackfillGuard creates a new instance of BackfillGuardImpl.
func NewBackfillGuard(client *redis.Client) *BackfillGuardImpl {
	return &BackfillGuardImpl{client: client}
}

// generateKey creates a consistent Redis key for a given guard name by hashing it.
func (g *BackfillGuardImpl) generateKey(key string) string {
	return fmt.Sprintf("%s%s", backfillKeyPrefix, utils.HashKey(key))
}

// TryAcquire sets the guard key when it is absent. It reports whether the caller now holds it.
func (g *BackfillGuardImpl) TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return g.client.SetNX(ctx, g.generateKey(key), "1", ttl).Result()
}

// Release drops the guard so the next request may trigger a new backfill.
func (g *BackfillGuardImpl) Release(ctx context.Context, key string) error {
	return g.client.Del(ctx, g.generateKey(key)).Err()
}
