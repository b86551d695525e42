package repository

import (
	"context"
	"time"
)

// BackfillGuard deduplicates lazy backfills so one tag is scraped once per window.
type BackfillGuard interface {
	// TryAcquire claims key for ttl. It returns false when another caller holds it.
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release drops the claim on key.
	Release(ctx context.Context, key string) error
}
