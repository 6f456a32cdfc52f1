// Package cache stores fetched price histories so repeated screener runs
// within a session do not refetch the same bars.
package cache

import (
	"context"
	"time"

	"TechScreen/internal/domain/models"
)

// BarCache is the minimal history cache API. A miss is (zero, false, nil);
// errors are transport failures, not misses.
type BarCache interface {
	Get(ctx context.Context, key string) (models.History, bool, error)
	Set(ctx context.Context, key string, h models.History, ttl time.Duration) error
}
