/**
 * @description
 * Short-lived Redis cache for dashboard snapshots. The dashboard is the one
 * read path hit on every app open, and a few hundred milliseconds of
 * staleness is an accepted bound for it, so snapshots are cached per
 * dietician with a TTL in that range rather than recomputed on every request.
 */
package store

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/nutrivibes/engagement-service/internal/domain"
)

// DashboardCache stores serialized DashboardStats per dietician. A nil client
// disables caching entirely, which keeps the service runnable without Redis.
type DashboardCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewDashboardCache creates a cache with the given key prefix and TTL.
func NewDashboardCache(client redis.UniversalClient, prefix string, ttl time.Duration) *DashboardCache {
	trimmed := strings.TrimSpace(prefix)
	if trimmed == "" {
		trimmed = "engagement:dashboard"
	}
	trimmed = strings.TrimSuffix(trimmed, ":")
	if ttl <= 0 {
		ttl = 500 * time.Millisecond
	}
	return &DashboardCache{client: client, prefix: trimmed, ttl: ttl}
}

func (c *DashboardCache) key(dieticianID uuid.UUID) string {
	return c.prefix + ":" + dieticianID.String()
}

// Get returns the cached snapshot for a dietician, or ok=false on a miss.
// Redis errors are treated as misses; the caller recomputes.
func (c *DashboardCache) Get(ctx context.Context, dieticianID uuid.UUID) (*domain.DashboardStats, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, c.key(dieticianID)).Bytes()
	if err != nil {
		return nil, false
	}
	var stats domain.DashboardStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, false
	}
	return &stats, true
}

// Set stores the snapshot for a dietician. Failures are ignored: the cache is
// an optimization, never a source of truth.
func (c *DashboardCache) Set(ctx context.Context, dieticianID uuid.UUID, stats *domain.DashboardStats) {
	if c == nil || c.client == nil || stats == nil {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	c.client.Set(ctx, c.key(dieticianID), raw, c.ttl)
}
