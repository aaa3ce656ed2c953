package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nutrivibes/engagement-service/internal/domain"
)

func TestDashboardCacheNilClientIsDisabled(t *testing.T) {
	cache := NewDashboardCache(nil, "", time.Second)
	dieticianID := uuid.New()

	// Neither call should panic; Get is always a miss.
	cache.Set(context.Background(), dieticianID, &domain.DashboardStats{DietPendingCount: 3})
	if _, ok := cache.Get(context.Background(), dieticianID); ok {
		t.Fatal("expected a miss with no redis client")
	}
}

func TestDashboardCacheKeyPrefix(t *testing.T) {
	dieticianID := uuid.New()

	cache := NewDashboardCache(nil, "engagement:dashboard:", time.Second)
	want := "engagement:dashboard:" + dieticianID.String()
	if got := cache.key(dieticianID); got != want {
		t.Fatalf("expected key %q, got %q", want, got)
	}

	// Empty prefix falls back to the default namespace.
	cache = NewDashboardCache(nil, "  ", time.Second)
	if got := cache.key(dieticianID); got != want {
		t.Fatalf("expected default-prefixed key %q, got %q", want, got)
	}
}
