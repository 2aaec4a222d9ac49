package viewcache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupCache(t *testing.T) *Cache {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	cache := NewWithClient(client, time.Minute)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestCache_StoreAndGet(t *testing.T) {
	cache := setupCache(t)
	ctx := context.Background()

	cache.Store(ctx, ViewDashboard, "2025-06-02", []byte(`{"rows":[]}`))

	payload, ok := cache.Get(ctx, ViewDashboard, "2025-06-02")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(payload) != `{"rows":[]}` {
		t.Fatalf("unexpected payload %q", payload)
	}

	if _, ok := cache.Get(ctx, ViewDashboard, "2025-06-03"); ok {
		t.Fatal("expected miss for other date")
	}
}

func TestCache_InvalidateDropsAllEntriesOfView(t *testing.T) {
	cache := setupCache(t)
	ctx := context.Background()

	cache.Store(ctx, ViewDashboard, "2025-06-02", []byte("a"))
	cache.Store(ctx, ViewDashboard, "2025-06-03", []byte("b"))
	cache.Store(ctx, ViewMonitor, "", []byte("c"))

	if err := cache.Invalidate(ctx, ViewDashboard); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}

	if _, ok := cache.Get(ctx, ViewDashboard, "2025-06-02"); ok {
		t.Fatal("expected dashboard entry dropped")
	}
	if _, ok := cache.Get(ctx, ViewDashboard, "2025-06-03"); ok {
		t.Fatal("expected dashboard entry dropped")
	}
	if _, ok := cache.Get(ctx, ViewMonitor, ""); !ok {
		t.Fatal("expected monitor entry kept")
	}

	if err := cache.Invalidate(ctx, ViewDashboard, ViewMonitor); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	if _, ok := cache.Get(ctx, ViewMonitor, ""); ok {
		t.Fatal("expected monitor entry dropped")
	}
}

func TestCache_NilCacheIsDisabled(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	cache.Store(ctx, ViewMonitor, "", []byte("x"))
	if _, ok := cache.Get(ctx, ViewMonitor, ""); ok {
		t.Fatal("nil cache must miss")
	}
	if err := cache.Invalidate(ctx, ViewMonitor); err != nil {
		t.Fatalf("nil cache Invalidate failed: %v", err)
	}
}
