package utils

import (
	"context"
	"testing"
	"time"

	"taskboard/config"

	"github.com/alicebob/miniredis/v2"
)

type cachedPayload struct {
	Count int64 `json:"count"`
}

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := NewCache(config.RedisConfig{Enabled: true, Address: mr.Addr()}, time.Minute)
	t.Cleanup(func() { cache.Close() })
	return cache, mr
}

func TestCache_GetSet(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()
	key := WorkspaceKey("w1", "m1")

	var miss cachedPayload
	if cache.Get(ctx, key, &miss) {
		t.Fatal("Get() hit on an empty cache")
	}

	cache.Set(ctx, key, cachedPayload{Count: 7})

	var hit cachedPayload
	if !cache.Get(ctx, key, &hit) {
		t.Fatal("Get() missed after Set()")
	}
	if hit.Count != 7 {
		t.Errorf("cached payload count = %d, want 7", hit.Count)
	}
}

func TestCache_TTL(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()
	key := ProjectKey("p1", "m1")

	cache.Set(ctx, key, cachedPayload{Count: 1})

	if ttl := mr.TTL(key); ttl != time.Minute {
		t.Errorf("stored TTL = %v, want %v", ttl, time.Minute)
	}

	mr.FastForward(2 * time.Minute)

	var stale cachedPayload
	if cache.Get(ctx, key, &stale) {
		t.Error("Get() hit after the TTL elapsed")
	}
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(config.RedisConfig{Enabled: false}, time.Minute)
	if cache != nil {
		t.Fatal("NewCache() with Redis disabled should return nil")
	}

	// Every method is a no-op on the nil cache
	ctx := context.Background()
	var dest cachedPayload
	if cache.Get(ctx, "k", &dest) {
		t.Error("nil cache reported a hit")
	}
	cache.Set(ctx, "k", cachedPayload{Count: 1})
	cache.Invalidate(ctx, WorkspaceScope("w1"))
	if err := cache.Close(); err != nil {
		t.Errorf("nil cache Close() error = %v", err)
	}
}

func TestCache_KeysAreMemberScoped(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	if WorkspaceKey("w1", "m1") == WorkspaceKey("w1", "m2") {
		t.Fatal("workspace keys for different members collide")
	}
	if ProjectKey("p1", "m1") == ProjectKey("p1", "m2") {
		t.Fatal("project keys for different members collide")
	}

	cache.Set(ctx, WorkspaceKey("w1", "m1"), cachedPayload{Count: 5})

	// Another member of the same workspace never sees the entry
	var other cachedPayload
	if cache.Get(ctx, WorkspaceKey("w1", "m2"), &other) {
		t.Error("one member's cached entry served to another member")
	}
}

func TestCache_InvalidateScope(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	touched := []string{
		WorkspaceKey("w1", "m1"),
		WorkspaceKey("w1", "m2"),
		ProjectKey("p1", "m1"),
	}
	untouched := []string{
		WorkspaceKey("w2", "m1"),
		ProjectKey("p2", "m1"),
	}
	for _, key := range append(append([]string{}, touched...), untouched...) {
		cache.Set(ctx, key, cachedPayload{Count: 1})
	}

	cache.Invalidate(ctx, WorkspaceScope("w1"), ProjectScope("p1"))

	for _, key := range touched {
		if mr.Exists(key) {
			t.Errorf("key %s survived scope invalidation", key)
		}
	}
	for _, key := range untouched {
		if !mr.Exists(key) {
			t.Errorf("key %s outside the invalidated scopes was removed", key)
		}
	}
}
