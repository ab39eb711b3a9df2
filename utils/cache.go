package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"taskboard/config"

	"github.com/go-redis/redis/v8"
)

// Cache is an explicit response cache with scoped invalidation.
// Analytics payloads carry counts relative to the requesting member, so
// entries are keyed per (scope, member) and mutations invalidate whole
// scopes by key prefix instead of flushing ambient global tags.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache returns a cache backed by Redis, or nil when Redis is disabled.
// A nil *Cache is safe to use; every method is a no-op on it.
func NewCache(cfg config.RedisConfig, ttl time.Duration) *Cache {
	if !cfg.Enabled {
		return nil
	}
	return &Cache{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		ttl: ttl,
	}
}

// WorkspaceScope prefixes every cached analytics entry for a workspace
func WorkspaceScope(workspaceID string) string {
	return fmt.Sprintf("analytics:workspace:%s:", workspaceID)
}

// ProjectScope prefixes every cached analytics entry for a project
func ProjectScope(projectID string) string {
	return fmt.Sprintf("analytics:project:%s:", projectID)
}

// WorkspaceKey scopes a cached analytics response to one member of a
// workspace. The assigned-task counts are relative to the requesting
// member, so entries are never shared between members.
func WorkspaceKey(workspaceID, memberID string) string {
	return WorkspaceScope(workspaceID) + "member:" + memberID
}

// ProjectKey scopes a cached analytics response to one member viewing a
// project
func ProjectKey(projectID, memberID string) string {
	return ProjectScope(projectID) + "member:" + memberID
}

// Get unmarshals the cached value for key into dest. Returns false on
// miss, disabled cache, or decode failure.
func (rc *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	if rc == nil {
		return false
	}
	raw, err := rc.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// Set stores value under key with the configured TTL
func (rc *Cache) Set(ctx context.Context, key string, value interface{}) {
	if rc == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := rc.client.Set(ctx, key, raw, rc.ttl).Err(); err != nil {
		LogEvent("cache_set_failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
}

// Invalidate removes every cached entry under the given scope prefixes.
// Callers pass the exact workspace/project scopes a mutation touched; all
// per-member entries beneath them are dropped.
func (rc *Cache) Invalidate(ctx context.Context, scopes ...string) {
	if rc == nil || len(scopes) == 0 {
		return
	}
	for _, scope := range scopes {
		iter := rc.client.Scan(ctx, 0, scope+"*", 0).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			LogEvent("cache_invalidate_failed", map[string]interface{}{"scope": scope, "error": err.Error()})
			continue
		}
		if len(keys) == 0 {
			continue
		}
		if err := rc.client.Del(ctx, keys...).Err(); err != nil {
			LogEvent("cache_invalidate_failed", map[string]interface{}{"scope": scope, "error": err.Error()})
		}
	}
}

// Close releases the underlying client
func (rc *Cache) Close() error {
	if rc == nil {
		return nil
	}
	return rc.client.Close()
}
