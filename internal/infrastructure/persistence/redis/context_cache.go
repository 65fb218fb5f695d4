package redis

import (
	"context"
	"errors"
	"time"

	"github.com/respira-app/respira-server/internal/domain/shared"
	"github.com/respira-app/respira-server/internal/domain/tracking"
)

// ══════════════════════════════════════════════════════════════════════════════
// DERIVED CONTEXT CACHE
// ══════════════════════════════════════════════════════════════════════════════

// ContextCache caches serialized derived-context payloads per user.
// Implements tracking.ContextCache.
type ContextCache struct {
	cache *Cache
}

// NewContextCache creates a context cache over the given Redis cache.
func NewContextCache(cache *Cache) *ContextCache {
	return &ContextCache{cache: cache}
}

func contextKey(userID tracking.UserID) string {
	return PrefixContext + string(userID)
}

// GetContext returns the cached context JSON for a user.
// Returns shared.ErrNotFound on a miss.
func (c *ContextCache) GetContext(ctx context.Context, userID tracking.UserID) ([]byte, error) {
	data, err := c.cache.GetBytes(ctx, contextKey(userID))
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, shared.ErrNotFound
		}
		return nil, shared.WrapError("tracking", "GetContext", shared.ErrExternalService, "failed to read cached context", err)
	}
	return data, nil
}

// SetContext stores the context JSON with the given TTL.
func (c *ContextCache) SetContext(ctx context.Context, userID tracking.UserID, payload []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = TTLDerivedContext
	}
	if err := c.cache.SetBytes(ctx, contextKey(userID), payload, ttl); err != nil {
		return shared.WrapError("tracking", "SetContext", shared.ErrExternalService, "failed to cache context", err)
	}
	return nil
}

// Invalidate drops the cached context after a write to the event log.
func (c *ContextCache) Invalidate(ctx context.Context, userID tracking.UserID) error {
	if err := c.cache.Delete(ctx, contextKey(userID)); err != nil {
		return shared.WrapError("tracking", "Invalidate", shared.ErrExternalService, "failed to invalidate cached context", err)
	}
	return nil
}
