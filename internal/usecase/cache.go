package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tarasovcad/matchme-platform/internal/core/port"
	"github.com/tarasovcad/matchme-platform/internal/repository"
)

// CacheMetrics captures hit/miss telemetry for read-through lookups.
type CacheMetrics interface {
	IncCacheHit()
	IncCacheMiss()
}

// ReadThroughCache fronts repository reads with a shared cache. Lookups that
// fail at the cache layer degrade to a miss so the backing store remains the
// source of truth, and write-backs are best effort.
type ReadThroughCache struct {
	cache   port.Cache
	logger  *zap.Logger
	metrics CacheMetrics
}

// NewReadThroughCache constructs a read-through wrapper over the cache port.
func NewReadThroughCache(cache port.Cache) *ReadThroughCache {
	return &ReadThroughCache{cache: cache, logger: zap.NewNop()}
}

// WithLogger attaches a structured logger.
func (c *ReadThroughCache) WithLogger(logger *zap.Logger) *ReadThroughCache {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// WithMetrics wires hit/miss counters.
func (c *ReadThroughCache) WithMetrics(metrics CacheMetrics) *ReadThroughCache {
	if metrics != nil {
		c.metrics = metrics
	}
	return c
}

// GetOrCompute returns the cached value for key, or invokes compute on a
// miss and writes the result back with the given TTL. Cache errors other
// than a miss are logged and treated as a miss; a failed write-back never
// fails the read.
func (c *ReadThroughCache) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	cached, err := c.cache.Get(ctx, key)
	switch {
	case err == nil:
		if c.metrics != nil {
			c.metrics.IncCacheHit()
		}
		return cached, nil
	case errors.Is(err, repository.ErrNotFound):
		// Plain miss, fall through to compute.
	default:
		c.logger.Warn("cache read failed, treating as miss", zap.String("key", key), zap.Error(err))
	}
	if c.metrics != nil {
		c.metrics.IncCacheMiss()
	}

	value, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	if setErr := c.cache.Set(ctx, key, value, ttl); setErr != nil {
		c.logger.Warn("cache write-back failed", zap.String("key", key), zap.Error(setErr))
	}
	return value, nil
}

// Invalidate removes the given keys. Failures are logged, never returned;
// a stale entry ages out via its TTL.
func (c *ReadThroughCache) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.cache.Delete(ctx, keys...); err != nil {
		c.logger.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// cachedJSON routes a typed read through the cache, marshalling the computed
// value to JSON for storage.
func cachedJSON[T any](ctx context.Context, c *ReadThroughCache, key string, ttl time.Duration, compute func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	raw, err := c.GetOrCompute(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		value, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(value)
	})
	if err != nil {
		return zero, err
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("decode cached value for %s: %w", key, err)
	}
	return out, nil
}

// Cache key builders. Keys are shared between the read paths that populate
// them and the write paths that invalidate them, so they live in one place.

func profileKey(username string) string { return "profile:" + username }

func profileStatsKey(id string) string { return "profile_stats:" + id }

func profilePageKey(page, perPage int) string {
	return fmt.Sprintf("profiles:page:%d:%d", page, perPage)
}

func projectKey(slug string) string { return "project:" + slug }

func projectStatsKey(id string) string { return "project_stats:" + id }

func projectPageKey(page, perPage int) string {
	return fmt.Sprintf("projects:page:%d:%d", page, perPage)
}

func projectRolesKey(slug string) string { return "project_roles:" + slug }

func followKey(followerID, followingID string) string {
	return fmt.Sprintf("follow:%s:%s", followerID, followingID)
}

func favoriteKey(userID, projectID string) string {
	return fmt.Sprintf("favorite:%s:%s", userID, projectID)
}
