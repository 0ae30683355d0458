package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/tarasovcad/matchme-platform/internal/core/port"
	"github.com/tarasovcad/matchme-platform/internal/repository"
)

const defaultCachePrefix = "cache"

// CacheRepository stores short-lived serialized projections in Redis.
type CacheRepository struct {
	client *red.Client
	prefix string
}

// NewCacheRepository constructs a cache repository with the provided key prefix.
func NewCacheRepository(client *red.Client, keyPrefix string) *CacheRepository {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultCachePrefix
	}

	return &CacheRepository{client: client, prefix: prefix}
}

// Get fetches the cached value, returning repository.ErrNotFound on a miss.
func (r *CacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	full := r.key(key)
	if full == "" {
		return nil, errors.New("cache key is required")
	}

	value, err := r.client.Get(ctx, full).Bytes()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	return value, nil
}

// Set stores the value with the provided TTL.
func (r *CacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	full := r.key(key)
	if full == "" {
		return errors.New("cache key is required")
	}
	if ttl <= 0 {
		return errors.New("ttl must be positive")
	}

	if err := r.client.Set(ctx, full, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes the provided keys. Missing keys are not an error.
func (r *CacheRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	full := make([]string, 0, len(keys))
	for _, key := range keys {
		if k := r.key(key); k != "" {
			full = append(full, k)
		}
	}
	if len(full) == 0 {
		return nil
	}

	if err := r.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

func (r *CacheRepository) key(key string) string {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s", r.prefix, trimmed)
}

var _ port.Cache = (*CacheRepository)(nil)
