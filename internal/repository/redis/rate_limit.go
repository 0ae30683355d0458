package redis

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tarasovcad/matchme-platform/internal/core/port"
)

// SlidingWindowConfig defines configuration for the sliding window store.
type SlidingWindowConfig struct {
	KeyPrefix string
}

// RateLimitRepository persists rate-limit attempts in Redis sorted sets. The
// whole trim/count/record sequence runs as one Lua script so concurrent
// checks against the same subject cannot interleave between the count and
// the record.
type RateLimitRepository struct {
	client *redis.Client
	cfg    SlidingWindowConfig
}

// allowScript trims members older than the trailing window, counts the rest,
// records the new attempt only when the count is below quota, and refreshes
// the key TTL to the window length so idle subjects expire on their own.
// Returns {admitted, count, oldest score or -1}.
var allowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local quota = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)

local count = redis.call('ZCARD', key)
local admitted = 0
if count < quota then
    redis.call('ZADD', key, now, member)
    redis.call('PEXPIRE', key, math.ceil(window / 1000000))
    admitted = 1
    count = count + 1
end

local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if #oldest == 0 then
    return {admitted, count, '-1'}
end
return {admitted, count, oldest[2]}
`)

// NewRateLimitRepository constructs a repository using the provided Redis client and config.
func NewRateLimitRepository(client *redis.Client, cfg SlidingWindowConfig) *RateLimitRepository {
	return &RateLimitRepository{client: client, cfg: cfg}
}

// Allow runs the atomic sliding-window check for the identifier. Denied
// attempts do not touch the stored window.
func (r *RateLimitRepository) Allow(ctx context.Context, identifier string, quota int, window time.Duration, at time.Time) (port.WindowState, error) {
	if quota <= 0 {
		return port.WindowState{}, errors.New("quota must be positive")
	}
	if window <= 0 {
		return port.WindowState{}, errors.New("window must be positive")
	}

	key := r.key(identifier)
	now := at.UnixNano()
	// Member carries a random suffix so two attempts landing on the same
	// nanosecond still count as distinct window entries.
	member := fmt.Sprintf("%d-%d", now, rand.Int63())

	raw, err := allowScript.Run(ctx, r.client,
		[]string{key},
		now,
		window.Nanoseconds(),
		quota,
		member,
	).Slice()
	if err != nil {
		return port.WindowState{}, fmt.Errorf("redis sliding window script: %w", err)
	}
	if len(raw) != 3 {
		return port.WindowState{}, fmt.Errorf("unexpected script reply of length %d", len(raw))
	}

	admitted, err := toInt64(raw[0])
	if err != nil {
		return port.WindowState{}, fmt.Errorf("parse admitted flag: %w", err)
	}
	count, err := toInt64(raw[1])
	if err != nil {
		return port.WindowState{}, fmt.Errorf("parse window count: %w", err)
	}

	state := port.WindowState{
		Admitted: admitted == 1,
		Count:    int(count),
	}

	oldestRaw, ok := raw[2].(string)
	if !ok {
		return port.WindowState{}, fmt.Errorf("unexpected oldest score type %T", raw[2])
	}
	oldest, err := strconv.ParseFloat(oldestRaw, 64)
	if err != nil {
		return port.WindowState{}, fmt.Errorf("parse oldest score: %w", err)
	}
	if oldest >= 0 {
		state.Oldest = time.Unix(0, int64(oldest))
		state.HasOldest = true
	}

	return state, nil
}

func (r *RateLimitRepository) key(identifier string) string {
	if r.cfg.KeyPrefix == "" {
		return identifier
	}
	return fmt.Sprintf("%s:%s", r.cfg.KeyPrefix, identifier)
}

func toInt64(v any) (int64, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected reply type %T", v)
	}
}

var _ port.RateLimitStore = (*RateLimitRepository)(nil)
