package usecase

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestGetOrComputeMissComputesAndStores(t *testing.T) {
	cache := newFakeCache()
	rtc := NewReadThroughCache(cache)

	computes := 0
	value, err := rtc.GetOrCompute(context.Background(), "project:alpha", time.Minute, func(context.Context) ([]byte, error) {
		computes++
		return []byte(`{"slug":"alpha"}`), nil
	})
	if err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}
	if string(value) != `{"slug":"alpha"}` {
		t.Fatalf("unexpected value %s", value)
	}
	if computes != 1 {
		t.Fatalf("expected one compute, got %d", computes)
	}
	if _, ok := cache.data["project:alpha"]; !ok {
		t.Fatal("expected the computed value to be written back")
	}
}

func TestGetOrComputeHitSkipsCompute(t *testing.T) {
	cache := newFakeCache()
	cache.data["project:alpha"] = []byte(`cached`)
	rtc := NewReadThroughCache(cache)

	value, err := rtc.GetOrCompute(context.Background(), "project:alpha", time.Minute, func(context.Context) ([]byte, error) {
		t.Fatal("compute must not run on a hit")
		return nil, nil
	})
	if err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}
	if string(value) != "cached" {
		t.Fatalf("unexpected value %s", value)
	}
}

func TestGetOrComputeDegradesOnCacheError(t *testing.T) {
	cache := newFakeCache()
	cache.getErr = errors.New("connection refused")
	rtc := NewReadThroughCache(cache)

	value, err := rtc.GetOrCompute(context.Background(), "project:alpha", time.Minute, func(context.Context) ([]byte, error) {
		return []byte("fresh"), nil
	})
	if err != nil {
		t.Fatalf("cache failure must not fail the read: %v", err)
	}
	if string(value) != "fresh" {
		t.Fatalf("unexpected value %s", value)
	}
}

func TestGetOrComputeSetFailureStillReturnsValue(t *testing.T) {
	cache := newFakeCache()
	cache.setErr = errors.New("readonly replica")
	rtc := NewReadThroughCache(cache)

	value, err := rtc.GetOrCompute(context.Background(), "project:alpha", time.Minute, func(context.Context) ([]byte, error) {
		return []byte("fresh"), nil
	})
	if err != nil {
		t.Fatalf("write-back failure must not fail the read: %v", err)
	}
	if string(value) != "fresh" {
		t.Fatalf("unexpected value %s", value)
	}
}

func TestGetOrComputePropagatesComputeError(t *testing.T) {
	rtc := NewReadThroughCache(newFakeCache())

	wantErr := errors.New("query timeout")
	_, err := rtc.GetOrCompute(context.Background(), "project:alpha", time.Minute, func(context.Context) ([]byte, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected compute error, got %v", err)
	}
}

func TestInvalidateSwallowsErrors(t *testing.T) {
	cache := newFakeCache()
	cache.data["a"] = []byte("1")
	cache.delErr = errors.New("connection refused")

	rtc := NewReadThroughCache(cache)
	rtc.Invalidate(context.Background(), "a")

	// The entry remains and the caller was not bothered. TTL expiry is
	// the fallback for this case.
	if _, ok := cache.data["a"]; !ok {
		t.Fatal("entry should survive a failed delete")
	}
}

func TestCachedJSONRoundTrip(t *testing.T) {
	cache := newFakeCache()
	rtc := NewReadThroughCache(cache)
	ctx := context.Background()

	type payload struct {
		Slug  string `json:"slug"`
		Count int    `json:"count"`
	}

	computes := 0
	compute := func(context.Context) (payload, error) {
		computes++
		return payload{Slug: "alpha", Count: 7}, nil
	}

	first, err := cachedJSON(ctx, rtc, "stats:alpha", time.Minute, compute)
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	second, err := cachedJSON(ctx, rtc, "stats:alpha", time.Minute, compute)
	if err != nil {
		t.Fatalf("second read: %v", err)
	}

	if computes != 1 {
		t.Fatalf("expected a single compute, got %d", computes)
	}
	if first != second {
		t.Fatalf("cached value diverged: %+v vs %+v", first, second)
	}
	if second.Slug != "alpha" || second.Count != 7 {
		t.Fatalf("unexpected payload %+v", second)
	}
}

func TestCacheMetricsObserveHitsAndMisses(t *testing.T) {
	metrics := &cacheMetricsRecorder{}
	cache := newFakeCache()
	rtc := NewReadThroughCache(cache).WithMetrics(metrics)
	ctx := context.Background()

	compute := func(context.Context) ([]byte, error) { return []byte("v"), nil }

	if _, err := rtc.GetOrCompute(ctx, "k", time.Minute, compute); err != nil {
		t.Fatalf("miss read: %v", err)
	}
	if _, err := rtc.GetOrCompute(ctx, "k", time.Minute, compute); err != nil {
		t.Fatalf("hit read: %v", err)
	}

	if metrics.misses != 1 || metrics.hits != 1 {
		t.Fatalf("expected 1 miss and 1 hit, got %d/%d", metrics.misses, metrics.hits)
	}
}

type cacheMetricsRecorder struct {
	hits   int
	misses int
}

func (m *cacheMetricsRecorder) IncCacheHit()  { m.hits++ }
func (m *cacheMetricsRecorder) IncCacheMiss() { m.misses++ }
