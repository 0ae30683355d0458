package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tarasovcad/matchme-platform/internal/core/port"
	"github.com/tarasovcad/matchme-platform/internal/usecase"
)

type fakeAllowStore struct {
	mu      sync.Mutex
	entries map[string][]time.Time
	err     error
}

func newFakeAllowStore() *fakeAllowStore {
	return &fakeAllowStore{entries: make(map[string][]time.Time)}
}

func (f *fakeAllowStore) Allow(_ context.Context, identifier string, quota int, window time.Duration, at time.Time) (port.WindowState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return port.WindowState{}, f.err
	}

	cutoff := at.Add(-window)
	kept := f.entries[identifier][:0]
	for _, t := range f.entries[identifier] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	state := port.WindowState{Count: len(kept)}
	if len(kept) < quota {
		kept = append(kept, at)
		state.Admitted = true
		state.Count = len(kept)
	}
	f.entries[identifier] = kept

	if len(kept) > 0 {
		state.Oldest = kept[0]
		state.HasOldest = true
	}
	return state, nil
}

func globalLimiter(store port.RateLimitStore, quota int) *usecase.Limiter {
	return usecase.NewLimiter(store, map[string][]usecase.Rule{
		"api.global": {{Scope: usecase.ScopeIP, Quota: quota, Window: time.Minute}},
	})
}

func newRateLimitedRouter(limiter *usecase.Limiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(EnrichContext(), Identity(), RateLimit(limiter, "api.global"))
	router.GET("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestRateLimitAllowsBelowQuota(t *testing.T) {
	router := newRateLimitedRouter(globalLimiter(newFakeAllowStore(), 5))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := rr.Header().Get("X-RateLimit-Limit"); got != "5" {
		t.Fatalf("expected limit header 5, got %q", got)
	}
	if got := rr.Header().Get("X-RateLimit-Remaining"); got != "4" {
		t.Fatalf("expected remaining header 4, got %q", got)
	}
}

func TestRateLimitRejectsWhenExhausted(t *testing.T) {
	router := newRateLimitedRouter(globalLimiter(newFakeAllowStore(), 2))

	var rr *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)
	}

	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}

	retryAfter, err := strconv.Atoi(rr.Header().Get("Retry-After"))
	if err != nil || retryAfter <= 0 {
		t.Fatalf("expected positive Retry-After, got %q", rr.Header().Get("Retry-After"))
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rr.Body.Bytes(), &problem); err != nil {
		t.Fatalf("decode problem payload: %v", err)
	}
	if problem.Status != http.StatusTooManyRequests {
		t.Fatalf("unexpected problem status %d", problem.Status)
	}
	if problem.Detail == "" {
		t.Fatal("expected a human readable detail")
	}
	if problem.Extensions["scope"] != "ip" {
		t.Fatalf("expected ip scope, got %v", problem.Extensions["scope"])
	}
}

func TestRateLimitIsolatesClientIPs(t *testing.T) {
	router := newRateLimitedRouter(globalLimiter(newFakeAllowStore(), 1))

	first := httptest.NewRequest(http.MethodGet, "/", nil)
	first.RemoteAddr = "192.0.2.1:1234"
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, first)
	if rr.Code != http.StatusOK {
		t.Fatalf("first client should pass, got %d", rr.Code)
	}

	second := httptest.NewRequest(http.MethodGet, "/", nil)
	second.RemoteAddr = "192.0.2.2:1234"
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, second)
	if rr.Code != http.StatusOK {
		t.Fatalf("a different client must not share the window, got %d", rr.Code)
	}
}

func TestRateLimitFailsOpenOnStoreError(t *testing.T) {
	store := newFakeAllowStore()
	store.err = errors.New("connection refused")
	router := newRateLimitedRouter(globalLimiter(store, 1))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("store failure must not reject requests, got %d", rr.Code)
	}
}

func TestRateLimitSkipsWithoutLimiter(t *testing.T) {
	router := newRateLimitedRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected pass-through, got %d", rr.Code)
	}
}
