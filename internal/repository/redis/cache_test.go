package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tarasovcad/matchme-platform/internal/repository"
)

func TestCacheRepository_SetGetDelete(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewCacheRepository(client, "cache")

	ctx := context.Background()

	if err := repo.Set(ctx, "project:acme-inc", []byte(`{"slug":"acme-inc"}`), 10*time.Minute); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	value, err := repo.Get(ctx, "project:acme-inc")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if string(value) != `{"slug":"acme-inc"}` {
		t.Fatalf("unexpected cached value: %s", value)
	}

	if err := repo.Delete(ctx, "project:acme-inc"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if _, err := repo.Get(ctx, "project:acme-inc"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestCacheRepository_MissReturnsErrNotFound(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewCacheRepository(client, "cache")

	if _, err := repo.Get(context.Background(), "absent"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCacheRepository_EntryExpiresViaTTL(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewCacheRepository(client, "cache")

	ctx := context.Background()

	if err := repo.Set(ctx, "project_stats:acme-inc", []byte(`{"followers":3}`), 2*time.Minute); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	server.FastForward(3 * time.Minute)

	if _, err := repo.Get(ctx, "project_stats:acme-inc"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after TTL, got %v", err)
	}
}

func TestCacheRepository_DeleteManyIgnoresMissing(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewCacheRepository(client, "cache")

	ctx := context.Background()

	if err := repo.Set(ctx, "favorite:u1:p1", []byte("true"), time.Minute); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	if err := repo.Delete(ctx, "favorite:u1:p1", "favorite:u1:p2"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
}
