package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"edulearn-engine/internal/domain"
)

type countingLoader struct {
	inner Loader
	calls int
}

func (l *countingLoader) LoadModules(ctx context.Context) ([]domain.ModuleInfo, error) {
	l.calls++
	return l.inner.LoadModules(ctx)
}

func TestCacheServesFromMemoryWithinTTL(t *testing.T) {
	loader := &countingLoader{inner: NewStaticLoader()}
	cache := NewCache(loader, time.Minute)

	ctx := context.Background()
	if _, err := cache.List(ctx, ""); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, err := cache.List(ctx, ""); err != nil {
		t.Fatalf("list: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", loader.calls)
	}
}

func TestCacheReloadsAfterExpiry(t *testing.T) {
	loader := &countingLoader{inner: NewStaticLoader()}
	cache := NewCache(loader, time.Minute)

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	cache.clock = func() time.Time { return now }

	ctx := context.Background()
	if _, err := cache.List(ctx, ""); err != nil {
		t.Fatalf("list: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := cache.List(ctx, ""); err != nil {
		t.Fatalf("list: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after TTL, got %d calls", loader.calls)
	}
}

func TestListFiltersBySubject(t *testing.T) {
	cache := NewCache(NewStaticLoader(), time.Minute)

	science, err := cache.List(context.Background(), "science")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(science) == 0 {
		t.Fatalf("expected science modules")
	}
	for _, m := range science {
		if m.Subject != "Science" {
			t.Fatalf("unexpected subject %s", m.Subject)
		}
	}
}

func TestGetUnknownModule(t *testing.T) {
	cache := NewCache(NewStaticLoader(), time.Minute)

	if _, err := cache.Get(context.Background(), "math-fractions"); err != nil {
		t.Fatalf("get: %v", err)
	}
	_, err := cache.Get(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
