package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"toiletsync/internal/domain"
	"toiletsync/internal/storage/memory"
)

func TestRepo_UpsertKeepsCreatedAt(t *testing.T) {
	r := memory.New()
	ctx := context.Background()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)

	got, _ := r.UpsertEntry(ctx, domain.CatalogEntry{POIID: "1", Name: "a", CreatedAt: t0, UpdatedAt: t0})
	if got != domain.Inserted {
		t.Fatalf("first: %s", got)
	}
	got, _ = r.UpsertEntry(ctx, domain.CatalogEntry{POIID: "1", Name: "b", CreatedAt: t1, UpdatedAt: t1})
	if got != domain.Updated {
		t.Fatalf("second: %s", got)
	}
	e, err := r.GetEntry(ctx, "1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e.Name != "b" || !e.CreatedAt.Equal(t0) || !e.UpdatedAt.Equal(t1) || !e.HasToilet {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if _, err := r.GetEntry(ctx, "2"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepo_ConcurrentSameKeyInsertsOnce(t *testing.T) {
	r := memory.New()
	ctx := context.Background()
	var wg sync.WaitGroup
	var mu sync.Mutex
	inserted := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, _ := r.UpsertEntry(ctx, domain.CatalogEntry{POIID: "same"})
			if got == domain.Inserted {
				mu.Lock()
				inserted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if inserted != 1 {
		t.Fatalf("expected exactly one insert, got %d", inserted)
	}
	if n, _ := r.CountEntries(ctx); n != 1 {
		t.Fatalf("expected one entry, got %d", n)
	}
}
