// Package memory is a process-local catalog used for development runs and tests.
package memory

import (
	"context"
	"sync"

	"toiletsync/internal/domain"
)

type Repo struct {
	mu      sync.RWMutex
	entries map[string]domain.CatalogEntry
}

func New() *Repo { return &Repo{entries: map[string]domain.CatalogEntry{}} }

// UpsertEntry always writes; an existing key is reported as Updated.
func (r *Repo) UpsertEntry(_ context.Context, e domain.CatalogEntry) (domain.UpsertOutcome, error) {
	e.HasToilet = true
	e.Services = append([]string{}, e.Services...)

	r.mu.Lock()
	defer r.mu.Unlock()
	prev, ok := r.entries[e.POIID]
	if ok {
		e.CreatedAt = prev.CreatedAt
	}
	r.entries[e.POIID] = e
	if ok {
		return domain.Updated, nil
	}
	return domain.Inserted, nil
}

func (r *Repo) GetEntry(_ context.Context, poiID string) (domain.CatalogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[poiID]
	if !ok {
		return domain.CatalogEntry{}, domain.ErrNotFound
	}
	e.Services = append([]string{}, e.Services...)
	return e, nil
}

func (r *Repo) CountEntries(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.entries)), nil
}
