package app

import (
	"context"
	"time"

	"toiletsync/internal/adapters/observability"
	"toiletsync/internal/domain"
)

// CatalogWriter is the only path that writes catalog entries.
type CatalogWriter struct {
	repo domain.CatalogRepository
	now  func() time.Time
}

func NewCatalogWriter(r domain.CatalogRepository, now func() time.Time) *CatalogWriter {
	if now == nil {
		now = time.Now
	}
	return &CatalogWriter{repo: r, now: now}
}

// Upsert writes s keyed by its POI id. Stores without a restroom are refused.
func (w *CatalogWriter) Upsert(ctx context.Context, s domain.Store, r domain.Region) (domain.UpsertOutcome, error) {
	if !s.HasToilet {
		return domain.Unchanged, domain.ErrNoRestroom
	}
	out, err := w.repo.UpsertEntry(ctx, mapEntry(s, r, w.now().UTC()))
	if err != nil {
		observability.ObserveUpsert("error")
		return domain.Unchanged, err
	}
	observability.ObserveUpsert(out.String())
	return out, nil
}
