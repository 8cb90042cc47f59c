package app

import (
	"context"

	"toiletsync/internal/domain"
)

// StatusService answers read-only questions about the catalog and past runs.
type StatusService struct {
	repo    domain.CatalogRepository
	regions domain.RegionSource
	status  domain.StatusStore
}

func NewStatusService(r domain.CatalogRepository, regions domain.RegionSource, st domain.StatusStore) *StatusService {
	return &StatusService{repo: r, regions: regions, status: st}
}

func (q *StatusService) GetEntry(ctx context.Context, poiID string) (domain.CatalogEntry, error) {
	return q.repo.GetEntry(ctx, poiID)
}

func (q *StatusService) Status(ctx context.Context) (domain.SyncStatus, error) {
	n, err := q.repo.CountEntries(ctx)
	if err != nil {
		return domain.SyncStatus{}, err
	}
	out := domain.SyncStatus{CatalogEntries: n, Regions: []domain.RegionStatus{}}
	if q.status == nil {
		return out, nil
	}
	if out.Cursor, err = q.status.Cursor(ctx); err != nil {
		return domain.SyncStatus{}, err
	}
	all := q.regions.All()
	ids := make([]string, 0, len(all))
	for _, r := range all {
		ids = append(ids, r.ID)
	}
	sts, err := q.status.RegionStatuses(ctx, ids)
	if err != nil {
		return domain.SyncStatus{}, err
	}
	if sts != nil {
		out.Regions = sts
	}
	return out, nil
}
