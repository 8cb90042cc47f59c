package domain

import "context"

type CatalogRepository interface {
	// Write path
	UpsertEntry(ctx context.Context, e CatalogEntry) (UpsertOutcome, error)

	// Read paths
	GetEntry(ctx context.Context, poiID string) (CatalogEntry, error)
	CountEntries(ctx context.Context) (int64, error)
}

type Directory interface {
	FetchRegion(ctx context.Context, r Region) RegionFetch
}

type RegionSource interface {
	All() []Region
	ByID(id string) (Region, bool)
	ByCity(city string) []Region
}

// StatusStore keeps the batch cursor and the last result of every region.
type StatusStore interface {
	SaveRegionStatus(ctx context.Context, s RegionStatus) error
	RegionStatuses(ctx context.Context, ids []string) ([]RegionStatus, error)
	Cursor(ctx context.Context) (int, error)
	SetCursor(ctx context.Context, next int) error
}
