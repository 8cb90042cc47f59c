package domain

import "time"

// RegionFetch is what the directory client hands back for one region.
// Found counts every parsed store; Stores holds only the restroom-enabled ones.
type RegionFetch struct {
	Found  int
	Stores []Store
	Failed bool
}

type RegionResult struct {
	Region     string `json:"region"`
	RegionID   string `json:"region_id"`
	City       string `json:"city"`
	TotalFound int    `json:"total_found"`
	WithToilet int    `json:"with_toilet"`
	Added      int    `json:"added"`
	Updated    int    `json:"updated"`
	Failed     bool   `json:"failed,omitempty"`
}

type Totals struct {
	TotalFound    int `json:"total_found"`
	WithToilet    int `json:"with_toilet"`
	Added         int `json:"added"`
	Updated       int `json:"updated"`
	FailedRegions int `json:"failed_regions"`
}

func (t *Totals) Add(r RegionResult) {
	t.TotalFound += r.TotalFound
	t.WithToilet += r.WithToilet
	t.Added += r.Added
	t.Updated += r.Updated
	if r.Failed {
		t.FailedRegions++
	}
}

// BatchResult is returned by one resumable batch invocation. NextBatch is nil once
// the final window has been processed.
type BatchResult struct {
	Message      string         `json:"message,omitempty"`
	Batch        int            `json:"batch"`
	NextBatch    *int           `json:"nextBatch"`
	TotalRegions int            `json:"totalRegions"`
	Regions      []RegionResult `json:"regions"`
	Totals       Totals         `json:"totals"`
}

type CityResult struct {
	City    string         `json:"city"`
	Regions []RegionResult `json:"regions"`
	Totals  Totals         `json:"totals"`
}

// RegionStatus is the last recorded sync of one region.
type RegionStatus struct {
	RegionResult
	RunID    string    `json:"run_id"`
	SyncedAt time.Time `json:"synced_at"`
}

type SyncStatus struct {
	Cursor         int            `json:"cursor"`
	CatalogEntries int64          `json:"catalog_entries"`
	Regions        []RegionStatus `json:"regions"`
}
