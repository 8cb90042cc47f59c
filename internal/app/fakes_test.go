package app_test

import (
	"context"
	"errors"
	"sync"

	"toiletsync/internal/domain"
	"toiletsync/internal/regions"
)

// ---- fakes ----

type fakeDirectory struct {
	mu     sync.Mutex
	calls  []string
	byID   map[string]domain.RegionFetch
	failOn map[string]bool
}

func (f *fakeDirectory) FetchRegion(ctx context.Context, r domain.Region) domain.RegionFetch {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, r.ID)
	if f.failOn[r.ID] {
		return domain.RegionFetch{Failed: true}
	}
	if got, ok := f.byID[r.ID]; ok {
		return got
	}
	return domain.RegionFetch{}
}

type failingRepo struct{ domain.CatalogRepository }

func (failingRepo) UpsertEntry(ctx context.Context, e domain.CatalogEntry) (domain.UpsertOutcome, error) {
	return domain.Unchanged, errors.New("catalog unavailable")
}

type fakeStatus struct {
	mu      sync.Mutex
	cursor  int
	regions map[string]domain.RegionStatus
}

func (f *fakeStatus) SaveRegionStatus(ctx context.Context, s domain.RegionStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.regions == nil {
		f.regions = map[string]domain.RegionStatus{}
	}
	f.regions[s.RegionID] = s
	return nil
}

func (f *fakeStatus) RegionStatuses(ctx context.Context, ids []string) ([]domain.RegionStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.RegionStatus
	for _, id := range ids {
		if s, ok := f.regions[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStatus) Cursor(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursor, nil
}

func (f *fakeStatus) SetCursor(ctx context.Context, next int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cursor = next
	return nil
}

const smallTable = `
cities:
  - key: cityA
    name: A市
    regions:
      - { id: a1, name: A1區, label: A1 }
      - { id: a2, name: A2區, label: A2 }
  - key: cityB
    name: B市
    regions:
      - { id: b1, name: B1區, label: B1 }
`

func smallRegistry() *regions.Registry {
	r, err := regions.Load([]byte(smallTable))
	if err != nil {
		panic(err)
	}
	return r
}

func toiletStore(id string) domain.Store {
	return domain.Store{POIID: id, Name: "store " + id, Address: "addr " + id, Services: []string{"02廁所"}, HasToilet: true}
}
