package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"toiletsync/internal/adapters/observability"
	"toiletsync/internal/domain"
)

const DefaultBatchSize = 5

type Options struct {
	BatchSize   int
	RegionDelay time.Duration      // pause between consecutive regions; zero disables it
	Status      domain.StatusStore // optional
	Now         func() time.Time
}

// SyncService runs the per-region sync (fetch, classify, upsert) over one of
// three region selections: a single id, a whole city, or a batch window.
// Regions are always processed one at a time.
type SyncService struct {
	dir       domain.Directory
	writer    *CatalogWriter
	regions   domain.RegionSource
	status    domain.StatusStore
	batchSize int
	delay     time.Duration
	now       func() time.Time
}

func NewSyncService(dir domain.Directory, repo domain.CatalogRepository, regions domain.RegionSource, o Options) *SyncService {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.RegionDelay < 0 {
		o.RegionDelay = 0
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return &SyncService{
		dir:       dir,
		writer:    NewCatalogWriter(repo, o.Now),
		regions:   regions,
		status:    o.Status,
		batchSize: o.BatchSize,
		delay:     o.RegionDelay,
		now:       o.Now,
	}
}

func (s *SyncService) BatchSize() int { return s.batchSize }

// SyncRegion fetches one region and upserts its restroom stores. A failed fetch
// yields a zero-count result, not an error; a failed catalog write is an error.
func (s *SyncService) SyncRegion(ctx context.Context, r domain.Region) (domain.RegionResult, error) {
	f := s.dir.FetchRegion(ctx, r)
	res := domain.RegionResult{
		Region:     r.Name,
		RegionID:   r.ID,
		City:       r.City,
		TotalFound: f.Found,
		WithToilet: len(f.Stores),
		Failed:     f.Failed,
	}
	for _, st := range f.Stores {
		out, err := s.writer.Upsert(ctx, st, r)
		if err != nil {
			return res, fmt.Errorf("region %s store %s: %w", r.ID, st.POIID, err)
		}
		switch out {
		case domain.Inserted:
			res.Added++
		case domain.Updated:
			res.Updated++
		}
	}
	observability.ObserveRegion(r.City, res.Failed, res.TotalFound, res.WithToilet)

	log.Info().
		Str("run_id", RunID(ctx)).
		Str("region", r.ID).
		Str("name", r.Label).
		Int("found", res.TotalFound).
		Int("with_toilet", res.WithToilet).
		Int("added", res.Added).
		Int("updated", res.Updated).
		Bool("failed", res.Failed).
		Msg("region synced")

	s.recordStatus(ctx, res)
	return res, nil
}

func (s *SyncService) recordStatus(ctx context.Context, res domain.RegionResult) {
	if s.status == nil {
		return
	}
	st := domain.RegionStatus{RegionResult: res, RunID: RunID(ctx), SyncedAt: s.now().UTC()}
	if err := s.status.SaveRegionStatus(ctx, st); err != nil {
		log.Warn().Err(err).Str("region", res.RegionID).Msg("save region status failed")
	}
}

// syncSequential runs regs in order with the fixed delay between consecutive regions.
func (s *SyncService) syncSequential(ctx context.Context, regs []domain.Region) ([]domain.RegionResult, domain.Totals, error) {
	results := make([]domain.RegionResult, 0, len(regs))
	var totals domain.Totals
	for i, r := range regs {
		if i > 0 && !sleepCtx(ctx, s.delay) {
			return results, totals, ctx.Err()
		}
		res, err := s.SyncRegion(ctx, r)
		if err != nil {
			return results, totals, err
		}
		results = append(results, res)
		totals.Add(res)
	}
	return results, totals, nil
}

func (s *SyncService) RunSingleRegion(ctx context.Context, id string) (res domain.RegionResult, err error) {
	defer func() { observability.ObserveRun("region", err) }()
	r, ok := s.regions.ByID(id)
	if !ok {
		return domain.RegionResult{}, fmt.Errorf("%w: %q", domain.ErrUnknownRegion, id)
	}
	return s.SyncRegion(ctx, r)
}

func (s *SyncService) RunCity(ctx context.Context, city string) (out domain.CityResult, err error) {
	defer func() { observability.ObserveRun("city", err) }()
	regs := s.regions.ByCity(city)
	if len(regs) == 0 {
		return domain.CityResult{}, fmt.Errorf("%w: %q", domain.ErrUnknownCity, city)
	}
	results, totals, err := s.syncSequential(ctx, regs)
	if err != nil {
		return domain.CityResult{}, err
	}
	return domain.CityResult{City: city, Regions: results, Totals: totals}, nil
}

// BatchWindow returns the [start,end) slice of a total-length list covered by
// batch index, or ok=false once index is past the last batch.
func BatchWindow(total, size, index int) (start, end int, ok bool) {
	if size <= 0 || index < 0 {
		return 0, 0, false
	}
	batches := (total + size - 1) / size
	if index >= batches {
		return 0, 0, false
	}
	start = index * size
	end = start + size
	if end > total {
		end = total
	}
	return start, end, true
}

// RunBatch processes one window of the ordered region list and points at the next one.
func (s *SyncService) RunBatch(ctx context.Context, index int) (out domain.BatchResult, err error) {
	defer func() { observability.ObserveRun("batch", err) }()
	if index < 0 {
		return domain.BatchResult{}, fmt.Errorf("%w: %d", domain.ErrInvalidBatch, index)
	}
	all := s.regions.All()
	out = domain.BatchResult{Batch: index, TotalRegions: len(all), Regions: []domain.RegionResult{}}

	start, end, ok := BatchWindow(len(all), s.batchSize, index)
	if !ok {
		out.Message = "all regions processed"
		return out, nil
	}
	results, totals, err := s.syncSequential(ctx, all[start:end])
	if err != nil {
		return domain.BatchResult{}, err
	}
	out.Regions = results
	out.Totals = totals
	if end < len(all) {
		next := index + 1
		out.NextBatch = &next
	}
	return out, nil
}

// RunAll walks every batch from 0 until the list is exhausted.
func (s *SyncService) RunAll(ctx context.Context) ([]domain.BatchResult, error) {
	var out []domain.BatchResult
	for idx := 0; ; {
		res, err := s.RunBatch(ctx, idx)
		if err != nil {
			return out, err
		}
		out = append(out, res)
		if res.NextBatch == nil {
			return out, nil
		}
		if !sleepCtx(ctx, s.delay) {
			return out, ctx.Err()
		}
		idx = *res.NextBatch
	}
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
