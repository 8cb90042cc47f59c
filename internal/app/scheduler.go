package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"toiletsync/internal/domain"
)

// Scheduler advances through the batches on a fixed interval, keeping its
// position in the status store so a restart resumes where it stopped. It takes
// no lock: an overlapping HTTP-triggered run is harmless because upserts are idempotent.
type Scheduler struct {
	svc      *SyncService
	status   domain.StatusStore
	interval time.Duration
}

func NewScheduler(svc *SyncService, status domain.StatusStore, interval time.Duration) *Scheduler {
	return &Scheduler{svc: svc, status: status, interval: interval}
}

func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return nil
	}
	if s.status == nil {
		log.Warn().Msg("scheduler needs a status store for its cursor; not started")
		return nil
	}
	log.Info().Dur("interval", s.interval).Msg("scheduler started")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("scheduler stopped")
			return nil
		case <-ticker.C:
			if _, err := s.Tick(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("scheduled batch failed")
			}
		}
	}
}

// Tick runs the batch at the stored cursor and stores the following one,
// wrapping to 0 after the last batch.
func (s *Scheduler) Tick(ctx context.Context) (domain.BatchResult, error) {
	idx, err := s.status.Cursor(ctx)
	if err != nil {
		return domain.BatchResult{}, err
	}
	ctx = WithRunID(ctx, "")
	res, err := s.svc.RunBatch(ctx, idx)
	if errors.Is(err, domain.ErrInvalidBatch) {
		// corrupt cursor; start a fresh pass
		return domain.BatchResult{}, s.status.SetCursor(ctx, 0)
	}
	if err != nil {
		return domain.BatchResult{}, err
	}
	next := 0
	if res.NextBatch != nil {
		next = *res.NextBatch
	}
	log.Info().Str("run_id", RunID(ctx)).Int("batch", idx).Int("next", next).Msg("scheduled batch done")
	return res, s.status.SetCursor(ctx, next)
}
