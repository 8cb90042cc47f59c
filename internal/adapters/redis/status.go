package redisad

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"toiletsync/internal/adapters/observability"
	"toiletsync/internal/domain"
)

const (
	cursorKey  = "toiletsync:cursor"
	regionsKey = "toiletsync:regions"
)

// StatusStore keeps the scheduler cursor and the last result per region in redis.
type StatusStore struct{ c *redis.Client }

func New(addr, pass string, db int) *StatusStore {
	return &StatusStore{c: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

func (s *StatusStore) Ping(ctx context.Context) error { return s.c.Ping(ctx).Err() }

func (s *StatusStore) Close() error { return s.c.Close() }

func (s *StatusStore) SaveRegionStatus(ctx context.Context, st domain.RegionStatus) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	observability.ObserveCache("redis", "set")
	return s.c.HSet(ctx, regionsKey, st.RegionID, b).Err()
}

// RegionStatuses returns the recorded status for each id, in order, skipping ids never synced.
func (s *StatusStore) RegionStatuses(ctx context.Context, ids []string) ([]domain.RegionStatus, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	vals, err := s.c.HMGet(ctx, regionsKey, ids...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]domain.RegionStatus, 0, len(vals))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			observability.ObserveCache("redis", "miss")
			continue
		}
		observability.ObserveCache("redis", "hit")
		var st domain.RegionStatus
		if err := json.Unmarshal([]byte(raw), &st); err != nil {
			return nil, fmt.Errorf("decode status for region %s: %w", ids[i], err)
		}
		out = append(out, st)
	}
	return out, nil
}

// Cursor returns the next batch index to run; 0 when none has been stored yet.
func (s *StatusStore) Cursor(ctx context.Context) (int, error) {
	n, err := s.c.Get(ctx, cursorKey).Int()
	if errors.Is(err, redis.Nil) {
		observability.ObserveCache("redis", "miss")
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	observability.ObserveCache("redis", "hit")
	return n, nil
}

func (s *StatusStore) SetCursor(ctx context.Context, next int) error {
	observability.ObserveCache("redis", "set")
	return s.c.Set(ctx, cursorKey, next, 0).Err()
}
