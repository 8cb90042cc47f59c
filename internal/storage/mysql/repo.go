package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"toiletsync/internal/domain"
)

type entryRow struct {
	POIID        string    `db:"poi_id"`
	Name         string    `db:"name"`
	Address      string    `db:"address"`
	City         string    `db:"city"`
	District     string    `db:"district"`
	Lat          float64   `db:"lat"`
	Lng          float64   `db:"lng"`
	Phone        string    `db:"phone"`
	OpeningHours string    `db:"opening_hours"`
	OpeningDays  string    `db:"opening_days"`
	Services     []byte    `db:"services"`
	HasToilet    bool      `db:"has_toilet"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r entryRow) toDomain() (domain.CatalogEntry, error) {
	e := domain.CatalogEntry{
		POIID:        r.POIID,
		Name:         r.Name,
		Address:      r.Address,
		City:         r.City,
		District:     r.District,
		Coordinates:  domain.Coords{Lat: r.Lat, Lng: r.Lng},
		Phone:        r.Phone,
		OpeningHours: r.OpeningHours,
		OpeningDays:  r.OpeningDays,
		HasToilet:    r.HasToilet,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
	if len(r.Services) > 0 {
		if err := json.Unmarshal(r.Services, &e.Services); err != nil {
			return domain.CatalogEntry{}, fmt.Errorf("decode services of %s: %w", r.POIID, err)
		}
	}
	if e.Services == nil {
		e.Services = []string{}
	}
	return e, nil
}

type Repo struct{ db *sqlx.DB }

func New(db *sql.DB) *Repo { return &Repo{db: sqlx.NewDb(db, "mysql")} }

func (r *Repo) UpsertEntry(ctx context.Context, e domain.CatalogEntry) (domain.UpsertOutcome, error) {
	services := e.Services
	if services == nil {
		services = []string{}
	}
	svc, err := json.Marshal(services)
	if err != nil {
		return domain.Unchanged, err
	}
	res, err := r.db.ExecContext(ctx, upsertEntrySQL,
		e.POIID,
		e.Name,
		e.Address,
		e.City,
		e.District,
		e.Coordinates.Lat,
		e.Coordinates.Lng,
		e.Phone,
		e.OpeningHours,
		e.OpeningDays,
		string(svc),
		e.CreatedAt,
		e.UpdatedAt,
	)
	if err != nil {
		return domain.Unchanged, fmt.Errorf("upsert %s: %w", e.POIID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Unchanged, err
	}
	// 1 = new row, 2 = existing row changed, 0 = existing row rewritten with identical
	// values (same-millisecond updated_at). The key matched in both of the latter.
	if n == 1 {
		return domain.Inserted, nil
	}
	return domain.Updated, nil
}

func (r *Repo) GetEntry(ctx context.Context, poiID string) (domain.CatalogEntry, error) {
	var row entryRow
	if err := r.db.GetContext(ctx, &row, getEntrySQL, poiID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CatalogEntry{}, domain.ErrNotFound
		}
		return domain.CatalogEntry{}, err
	}
	return row.toDomain()
}

func (r *Repo) CountEntries(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, countEntriesSQL); err != nil {
		return 0, err
	}
	return n, nil
}
