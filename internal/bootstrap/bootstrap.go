// Package bootstrap wires the catalog backend, status store, directory client
// and sync service from a loaded Config. Both binaries start here.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"toiletsync/internal/adapters/emap"
	redisad "toiletsync/internal/adapters/redis"
	"toiletsync/internal/app"
	"toiletsync/internal/domain"
	"toiletsync/internal/regions"
	"toiletsync/internal/shared"
	"toiletsync/internal/storage/memory"
	mongorepo "toiletsync/internal/storage/mongo"
	mysqlrepo "toiletsync/internal/storage/mysql"
)

type Deps struct {
	Regions *regions.Registry
	Repo    domain.CatalogRepository
	Status  domain.StatusStore // nil when REDIS_ADDR is unset
	Sync    *app.SyncService
	Query   *app.StatusService

	closers []func() error
}

// Close releases every connection opened by Open, last opened first.
func (d *Deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			log.Warn().Err(err).Msg("close failed")
		}
	}
}

func Open(ctx context.Context, cfg shared.Config) (*Deps, error) {
	d := &Deps{Regions: regions.Default()}

	repo, err := d.openCatalog(ctx, cfg)
	if err != nil {
		d.Close()
		return nil, err
	}
	d.Repo = repo

	if cfg.RedisAddr != "" {
		st := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		d.closers = append(d.closers, st.Close)
		if err := st.Ping(ctx); err != nil {
			d.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("status store connected")
		d.Status = st
	} else {
		log.Warn().Msg("REDIS_ADDR is empty; sync status and scheduler cursor are disabled")
	}

	client := emap.New(cfg.EmapBaseURL, cfg.EmapRPS, cfg.EmapTimeout)
	d.Sync = app.NewSyncService(client, d.Repo, d.Regions, app.Options{
		BatchSize:   cfg.BatchSize,
		RegionDelay: cfg.RegionDelay,
		Status:      d.Status,
	})
	d.Query = app.NewStatusService(d.Repo, d.Regions, d.Status)
	return d, nil
}

func (d *Deps) openCatalog(ctx context.Context, cfg shared.Config) (domain.CatalogRepository, error) {
	switch cfg.CatalogBackend {
	case "memory":
		log.Warn().Msg("using in-memory catalog; entries are lost on exit")
		return memory.New(), nil

	case "mongo":
		cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		repo, client, err := mongorepo.Connect(cctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoCollection)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, func() error { return client.Disconnect(context.Background()) })
		if err := repo.EnsureIndexes(cctx); err != nil {
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		log.Info().Str("db", cfg.MongoDB).Str("collection", cfg.MongoCollection).Msg("mongo catalog ok")
		return repo, nil

	default:
		db, err := OpenMySQL(ctx, cfg.MySQLDSN)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, db.Close)
		if cfg.MySQLMigrate {
			if err := mysqlrepo.Migrate(db); err != nil {
				return nil, err
			}
		}
		return mysqlrepo.New(db), nil
	}
}

// OpenMySQL opens and pings the catalog database.
func OpenMySQL(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	log.Info().Msg("database connection ok")
	return db, nil
}
