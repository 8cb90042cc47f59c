//go:build integration

package mysql_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"toiletsync/internal/domain"
	mysqlrepo "toiletsync/internal/storage/mysql"
)

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=toiletsync",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/toiletsync?parseTime=true&charset=utf8mb4&loc=UTC",
		resource.GetPort("3306/tcp"))

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := mysqlrepo.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// second run is a no-op
	if err := mysqlrepo.Migrate(db); err != nil {
		t.Fatalf("migrate again: %v", err)
	}
	return db
}

func TestRepo_MySQL_UpsertIsIdempotent(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	first := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	e := sampleEntry(first)
	got, err := repo.UpsertEntry(ctx, e)
	if err != nil || got != domain.Inserted {
		t.Fatalf("first upsert: %s %v", got, err)
	}

	second := first.Add(time.Hour)
	e2 := sampleEntry(second)
	e2.Phone = "0299999999"
	got, err = repo.UpsertEntry(ctx, e2)
	if err != nil || got != domain.Updated {
		t.Fatalf("second upsert: %s %v", got, err)
	}

	// same record, same timestamp: the row is left identical but it still counts as updated
	got, err = repo.UpsertEntry(ctx, e2)
	if err != nil || got != domain.Updated {
		t.Fatalf("identical upsert: %s %v", got, err)
	}

	n, err := repo.CountEntries(ctx)
	if err != nil || n != 1 {
		t.Fatalf("expected exactly one row, got %d (%v)", n, err)
	}
	stored, err := repo.GetEntry(ctx, e.POIID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !stored.CreatedAt.Equal(first) {
		t.Fatalf("created_at moved: %v", stored.CreatedAt)
	}
	if !stored.UpdatedAt.Equal(second) || stored.Phone != "0299999999" {
		t.Fatalf("update not applied: %+v", stored)
	}
}
