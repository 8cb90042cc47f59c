//go:build integration

package mongo_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"toiletsync/internal/domain"
	mongorepo "toiletsync/internal/storage/mongo"
)

func TestRepo_Mongo_UpsertIsIdempotent(t *testing.T) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{Repository: "mongo", Tag: "7.0"},
		func(hc *docker.HostConfig) {
			hc.AutoRemove = true
			hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
		})
	if err != nil {
		t.Fatalf("run mongo: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	uri := fmt.Sprintf("mongodb://127.0.0.1:%s", resource.GetPort("27017/tcp"))
	ctx := context.Background()

	var repo *mongorepo.Repo
	if err := pool.Retry(func() error {
		r, client, e := mongorepo.Connect(ctx, uri, "toiletsync", "seven_eleven_toilets")
		if e != nil {
			return e
		}
		t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
		repo = r
		return nil
	}); err != nil {
		t.Fatalf("connect mongo: %v", err)
	}
	if err := repo.EnsureIndexes(ctx); err != nil {
		t.Fatalf("indexes: %v", err)
	}

	first := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	if got, err := repo.UpsertEntry(ctx, entry(first)); err != nil || got != domain.Inserted {
		t.Fatalf("first: %s %v", got, err)
	}
	second := first.Add(time.Hour)
	if got, err := repo.UpsertEntry(ctx, entry(second)); err != nil || got != domain.Updated {
		t.Fatalf("second: %s %v", got, err)
	}
	if got, err := repo.UpsertEntry(ctx, entry(second)); err != nil || got != domain.Updated {
		t.Fatalf("identical rewrite: %s %v", got, err)
	}
	n, err := repo.CountEntries(ctx)
	if err != nil || n != 1 {
		t.Fatalf("expected one document, got %d (%v)", n, err)
	}
	stored, err := repo.GetEntry(ctx, "123456")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !stored.CreatedAt.Equal(first) || !stored.UpdatedAt.Equal(second) {
		t.Fatalf("timestamps: created %v updated %v", stored.CreatedAt, stored.UpdatedAt)
	}
}
