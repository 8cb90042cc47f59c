package shared

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("CATALOG_BACKEND", "memory")
	c := Load()
	if c.BatchSize != 5 || c.RegionDelay != 300*time.Millisecond {
		t.Fatalf("unexpected sync defaults: %+v", c)
	}
	if c.ManualKey != ManualKey || c.SchedulerInterval != 0 {
		t.Fatalf("unexpected trigger defaults: %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SYNC_BATCH_SIZE", "7")
	t.Setenv("SYNC_REGION_DELAY_MS", "50")
	t.Setenv("SYNC_MANUAL_KEY", "other")
	t.Setenv("REDIS_DB", "oops")
	c := Load()
	if c.BatchSize != 7 || c.RegionDelay != 50*time.Millisecond || c.ManualKey != "other" || c.RedisDB != 0 {
		t.Fatalf("overrides not applied: %+v", c)
	}
}

func TestValidate_Rejects(t *testing.T) {
	t.Setenv("CATALOG_BACKEND", "memory")
	base := Load()

	bad := base
	bad.CatalogBackend = "sqlite"
	if bad.Validate() == nil {
		t.Fatalf("unknown backend should fail")
	}
	bad = base
	bad.BatchSize = 0
	if bad.Validate() == nil {
		t.Fatalf("zero batch size should fail")
	}
	bad = base
	bad.CatalogBackend = "mongo"
	bad.MongoURI = ""
	if bad.Validate() == nil {
		t.Fatalf("mongo backend without uri should fail")
	}
}

func TestIsProduction(t *testing.T) {
	for env, want := range map[string]bool{"prod": true, "Production": true, "dev": false, "staging": false} {
		if got := (Config{AppEnv: env}).IsProduction(); got != want {
			t.Errorf("%s: got %v", env, got)
		}
	}
}
