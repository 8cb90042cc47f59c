package shared

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// ManualKey unlocks the trigger endpoint for operator bootstrap runs.
const ManualKey = "init-seven-eleven-2026"

type Config struct {
	AppEnv      string `validate:"required"`
	LogLevel    string
	HTTPAddr    string `validate:"required"`
	MetricsAddr string

	CatalogBackend  string `validate:"oneof=mysql mongo memory"`
	MySQLDSN        string `validate:"required_if=CatalogBackend mysql"`
	MySQLMigrate    bool
	MongoURI        string `validate:"required_if=CatalogBackend mongo"`
	MongoDB         string `validate:"required_if=CatalogBackend mongo"`
	MongoCollection string `validate:"required_if=CatalogBackend mongo"`

	RedisAddr string
	RedisPass string
	RedisDB   int `validate:"gte=0"`

	EmapBaseURL string        `validate:"required,url"`
	EmapRPS     int           `validate:"gte=1"`
	EmapTimeout time.Duration `validate:"gt=0"`

	CronSecret  string
	ManualKey   string `validate:"required"`
	BatchSize   int    `validate:"gte=1"`
	RegionDelay time.Duration
	SyncTimeout time.Duration `validate:"gt=0"`
	// SchedulerInterval of 0 leaves the in-process scheduler off.
	SchedulerInterval time.Duration
}

func Load() Config {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", "info"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ""),

		CatalogBackend:  strings.ToLower(env("CATALOG_BACKEND", "mysql")),
		MySQLDSN:        env("MYSQL_DSN", "root:root@tcp(localhost:3306)/toiletsync?parseTime=true&charset=utf8mb4&loc=UTC"),
		MySQLMigrate:    env("MYSQL_MIGRATE", "true") == "true",
		MongoURI:        env("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:         env("MONGO_DB", "toiletsync"),
		MongoCollection: env("MONGO_COLLECTION", "seven_eleven_stores"),

		RedisAddr: env("REDIS_ADDR", ""),
		RedisPass: env("REDIS_PASSWORD", ""),
		RedisDB:   atoi("REDIS_DB", 0),

		EmapBaseURL: env("EMAP_BASE_URL", "https://emap.pcsc.com.tw/EMapSDK.aspx"),
		EmapRPS:     atoi("EMAP_RPS", 5),
		EmapTimeout: time.Duration(atoi("EMAP_TIMEOUT_SECONDS", 20)) * time.Second,

		CronSecret:        os.Getenv("CRON_SECRET"),
		ManualKey:         env("SYNC_MANUAL_KEY", ManualKey),
		BatchSize:         atoi("SYNC_BATCH_SIZE", 5),
		RegionDelay:       time.Duration(atoi("SYNC_REGION_DELAY_MS", 300)) * time.Millisecond,
		SyncTimeout:       time.Duration(atoi("SYNC_TIMEOUT_SECONDS", 300)) * time.Second,
		SchedulerInterval: time.Duration(atoi("SCHEDULER_INTERVAL_SECONDS", 0)) * time.Second,
	}
	if c.IsProduction() && c.CronSecret == "" {
		log.Warn().Msg("CRON_SECRET is empty; scheduled triggers will be rejected")
	}
	return c
}

var validate = validator.New()

// Validate checks the loaded values; it is called once at startup by each binary.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.RegionDelay < 0 || c.SchedulerInterval < 0 {
		return fmt.Errorf("invalid config: durations must not be negative")
	}
	return nil
}

func (c Config) IsProduction() bool {
	switch strings.ToLower(c.AppEnv) {
	case "prod", "production":
		return true
	}
	return false
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
