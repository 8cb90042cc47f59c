package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const namespace = "toiletsync"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "external_requests_total", Help: "Outbound requests."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: []float64{.1, .25, .5, 1, 2, 5, 10, 20},
		},
		[]string{"service", "endpoint"},
	)
	RegionSyncs = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "region_syncs_total", Help: "Per-region sync runs."},
		[]string{"city", "outcome"}, // outcome: ok|failed
	)
	StoresFound = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "stores_found_total", Help: "Stores returned by the directory."},
		[]string{"city", "kind"}, // kind: all|restroom
	)
	CatalogUpserts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "catalog_upserts_total", Help: "Catalog writes by outcome."},
		[]string{"outcome"}, // inserted|updated|unchanged|error
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "cache_events_total", Help: "Status store hits/misses/sets."},
		[]string{"cache", "event"}, // event: hit|miss|set
	)
	SyncRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "sync_runs_total", Help: "Sync invocations by mode."},
		[]string{"mode", "result"}, // mode: region|city|batch; result: ok|error
	)
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency,
		RegionSyncs, StoresFound, CatalogUpserts, CacheEvents, SyncRuns,
	}
}

// Serve starts a standalone /metrics listener when addr is set.
func Serve(addr string) {
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(InitRegistry()))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors()...)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveRegion(city string, failed bool, found, withToilet int) {
	outcome := "ok"
	if failed {
		outcome = "failed"
	}
	RegionSyncs.WithLabelValues(city, outcome).Inc()
	StoresFound.WithLabelValues(city, "all").Add(float64(found))
	StoresFound.WithLabelValues(city, "restroom").Add(float64(withToilet))
}

func ObserveUpsert(outcome string) { // inserted|updated|unchanged|error
	CatalogUpserts.WithLabelValues(outcome).Inc()
}

func ObserveCache(cache, event string) { // event: hit|miss|set
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObserveRun(mode string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	SyncRuns.WithLabelValues(mode, result).Inc()
}

func LabelErr(err error) string {
	if err == nil {
		return "none"
	}
	return fmt.Sprintf("%T", err)
}
