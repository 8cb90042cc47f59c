package httpserver

import (
	"context"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"toiletsync/internal/app"
	"toiletsync/internal/domain"
	"toiletsync/internal/regions"
)

// TriggerPath is polled by the external cron.
const TriggerPath = "/api/cron/sync-stores"

// Auth decides who may start a sync. Outside production every caller is let
// through; in production the caller needs the manual key or the cron bearer secret.
type Auth struct {
	Production bool
	CronSecret string
	ManualKey  string
}

func (a Auth) Allow(r *http.Request) bool {
	if !a.Production {
		return true
	}
	if key := r.URL.Query().Get("key"); key != "" && a.ManualKey != "" && secureEq(key, a.ManualKey) {
		return true
	}
	if a.CronSecret == "" {
		return false
	}
	return secureEq(r.Header.Get("Authorization"), "Bearer "+a.CronSecret)
}

func secureEq(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

type Handlers struct {
	Sync        *app.SyncService
	Query       *app.StatusService
	Regions     *regions.Registry
	Auth        Auth
	SyncTimeout time.Duration
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type triggerResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Duration  string `json:"duration"`
	RunID     string `json:"run_id"`
	Results   any    `json:"results"`
}

type triggerError struct {
	Success  *bool              `json:"success,omitempty"`
	Error    string             `json:"error"`
	ValidIDs []domain.RegionRef `json:"validIds,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	syncTimeout := h.SyncTimeout
	if syncTimeout <= 0 {
		syncTimeout = 5 * time.Minute
	}
	s.mux.Group(func(r chi.Router) {
		r.Use(Timeout(DefaultTimeout))
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
		r.Get("/v1/sync/status", h.syncStatus)
		r.Get("/v1/catalog/{poiID}", h.getEntry)
	})
	s.mux.Group(func(r chi.Router) {
		r.Use(Timeout(syncTimeout))
		r.Get(TriggerPath, h.triggerSync)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body
}

func (h *Handlers) triggerSync(w http.ResponseWriter, r *http.Request) {
	if !h.Auth.Allow(r) {
		writeJSON(w, http.StatusUnauthorized, triggerError{Error: "Unauthorized"})
		return
	}
	start := time.Now()
	q := r.URL.Query()

	// A started run finishes its regions even if the caller hangs up.
	ctx := app.WithRunID(context.WithoutCancel(r.Context()), "")
	runID := app.RunID(ctx)

	var (
		results any
		message string
		err     error
	)
	switch district, city := strings.TrimSpace(q.Get("district")), strings.TrimSpace(q.Get("city")); {
	case district != "":
		var res domain.RegionResult
		res, err = h.Sync.RunSingleRegion(ctx, district)
		if errors.Is(err, domain.ErrUnknownRegion) {
			writeJSON(w, http.StatusBadRequest, triggerError{Error: "Invalid district ID", ValidIDs: h.Regions.Refs()})
			return
		}
		results, message = res, fmt.Sprintf("%s sync complete", res.Region)

	case city != "" && h.Regions.IsCity(city):
		var res domain.CityResult
		res, err = h.Sync.RunCity(ctx, city)
		results, message = res, fmt.Sprintf("%s sync complete", city)

	default:
		idx := 0
		if b := q.Get("batch"); b != "" {
			n, perr := strconv.Atoi(b)
			if perr != nil || n < 0 {
				writeJSON(w, http.StatusBadRequest, triggerError{Error: "batch must be a non-negative integer"})
				return
			}
			idx = n
		}
		var res domain.BatchResult
		res, err = h.Sync.RunBatch(ctx, idx)
		message = "batch sync complete"
		if res.Message != "" {
			message = res.Message
		}
		results = res
	}

	if err != nil {
		log.Error().Err(err).Str("run_id", runID).Msg("sync failed")
		failed := false
		writeJSON(w, http.StatusInternalServerError, triggerError{Success: &failed, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, triggerResponse{
		Success:   true,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Duration:  fmt.Sprintf("%.2fs", time.Since(start).Seconds()),
		RunID:     runID,
		Results:   results,
	})
}

func (h *Handlers) syncStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.Query.Status(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("load sync status failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "status unavailable")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handlers) getEntry(w http.ResponseWriter, r *http.Request) {
	e, err := h.Query.GetEntry(r.Context(), chi.URLParam(r, "poiID"))
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", "catalog entry not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("load catalog entry failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "catalog unavailable")
		return
	}

	etag, body := calcETagAndBody(e)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write catalog entry body")
	}
}
