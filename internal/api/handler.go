package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Gautam1401/config-operations-hub/internal/aggregate"
	"github.com/Gautam1401/config-operations-hub/internal/classify"
	"github.com/Gautam1401/config-operations-hub/internal/dataset"
	"github.com/Gautam1401/config-operations-hub/internal/domain"
	"github.com/Gautam1401/config-operations-hub/internal/ingest"
	"github.com/Gautam1401/config-operations-hub/internal/normalize"
	"github.com/Gautam1401/config-operations-hub/internal/refresh"
	"github.com/Gautam1401/config-operations-hub/internal/repository"
)

// Handler holds dependencies for API handlers.
type Handler struct {
	repo      domain.Repository
	cache     domain.Cache
	bus       domain.EventBus
	engine    *classify.Engine
	reportTTL time.Duration
	version   string
}

// NewHandler creates a new API handler.
func NewHandler(repo domain.Repository, cache domain.Cache, bus domain.EventBus, engine *classify.Engine, reportTTL time.Duration, version string) *Handler {
	if reportTTL <= 0 {
		reportTTL = 15 * time.Minute
	}
	return &Handler{
		repo:      repo,
		cache:     cache,
		bus:       bus,
		engine:    engine,
		reportTTL: reportTTL,
		version:   version,
	}
}

// IngestRequest is the JSON request body for POST /snapshots. Rows are
// raw header-keyed cells exactly as exported from the tracker.
type IngestRequest struct {
	AsOf string          `json:"asOf,omitempty"`
	Rows []domain.RawRow `json:"rows"`
}

// IngestResponse is the response for POST /snapshots.
type IngestResponse struct {
	SnapshotID  string    `json:"snapshotId"`
	Fingerprint string    `json:"fingerprint"`
	AsOf        time.Time `json:"asOf"`
	RawRowCount int       `json:"rawRowCount"`
	RecordCount int       `json:"recordCount"`
	Metadata    struct {
		TraceID string `json:"traceId"`
		TotalMs int64  `json:"totalMs"`
		Version string `json:"version"`
	} `json:"metadata"`
}

// IngestSnapshot handles POST /snapshots. It accepts either a raw CSV
// body (Content-Type text/csv) or a JSON row set, runs the full
// normalize-classify pipeline, persists the snapshot, and announces it
// on the event bus.
func (h *Handler) IngestSnapshot(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	d := GetDomain(ctx)

	var rows []domain.RawRow
	var asOf time.Time
	var err error

	if strings.HasPrefix(r.Header.Get("Content-Type"), "text/csv") {
		rows, err = ingest.ReadCSV(r.Body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "invalid CSV body: " + err.Error(),
			})
			return
		}
		asOf, err = parseAsOf(r.URL.Query().Get("as_of"))
	} else {
		var req IngestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "invalid JSON request body",
			})
			return
		}
		rows = req.Rows
		asOf, err = parseAsOf(req.AsOf)
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "as-of date must be YYYY-MM-DD",
		})
		return
	}

	if len(rows) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "at least one row is required",
		})
		return
	}

	records, err := normalize.New(d, slog.Default()).Normalize(rows, asOf)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": "normalization failed: " + err.Error(),
		})
		return
	}

	if err := h.engine.Classify(ctx, records, asOf); err != nil {
		slog.Error("classification failed", "domain", string(d), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "classification failed",
		})
		return
	}

	snap := &domain.Snapshot{
		ID:          uuid.New().String(),
		Domain:      d,
		Fingerprint: dataset.Fingerprint(rows, asOf),
		AsOf:        asOf,
		RawRowCount: len(rows),
		Records:     records,
		CreatedAt:   time.Now().UTC(),
	}

	if err := h.repo.SaveSnapshot(ctx, d, snap); err != nil {
		slog.Error("failed to save snapshot", "domain", string(d), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to save snapshot",
		})
		return
	}

	if h.bus != nil {
		payload, _ := json.Marshal(refresh.IngestedEvent{
			SnapshotID:  snap.ID,
			Domain:      d,
			Fingerprint: snap.Fingerprint,
			RecordCount: len(records),
		})
		if err := h.bus.Publish(ctx, d, domain.TopicSnapshotIngested, payload); err != nil {
			slog.Error("failed to publish ingested event", "snapshot_id", snap.ID, "error", err)
		}
	}

	resp := IngestResponse{
		SnapshotID:  snap.ID,
		Fingerprint: snap.Fingerprint,
		AsOf:        snap.AsOf,
		RawRowCount: snap.RawRowCount,
		RecordCount: len(records),
	}
	resp.Metadata.TraceID = GetTraceID(ctx)
	resp.Metadata.TotalMs = time.Since(start).Milliseconds()
	resp.Metadata.Version = h.version

	writeJSON(w, http.StatusCreated, resp)
}

// ListSnapshots handles GET /snapshots.
func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	d := GetDomain(ctx)

	metas, err := h.repo.ListSnapshots(ctx, d, 50)
	if err != nil {
		slog.Error("failed to list snapshots", "domain", string(d), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to list snapshots",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"snapshots": metas,
		"count":     len(metas),
	})
}

// GetSnapshot handles GET /snapshots/{id}.
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	d := GetDomain(ctx)
	id := chi.URLParam(r, "id")

	snap, err := h.repo.GetSnapshot(ctx, d, id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "snapshot not found",
		})
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

// GetKPIs handles GET /kpis. The status mix for one dimension under
// the range/region filters, cache-backed when no record-level filters
// are applied.
func (h *Handler) GetKPIs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	d := GetDomain(ctx)

	snap, ds, q, ok := h.loadFiltered(w, r)
	if !ok {
		return
	}

	cacheable := h.cache != nil && q.status == "" && q.assignee == "" && q.implType == ""
	key := refresh.ReportKey(snap.Fingerprint, q.dimension, q.dateRange, q.region)

	if cacheable {
		if report, err := h.cache.GetReport(ctx, d, key); err == nil {
			writeKPIResponse(w, snap, report)
			return
		}
	}

	report := aggregate.KPIs(ds, q.dimension)

	if cacheable {
		if err := h.cache.SetReport(ctx, d, key, report, h.reportTTL); err != nil {
			slog.Warn("failed to cache report", "key", key, "error", err)
		}
	}

	writeKPIResponse(w, snap, report)
}

func writeKPIResponse(w http.ResponseWriter, snap *domain.Snapshot, report *domain.KPIReport) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"snapshotId": snap.ID,
		"asOf":       snap.AsOf,
		"report":     report,
	})
}

// GetRegions handles GET /regions: the region filter universe plus
// per-region counts under the current filters.
func (h *Handler) GetRegions(w http.ResponseWriter, r *http.Request) {
	snap, ds, _, ok := h.loadFiltered(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"snapshotId": snap.ID,
		"regions":    ds.Regions(),
		"counts":     aggregate.RegionCounts(ds),
	})
}

// GetRecords handles GET /records: the drill-down table for one
// dimension. format=csv streams a CSV export instead of JSON.
func (h *Handler) GetRecords(w http.ResponseWriter, r *http.Request) {
	snap, ds, q, ok := h.loadFiltered(w, r)
	if !ok {
		return
	}

	rows := ds.DisplayRows(q.dimension)

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="records.csv"`)
		if err := ingest.WriteDisplayCSV(w, rows); err != nil {
			slog.Error("failed to write CSV export", "error", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"snapshotId": snap.ID,
		"records":    rows,
		"count":      len(rows),
	})
}

// GetAssignees handles GET /assignees: per-assignee workload and pass
// rate for one dimension.
func (h *Handler) GetAssignees(w http.ResponseWriter, r *http.Request) {
	snap, ds, q, ok := h.loadFiltered(w, r)
	if !ok {
		return
	}

	stats := aggregate.AssigneeStats(ds, q.dimension)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"snapshotId": snap.ID,
		"assignees":  stats,
		"count":      len(stats),
	})
}

// GetModules handles GET /modules: the ARC per-module breakdown for
// one status.
func (h *Handler) GetModules(w http.ResponseWriter, r *http.Request) {
	d := GetDomain(r.Context())
	if d != domain.DomainARC {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "module breakdown is only available for the arc domain",
		})
		return
	}

	status := domain.Status(r.URL.Query().Get("status"))
	if status == domain.StatusNone {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "status query parameter is required",
		})
		return
	}

	snap, ds, _, ok := h.loadDataset(w, r, false)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"snapshotId": snap.ID,
		"breakdown":  aggregate.ModuleBreakdown(ds, status),
	})
}

// GetScores handles GET /scores: the weighted go-live-testing score
// distribution. CRM only.
func (h *Handler) GetScores(w http.ResponseWriter, r *http.Request) {
	d := GetDomain(r.Context())
	if d != domain.DomainCRM {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "score distribution is only available for the crm domain",
		})
		return
	}

	snap, ds, _, ok := h.loadFiltered(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"snapshotId":   snap.ID,
		"distribution": aggregate.ScoreDistribution(ds),
	})
}

// GetUpcomingWeek handles GET /upcoming-week: go-lives in the next
// seven days, with the subset not yet passing the selected dimension.
func (h *Handler) GetUpcomingWeek(w http.ResponseWriter, r *http.Request) {
	snap, ds, q, ok := h.loadFiltered(w, r)
	if !ok {
		return
	}

	upcoming := aggregate.UpcomingWeek(ds)
	atRisk := aggregate.AtRisk(ds, q.dimension)

	atRiskNames := make([]string, 0, len(atRisk))
	for _, rec := range atRisk {
		atRiskNames = append(atRiskNames, rec.DealershipName)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"snapshotId": snap.ID,
		"upcoming":   upcoming,
		"count":      len(upcoming),
		"atRisk":     atRiskNames,
	})
}

// recordQuery is the parsed filter set shared by the read endpoints.
type recordQuery struct {
	dimension domain.DimensionID
	dateRange domain.DateRange
	region    string
	status    domain.Status
	assignee  string
	implType  string
}

// loadFiltered resolves the target snapshot (by snapshot query param,
// latest otherwise) and applies the common query filters. On failure
// the response has already been written.
func (h *Handler) loadFiltered(w http.ResponseWriter, r *http.Request) (*domain.Snapshot, *dataset.Dataset, recordQuery, bool) {
	return h.loadDataset(w, r, true)
}

// loadDataset is loadFiltered with the status filter optional: the
// modules endpoint reads status as the breakdown target, not as a
// record filter, and must see the unfiltered status mix.
func (h *Handler) loadDataset(w http.ResponseWriter, r *http.Request, statusAsFilter bool) (*domain.Snapshot, *dataset.Dataset, recordQuery, bool) {
	ctx := r.Context()
	d := GetDomain(ctx)
	var q recordQuery

	query := r.URL.Query()

	q.dimension = domain.DimensionID(query.Get("dimension"))
	if q.dimension == "" {
		dims := classify.DimensionsFor(d)
		if len(dims) > 0 {
			q.dimension = dims[0]
		}
	}

	dr, err := parseDateRange(query.Get("range"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
		return nil, nil, q, false
	}
	q.dateRange = dr
	q.region = query.Get("region")
	q.status = domain.Status(query.Get("status"))
	q.assignee = query.Get("assignee")
	q.implType = query.Get("impl_type")

	var snap *domain.Snapshot
	if id := query.Get("snapshot"); id != "" {
		snap, err = h.repo.GetSnapshot(ctx, d, id)
	} else {
		snap, err = h.repo.LatestSnapshot(ctx, d)
	}
	if err != nil {
		status := http.StatusInternalServerError
		msg := "failed to load snapshot"
		if errors.Is(err, repository.ErrNotFound) {
			status = http.StatusNotFound
			msg = "no snapshot ingested for this domain"
		}
		writeJSON(w, status, map[string]string{"error": msg})
		return nil, nil, q, false
	}

	ds := dataset.New(snap).FilterByDateRange(q.dateRange)
	if q.region != "" && q.region != domain.RegionAll {
		ds = ds.FilterByRegion(q.region)
	}
	if statusAsFilter && q.status != domain.StatusNone {
		ds = ds.FilterByStatus(q.dimension, q.status)
	}
	if q.assignee != "" {
		ds = ds.FilterByAssignee(q.dimension, q.assignee)
	}
	if q.implType != "" {
		ds = ds.FilterByImplementationType(q.implType)
	}

	return snap, ds, q, true
}

func parseDateRange(s string) (domain.DateRange, error) {
	switch domain.DateRange(s) {
	case domain.RangeAll, domain.RangeCurrentMonth, domain.RangeNextMonth,
		domain.RangeTwoMonths, domain.RangeYTD:
		return domain.DateRange(s), nil
	}
	return domain.RangeAll, errors.New("unknown date range: " + s)
}

func parseAsOf(s string) (time.Time, error) {
	if s == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse("2006-01-02", s)
}

// Health returns server health status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"

	// Check repository health
	if h.repo != nil {
		if err := h.repo.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	// Check cache health
	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"version": h.version,
	})
}

// Ready returns whether the server is ready to accept traffic.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"ready": "true",
	})
}

// ListDimensions returns the built-in dimensions plus the custom
// dimensions currently loaded in the engine.
func (h *Handler) ListDimensions(w http.ResponseWriter, r *http.Request) {
	d := GetDomain(r.Context())

	custom := h.engine.LoadedDimensions()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"builtin": classify.DimensionsFor(d),
		"custom":  custom,
		"count":   len(classify.DimensionsFor(d)) + len(custom),
	})
}

// GetDimension retrieves a custom dimension config by ID.
func (h *Handler) GetDimension(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	d := GetDomain(ctx)
	dimID := chi.URLParam(r, "id")

	cfg, err := h.repo.GetDimensionConfig(ctx, d, dimID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "dimension not found",
		})
		return
	}

	writeJSON(w, http.StatusOK, cfg)
}

// CreateDimensionRequest is the request body for creating a custom
// dimension.
type CreateDimensionRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Expression  string `json:"expression"`
	Enabled     bool   `json:"enabled"`
}

// CreateDimension creates a custom dimension and saves it to the
// database. Call POST /dimensions/reload to hot-load it into the
// engine.
func (h *Handler) CreateDimension(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	d := GetDomain(ctx)

	var req CreateDimensionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	if req.ID == "" || req.Name == "" || req.Expression == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "id, name, and expression are required",
		})
		return
	}

	cfg := &domain.DimensionConfig{
		ID:          req.ID,
		Domain:      d,
		Name:        req.Name,
		Description: req.Description,
		Version:     "1.0.0",
		Expression:  req.Expression,
		Enabled:     req.Enabled,
	}

	// Validate the CEL expression before persisting
	if err := h.engine.ValidateDimension(cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid CEL expression: " + err.Error(),
		})
		return
	}

	if err := h.repo.SaveDimensionConfig(ctx, d, cfg); err != nil {
		slog.Error("failed to save dimension config", "id", cfg.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to save dimension",
		})
		return
	}

	slog.Info("dimension created", "id", cfg.ID, "domain", string(d))
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"dimension": cfg,
		"message":   "Dimension created. Call POST /dimensions/reload to apply changes.",
	})
}

// DeleteDimension soft-deletes a custom dimension and auto-reloads the
// engine.
func (h *Handler) DeleteDimension(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	d := GetDomain(ctx)
	dimID := chi.URLParam(r, "id")

	if err := h.repo.DeleteDimensionConfig(ctx, d, dimID); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "dimension not found",
		})
		return
	}

	// Auto-reload after delete
	configs, err := h.repo.ListDimensionConfigs(ctx, d)
	if err != nil {
		slog.Error("failed to reload dimensions after delete", "error", err)
	} else if err := h.engine.ReloadDimensions(configs); err != nil {
		slog.Error("failed to reload dimensions into engine", "error", err)
	}

	slog.Info("dimension deleted", "id", dimID, "domain", string(d))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Dimension deleted and engine reloaded.",
	})
}

// ReloadDimensions reloads all custom dimensions from the database
// into the engine. This enables hot-reloading without server restart.
func (h *Handler) ReloadDimensions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	d := GetDomain(ctx)

	configs, err := h.repo.ListDimensionConfigs(ctx, d)
	if err != nil {
		slog.Error("failed to list dimensions from database", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to load dimensions from database",
		})
		return
	}

	if err := h.engine.ReloadDimensions(configs); err != nil {
		slog.Error("failed to reload dimensions into engine", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to reload dimensions: " + err.Error(),
		})
		return
	}

	slog.Info("dimensions reloaded from database", "domain", string(d), "count", len(configs))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "dimensions reloaded successfully",
		"count":   len(configs),
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
