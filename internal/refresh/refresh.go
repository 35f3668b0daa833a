// Package refresh recomputes and caches aggregate payloads when a new
// snapshot lands. It subscribes to the snapshot-ingested topic per
// business domain, warms the report cache, and publishes readiness and
// alert events.
package refresh

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Gautam1401/config-operations-hub/internal/aggregate"
	"github.com/Gautam1401/config-operations-hub/internal/classify"
	"github.com/Gautam1401/config-operations-hub/internal/dataset"
	"github.com/Gautam1401/config-operations-hub/internal/domain"
)

// Worker refreshes cached aggregates off the event bus.
type Worker struct {
	bus       domain.EventBus
	repo      domain.Repository
	cache     domain.Cache
	reportTTL time.Duration

	subscriptions []domain.Subscription
	wg            sync.WaitGroup
	ctx           context.Context
	cancel        context.CancelFunc
}

// Config holds worker configuration.
type Config struct {
	// Domains to process. Empty means all known business domains.
	Domains []domain.BusinessDomain

	// ReportTTL bounds how long warmed reports live in cache.
	ReportTTL time.Duration
}

// IngestedEvent is the payload published when a snapshot is ingested.
type IngestedEvent struct {
	SnapshotID  string                `json:"snapshotId"`
	Domain      domain.BusinessDomain `json:"domain"`
	Fingerprint string                `json:"fingerprint"`
	RecordCount int                   `json:"recordCount"`
}

// ReadyEvent is published after the cache has been warmed for a
// snapshot.
type ReadyEvent struct {
	SnapshotID  string                `json:"snapshotId"`
	Domain      domain.BusinessDomain `json:"domain"`
	Fingerprint string                `json:"fingerprint"`
	Dimensions  []domain.DimensionID  `json:"dimensions"`
	DurationMs  int64                 `json:"durationMs"`
}

// AlertEvent is published when a refreshed snapshot contains records
// needing attention before their go-live.
type AlertEvent struct {
	SnapshotID string                `json:"snapshotId"`
	Domain     domain.BusinessDomain `json:"domain"`
	Dimension  domain.DimensionID    `json:"dimension"`
	Escalated  int                   `json:"escalated"`
	AtRisk     []string              `json:"atRisk,omitempty"`
}

// NewWorker creates a refresh worker.
func NewWorker(bus domain.EventBus, repo domain.Repository, cache domain.Cache, reportTTL time.Duration) *Worker {
	if reportTTL <= 0 {
		reportTTL = 15 * time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		bus:       bus,
		repo:      repo,
		cache:     cache,
		reportTTL: reportTTL,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start subscribes to the snapshot-ingested topic for each configured
// domain.
func (w *Worker) Start(cfg Config) error {
	domains := cfg.Domains
	if len(domains) == 0 {
		domains = domain.AllDomains()
	}
	if cfg.ReportTTL > 0 {
		w.reportTTL = cfg.ReportTTL
	}

	for _, d := range domains {
		bd := d
		sub, err := w.bus.Subscribe(w.ctx, bd, domain.TopicSnapshotIngested, func(ctx context.Context, msg *domain.Message) error {
			return w.handleIngested(ctx, bd, msg)
		})
		if err != nil {
			return fmt.Errorf("subscribing for %s: %w", bd, err)
		}
		w.subscriptions = append(w.subscriptions, sub)
	}

	slog.Info("refresh workers started", "domains", len(domains))
	return nil
}

func (w *Worker) handleIngested(ctx context.Context, bd domain.BusinessDomain, msg *domain.Message) error {
	start := time.Now()

	var event IngestedEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		slog.Error("failed to parse ingested event",
			"message_id", msg.ID,
			"error", err,
		)
		return err
	}

	snap, err := w.repo.GetSnapshot(ctx, bd, event.SnapshotID)
	if err != nil {
		slog.Error("failed to load snapshot for refresh",
			"domain", string(bd),
			"snapshot_id", event.SnapshotID,
			"error", err,
		)
		return err
	}

	dims, err := w.Refresh(ctx, snap)
	if err != nil {
		return err
	}

	ready := ReadyEvent{
		SnapshotID:  snap.ID,
		Domain:      bd,
		Fingerprint: snap.Fingerprint,
		Dimensions:  dims,
		DurationMs:  time.Since(start).Milliseconds(),
	}
	payload, _ := json.Marshal(ready)
	if err := w.bus.Publish(ctx, bd, domain.TopicSnapshotReady, payload); err != nil {
		slog.Error("failed to publish snapshot ready",
			"snapshot_id", snap.ID,
			"error", err,
		)
	}

	slog.Info("snapshot refreshed",
		"domain", string(bd),
		"snapshot_id", snap.ID,
		"dimensions", len(dims),
		"duration_ms", ready.DurationMs,
	)

	return nil
}

// Refresh recomputes every built-in dimension's KPI report for a
// snapshot, warms the cache, and raises alerts for escalations and
// at-risk go-lives. Returns the refreshed dimension IDs.
func (w *Worker) Refresh(ctx context.Context, snap *domain.Snapshot) ([]domain.DimensionID, error) {
	ds := dataset.New(snap)
	dims := classify.DimensionsFor(snap.Domain)

	for _, dim := range dims {
		report := aggregate.KPIs(ds, dim)

		key := ReportKey(snap.Fingerprint, dim, domain.RangeAll, domain.RegionAll)
		if err := w.cache.SetReport(ctx, snap.Domain, key, report, w.reportTTL); err != nil {
			return nil, fmt.Errorf("caching report for %s: %w", dim, err)
		}

		w.alertIfNeeded(ctx, snap, ds, dim, report)
	}

	if _, err := w.cache.IncrementCounter(ctx, snap.Domain, "refreshes", 24*time.Hour); err != nil {
		slog.Warn("failed to bump refresh counter",
			"domain", string(snap.Domain),
			"error", err,
		)
	}

	return dims, nil
}

func (w *Worker) alertIfNeeded(ctx context.Context, snap *domain.Snapshot, ds *dataset.Dataset, dim domain.DimensionID, report *domain.KPIReport) {
	escalated := report.Count(domain.StatusEscalated)
	atRisk := aggregate.AtRisk(ds, dim)

	if escalated == 0 && len(atRisk) == 0 {
		return
	}

	alert := AlertEvent{
		SnapshotID: snap.ID,
		Domain:     snap.Domain,
		Dimension:  dim,
		Escalated:  escalated,
	}
	for _, rec := range atRisk {
		alert.AtRisk = append(alert.AtRisk, rec.DealershipName)
	}

	payload, _ := json.Marshal(alert)
	if err := w.bus.Publish(ctx, snap.Domain, domain.TopicAlert, payload); err != nil {
		slog.Error("failed to publish alert",
			"snapshot_id", snap.ID,
			"dimension", string(dim),
			"error", err,
		)
	}
}

// ReportKey builds the cache key for a KPI report: snapshot
// fingerprint plus the query shape.
func ReportKey(fingerprint string, dim domain.DimensionID, dateRange domain.DateRange, region string) string {
	dr := string(dateRange)
	if dr == "" {
		dr = "all"
	}
	if region == "" {
		region = domain.RegionAll
	}
	return fmt.Sprintf("%s:%s:%s:%s", fingerprint, dim, dr, region)
}

// Stop gracefully stops all workers.
func (w *Worker) Stop() error {
	w.cancel()

	for _, sub := range w.subscriptions {
		if err := sub.Unsubscribe(); err != nil {
			slog.Error("failed to unsubscribe",
				"topic", sub.Topic(),
				"error", err,
			)
		}
	}
	w.subscriptions = nil

	w.wg.Wait()

	slog.Info("refresh workers stopped")
	return nil
}

// Stats returns worker statistics.
type Stats struct {
	SubscriptionCount int      `json:"subscriptionCount"`
	Topics            []string `json:"topics"`
}

// GetStats returns current worker statistics.
func (w *Worker) GetStats() Stats {
	topics := make([]string, len(w.subscriptions))
	for i, sub := range w.subscriptions {
		topics[i] = sub.Topic()
	}
	return Stats{
		SubscriptionCount: len(w.subscriptions),
		Topics:            topics,
	}
}
