// Config Operations Hub - go-live status derivation and aggregation.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gautam1401/config-operations-hub/internal/api"
	"github.com/Gautam1401/config-operations-hub/internal/bus"
	"github.com/Gautam1401/config-operations-hub/internal/cache"
	"github.com/Gautam1401/config-operations-hub/internal/classify"
	"github.com/Gautam1401/config-operations-hub/internal/domain"
	"github.com/Gautam1401/config-operations-hub/internal/refresh"
	"github.com/Gautam1401/config-operations-hub/internal/repository"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	// Initialize structured logger
	logLevel := slog.LevelInfo
	if os.Getenv("CONFIGHUB_DEBUG") == "true" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Log startup
	slog.Info("starting config operations hub",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	// Load configuration
	cfg := domain.DefaultConfig()

	// Check for shared tier via environment
	if os.Getenv("CONFIGHUB_TIER") == "shared" {
		cfg = domain.SharedConfig()
		slog.Info("running in shared tier mode")
	}

	slog.Info("configuration loaded",
		"tier", cfg.Tier,
		"repository", cfg.Repository.Driver,
		"cache", cfg.Cache.Type,
		"eventbus", cfg.EventBus.Type,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Initialize Repository
	repo, err := repository.New(cfg.Repository)
	if err != nil {
		slog.Error("failed to initialize repository", "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	slog.Info("repository initialized", "driver", cfg.Repository.Driver)

	// Initialize Cache
	cacheImpl, err := cache.New(cfg.Cache)
	if err != nil {
		slog.Error("failed to initialize cache", "error", err)
		os.Exit(1)
	}
	defer cacheImpl.Close()
	slog.Info("cache initialized", "type", cfg.Cache.Type)

	// Initialize EventBus
	busImpl, err := bus.New(cfg.EventBus)
	if err != nil {
		slog.Error("failed to initialize event bus", "error", err)
		os.Exit(1)
	}
	defer busImpl.Close()
	slog.Info("event bus initialized", "type", cfg.EventBus.Type)

	// Initialize Classification Engine
	engine, err := classify.NewEngine()
	if err != nil {
		slog.Error("failed to initialize classification engine", "error", err)
		os.Exit(1)
	}

	// Load custom dimensions from database (no hardcoded defaults -
	// the built-in dimensions are compiled in, extras come via API)
	if err := loadDimensionsFromDatabase(ctx, repo, engine); err != nil {
		slog.Error("failed to load dimensions", "error", err)
		os.Exit(1)
	}
	slog.Info("classification engine initialized", "custom_dimensions", engine.DimensionsCount())

	// Initialize refresh worker: recomputes cached aggregates on ingest
	worker := refresh.NewWorker(busImpl, repo, cacheImpl, cfg.ReportTTL)
	if err := worker.Start(refresh.Config{ReportTTL: cfg.ReportTTL}); err != nil {
		slog.Error("failed to start refresh worker", "error", err)
		os.Exit(1)
	}

	// Initialize Server
	srv := api.NewServer(cfg.Server, repo, cacheImpl, busImpl, engine, cfg.ReportTTL, Version)

	// Start Server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("config operations hub is ready",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	printBanner(cfg, Version)

	// Wait for shutdown signal
	<-ctx.Done()
	slog.Info("shutting down...")

	// Stop refresh worker first
	if err := worker.Stop(); err != nil {
		slog.Error("failed to stop refresh worker", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("config operations hub shutdown complete")
}

// loadDimensionsFromDatabase loads custom dimensions for every business
// domain into the engine. Custom dimensions are configured via
// POST /dimensions - no hardcoded defaults.
func loadDimensionsFromDatabase(ctx context.Context, repo domain.Repository, engine *classify.Engine) error {
	var all []*domain.DimensionConfig
	for _, d := range domain.AllDomains() {
		configs, err := repo.ListDimensionConfigs(ctx, d)
		if err != nil {
			slog.Warn("failed to list dimensions from database", "domain", string(d), "error", err)
			continue
		}
		all = append(all, configs...)
	}

	if len(all) > 0 {
		slog.Info("loading custom dimensions from database", "count", len(all))
		return engine.ReloadDimensions(all)
	}

	slog.Info("no custom dimensions in database - configure via POST /dimensions API")
	return nil
}

func printBanner(cfg *domain.Config, version string) {
	fmt.Println()
	fmt.Println("  ==============================================")
	fmt.Println("              CONFIG OPERATIONS HUB")
	fmt.Println("       Go-live status, derived and served.")
	fmt.Println("  ==============================================")
	fmt.Println()
	fmt.Printf("  Version:  %s\n", version)
	fmt.Printf("  Tier:     %s\n", cfg.Tier)
	fmt.Printf("  Server:   http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()
	fmt.Println("  Endpoints (under /api/v1/domains/{domain}):")
	fmt.Println("    POST   /snapshots          - Ingest a tracker snapshot (CSV or JSON)")
	fmt.Println("    GET    /snapshots          - List ingested snapshots")
	fmt.Println("    GET    /kpis               - Status mix for a dimension")
	fmt.Println("    GET    /regions            - Region universe and counts")
	fmt.Println("    GET    /records            - Drill-down table (format=csv to export)")
	fmt.Println("    GET    /assignees          - Per-assignee workload and pass rate")
	fmt.Println("    GET    /modules            - ARC per-module breakdown")
	fmt.Println("    GET    /scores             - CRM weighted score distribution")
	fmt.Println("    GET    /upcoming-week      - Next seven days of go-lives")
	fmt.Println("    GET    /dimensions         - List dimensions")
	fmt.Println("    POST   /dimensions         - Create a custom dimension")
	fmt.Println("    DELETE /dimensions/{id}    - Delete a custom dimension")
	fmt.Println("    POST   /dimensions/reload  - Hot-reload custom dimensions")
	fmt.Println("    GET    /health             - Health check")
	fmt.Println()
}
