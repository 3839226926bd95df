package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/inkwell-labs/bookmetrics/internal/analytics"
	"github.com/inkwell-labs/bookmetrics/internal/cache"
	"github.com/inkwell-labs/bookmetrics/internal/config"
	"github.com/inkwell-labs/bookmetrics/internal/export"
	"github.com/inkwell-labs/bookmetrics/internal/maintenance"
	"github.com/inkwell-labs/bookmetrics/internal/migrations"
	"github.com/inkwell-labs/bookmetrics/internal/server"
	"github.com/inkwell-labs/bookmetrics/internal/staging"
	"github.com/inkwell-labs/bookmetrics/internal/warehouse"
)

func main() {
	configPath := flag.String("config", "bookmetrics.yaml", "Path to configuration file")
	maintain := flag.Bool("maintain", false, "Run rollup maintenance once and exit")
	refresh := flag.Bool("refresh", false, "With -maintain, also refresh materialized views")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	if !cfg.Warehouse.Enabled() {
		slog.Error("Warehouse configuration incomplete (host, database, user required)")
		os.Exit(1)
	}

	// 2. Initialize Warehouse
	wh, err := warehouse.NewAdapter(
		cfg.Warehouse.DSN(),
		cfg.Warehouse.MaxOpenConns,
		cfg.Warehouse.MaxIdleConns,
	)
	if err != nil {
		slog.Error("Failed to initialize warehouse", "error", err)
		os.Exit(1)
	}
	defer wh.Close()

	// 2.1. Schema Bootstrap
	if err := migrations.RunMigrations(wh.DB(), cfg.Warehouse.AutoMigrate); err != nil {
		slog.Error("Failed to run warehouse migrations", "error", err)
		os.Exit(1)
	}

	maintainer := maintenance.NewMaintainer(wh.DB())

	// One-shot maintenance mode.
	if *maintain {
		maintainer.Run(context.Background(), *refresh)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize Result Cache
	var cacheStore cache.Store = cache.Disabled{}
	if cfg.Cache.Enabled() {
		rdb, err := cache.NewRedis(ctx, cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB)
		if err != nil {
			slog.Warn("Cache backend unavailable, serving uncached", "error", err)
		} else {
			defer rdb.Close()
			cacheStore = rdb
		}
	} else {
		slog.Warn("Cache not configured, serving uncached")
	}

	// 4. Initialize Analytics Pipeline
	analyticsSvc := analytics.NewService(wh, cacheStore, analytics.DefaultMaxDataPoints, nil)

	// 5. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), wh.DB(), cfg.Server.Mode)
	analyticsSvc.RegisterRoutes(srv.Engine)

	// 6. Export Pipeline (only with complete staging config)
	if cfg.Staging.Enabled() {
		uploader, err := staging.NewUploader(ctx, cfg.Staging)
		if err != nil {
			slog.Warn("Staging unavailable, export disabled", "error", err)
		} else {
			loader := export.NewLoader(wh.DB(), cfg.Staging.IAMRole, cfg.Staging.Region)
			exportSvc := export.NewService(uploader, loader, nil)
			exportSvc.RegisterRoutes(srv.Engine)
		}
	} else {
		slog.Warn("Staging not fully configured (bucket, region, iam_role required), export disabled")
	}

	// 7. Maintenance Schedule
	if cfg.Maintenance.Enabled {
		scheduler, err := maintenance.NewScheduler(cfg.Maintenance.Schedule, maintainer)
		if err != nil {
			slog.Error("Invalid maintenance schedule", "error", err)
			os.Exit(1)
		}
		scheduler.Start()
		defer scheduler.Stop()
	} else {
		slog.Info("Maintenance schedule disabled by config")
	}

	// Signal handler triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
