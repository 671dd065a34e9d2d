package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pitchside-lab/project-pitchside/internal/analytics"
	corecfg "github.com/pitchside-lab/project-pitchside/internal/core/config"
	"github.com/pitchside-lab/project-pitchside/internal/core/storage/postgres"
	"github.com/pitchside-lab/project-pitchside/internal/core/validation"
	"github.com/pitchside-lab/project-pitchside/internal/migrations"
	"github.com/pitchside-lab/project-pitchside/internal/server"
	"github.com/pitchside-lab/project-pitchside/internal/social"
	"github.com/pitchside-lab/project-pitchside/internal/tracking"
	"github.com/pitchside-lab/project-pitchside/internal/users"
)

func main() {
	configPath := flag.String("config", "pitchside.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config", "config", cfg)

	// 2. Initialize Storage (PostgreSQL)
	dbAdapter, err := postgres.NewAdapter(
		cfg.Database.DSN,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
	)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer dbAdapter.Close()

	// 2.1. Run Database Migrations
	if err := migrations.RunMigrations(dbAdapter.DB(), cfg.Database.AutoMigrate); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}

	// 3. Initialize Core Services
	validator := validation.NewValidator()
	directory := users.NewDirectory(dbAdapter)
	trackingSvc := tracking.NewService(validator, dbAdapter, dbAdapter, directory, cfg.Server.MaxBodySizeMB)
	analyticsSvc := analytics.NewService(dbAdapter, dbAdapter, dbAdapter)

	// 4. Initialize Social Mirror (optional feature)
	var socialSvc *social.Service
	var refresher *social.Refresher
	if cfg.Social.Enabled {
		ttl, _ := cfg.Social.CacheTTLDuration()
		interval, _ := cfg.Social.RefreshIntervalDuration()

		var cache social.SnapshotCache
		redisCache, err := social.NewRedisCache(cfg.Social.RedisAddr, ttl)
		if err != nil {
			// Degraded mode: every snapshot request fetches live.
			slog.Warn("Redis unavailable, social cache disabled", "error", err)
		} else {
			cache = redisCache
			defer redisCache.Close()
		}

		socialSvc = social.NewService(social.NewRedditClient(), cache)
		if interval > 0 && cache != nil {
			refresher = social.NewRefresher(socialSvc, interval)
		}
	} else {
		slog.Info("Social mirror disabled by config")
	}

	// 5. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), dbAdapter.DB(), cfg.Server.Mode, cfg.Server.CORSOrigins)
	trackingSvc.RegisterRoutes(srv.Engine)
	analyticsSvc.RegisterRoutes(srv.Engine)
	directory.RegisterRoutes(srv.Engine)
	if socialSvc != nil {
		socialSvc.RegisterRoutes(srv.Engine)
	}

	// 6. Start Services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if refresher != nil {
		go func() {
			if err := refresher.Start(ctx); err != nil {
				slog.Error("Social refresher stopped with error", "error", err)
			}
		}()
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
