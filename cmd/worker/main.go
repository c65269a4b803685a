package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/eris-monitor/backend/internal/config"
	"github.com/eris-monitor/backend/internal/db"
	"github.com/eris-monitor/backend/internal/repositories"
	"github.com/eris-monitor/backend/internal/services"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	logRepo := repositories.NewLogRepo(pool)
	archiveRepo := repositories.NewArchiveRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	archiveService := services.NewArchiveService(logRepo, archiveRepo, auditRepo, cfg, log)

	log.Info("worker started",
		zap.Duration("archive_check_interval", cfg.ArchiveCheckInterval),
	)

	// Archival is idempotent, so run once on startup and then on the ticker.
	runArchival(ctx, archiveService, log)

	archiveTicker := time.NewTicker(cfg.ArchiveCheckInterval)
	defer archiveTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-archiveTicker.C:
			runArchival(ctx, archiveService, log)
		case <-sigCh:
			log.Info("shutting down worker")
			cancel()
			return
		case <-ctx.Done():
			return
		}
	}
}

func runArchival(ctx context.Context, archiveService *services.ArchiveService, log *zap.Logger) {
	if err := archiveService.Run(ctx); err != nil {
		log.Error("archival run failed", zap.Error(err))
	}
}
