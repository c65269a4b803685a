package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/eris-monitor/backend/internal/config"
	"github.com/eris-monitor/backend/internal/db"
	"github.com/eris-monitor/backend/internal/events"
	apphttp "github.com/eris-monitor/backend/internal/http"
	"github.com/eris-monitor/backend/internal/http/handlers"
	"github.com/eris-monitor/backend/internal/repositories"
	"github.com/eris-monitor/backend/internal/services"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	appRepo := repositories.NewAppRepo(pool)
	logRepo := repositories.NewLogRepo(pool)
	archiveRepo := repositories.NewArchiveRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)
	settingRepo := repositories.NewSettingRepo(pool)
	statsRepo := repositories.NewStatsRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)

	// Services
	mailer := services.NewMailer(cfg, log)
	authService := services.NewAuthService(userRepo, cfg, log)
	userService := services.NewUserService(userRepo, logRepo, auditRepo, log)
	appService := services.NewAppService(appRepo, auditRepo, log)
	logService := services.NewLogStatusService(logRepo, userRepo, auditRepo, publisher, log)
	ingestService := services.NewIngestService(appRepo, logRepo, userRepo, settingRepo, auditRepo, mailer, publisher, log)
	analyticsService := services.NewAnalyticsService(statsRepo, appRepo, userRepo, log)
	archiveService := services.NewArchiveService(logRepo, archiveRepo, auditRepo, cfg, log)
	settingsService := services.NewSettingsService(settingRepo, auditRepo, log)

	// Bootstrap admin on first start
	if err := userService.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal("failed to bootstrap admin", zap.Error(err))
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, log)
	logHandler := handlers.NewLogHandler(logService, ingestService, appRepo, log)
	userHandler := handlers.NewUserHandler(userService, log)
	appHandler := handlers.NewAppHandler(appService, log)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, log)
	archiveHandler := handlers.NewArchiveHandler(archiveService, log)
	settingsHandler := handlers.NewSettingsHandler(settingsService, log)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb,
		authHandler, logHandler, userHandler, appHandler,
		analyticsHandler, archiveHandler, settingsHandler)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
