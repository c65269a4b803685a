package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/eris-monitor/backend/internal/config"
	"github.com/eris-monitor/backend/internal/http/handlers"
	"github.com/eris-monitor/backend/internal/middleware"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	authHandler *handlers.AuthHandler,
	logHandler *handlers.LogHandler,
	userHandler *handlers.UserHandler,
	appHandler *handlers.AppHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	archiveHandler *handlers.ArchiveHandler,
	settingsHandler *handlers.SettingsHandler,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID, X-API-Key",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Public: client submissions authenticate with the application API key
	// and are rate limited per key.
	api.Post("/logs",
		middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute),
		logHandler.Ingest,
	)

	// Public: login
	api.Post("/auth/login", authHandler.Login)

	// Protected endpoints (admin and developer)
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	protected.Get("/me", authHandler.Me)
	protected.Put("/me", authHandler.UpdateProfile)
	protected.Put("/me/password", authHandler.UpdatePassword)

	protected.Get("/logs", logHandler.List)
	protected.Get("/logs/:id", logHandler.Get)
	protected.Put("/logs/:id/status", logHandler.UpdateStatus)
	protected.Put("/logs/status", logHandler.BulkUpdateStatus)

	protected.Get("/analytics/summary", analyticsHandler.Summary)
	protected.Get("/analytics/top-errors", analyticsHandler.TopErrors)
	protected.Get("/analytics/comparison", analyticsHandler.Comparison)
	protected.Get("/analytics/severity", analyticsHandler.SeverityDistribution)

	protected.Get("/applications", appHandler.List)
	protected.Get("/applications/:id", appHandler.Get)

	// Admin-only management surface
	admin := protected.Group("", middleware.AdminMiddleware())

	admin.Delete("/logs", logHandler.BulkDelete)
	admin.Get("/logs/:id/history", logHandler.History)

	admin.Post("/applications", appHandler.Create)
	admin.Put("/applications/:id", appHandler.Update)
	admin.Delete("/applications/:id", appHandler.Delete)
	admin.Post("/applications/:id/toggle", appHandler.ToggleActive)
	admin.Post("/applications/:id/rotate-key", appHandler.RotateAPIKey)
	admin.Put("/applications/:id/developers", appHandler.AssignDevelopers)

	admin.Get("/users", userHandler.List)
	admin.Get("/users/developers", userHandler.ListDevelopers)
	admin.Get("/users/:id", userHandler.Get)
	admin.Post("/users", userHandler.Create)
	admin.Put("/users/:id", userHandler.Update)
	admin.Delete("/users/:id", userHandler.Delete)

	admin.Get("/archives", archiveHandler.List)
	admin.Get("/archives/:id/download", archiveHandler.Download)

	admin.Get("/settings", settingsHandler.Get)
	admin.Put("/settings", settingsHandler.Update)
}
