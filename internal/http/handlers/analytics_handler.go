package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/eris-monitor/backend/internal/middleware"
	"github.com/eris-monitor/backend/internal/services"
)

// AnalyticsHandler serves the dashboard charts. All three endpoints are
// role-scoped inside the service: admins see the whole fleet, developers
// see their assigned applications.
type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
	log              *zap.Logger
}

func NewAnalyticsHandler(analyticsService *services.AnalyticsService, log *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService, log: log}
}

func (h *AnalyticsHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.analyticsService.Summary(c.Context(), middleware.GetUserID(c), c.Query("range", services.Range7Days))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(summary)
}

func (h *AnalyticsHandler) TopErrors(c *fiber.Ctx) error {
	rows, err := h.analyticsService.TopErrors(c.Context(), middleware.GetUserID(c), c.Query("range", services.Range7Days))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(rows)
}

func (h *AnalyticsHandler) SeverityDistribution(c *fiber.Ctx) error {
	rows, err := h.analyticsService.SeverityDistribution(c.Context(), middleware.GetUserID(c), c.Query("range", services.Range7Days))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(rows)
}

func (h *AnalyticsHandler) Comparison(c *fiber.Ctx) error {
	rows, err := h.analyticsService.Comparison(c.Context(), middleware.GetUserID(c), c.Query("range", services.Range7Days))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(rows)
}
