package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/eris-monitor/backend/internal/http/dto"
	"github.com/eris-monitor/backend/internal/middleware"
	"github.com/eris-monitor/backend/internal/services"
)

type SettingsHandler struct {
	settingsService *services.SettingsService
	log             *zap.Logger
}

func NewSettingsHandler(settingsService *services.SettingsService, log *zap.Logger) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService, log: log}
}

func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	enabled, err := h.settingsService.EmailNotificationsEnabled(c.Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SettingsResponse{EmailNotificationsEnabled: enabled})
}

func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	if err := h.settingsService.SetEmailNotificationsEnabled(c.Context(), middleware.GetUserID(c), req.EmailNotificationsEnabled); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SettingsResponse{EmailNotificationsEnabled: req.EmailNotificationsEnabled})
}
