package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eris-monitor/backend/internal/http/dto"
	"github.com/eris-monitor/backend/internal/middleware"
	"github.com/eris-monitor/backend/internal/services"
)

type AppHandler struct {
	appService *services.AppService
	log        *zap.Logger
}

func NewAppHandler(appService *services.AppService, log *zap.Logger) *AppHandler {
	return &AppHandler{appService: appService, log: log}
}

func (h *AppHandler) List(c *fiber.Ctx) error {
	apps, err := h.appService.List(c.Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(apps)
}

func (h *AppHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	app, err := h.appService.Get(c.Context(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(app)
}

func (h *AppHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateAppRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	app, err := h.appService.Create(c.Context(), middleware.GetUserID(c), services.CreateAppInput{
		AppName:           req.AppName,
		Description:       req.Description,
		NotificationEmail: req.NotificationEmail,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(app)
}

func (h *AppHandler) Update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req dto.UpdateAppRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	app, err := h.appService.Update(c.Context(), middleware.GetUserID(c), id, services.UpdateAppInput{
		AppName:           req.AppName,
		Description:       req.Description,
		NotificationEmail: req.NotificationEmail,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(app)
}

func (h *AppHandler) ToggleActive(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	app, err := h.appService.ToggleActive(c.Context(), middleware.GetUserID(c), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(app)
}

func (h *AppHandler) RotateAPIKey(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	app, err := h.appService.RotateAPIKey(c.Context(), middleware.GetUserID(c), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(app)
}

func (h *AppHandler) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	if err := h.appService.Delete(c.Context(), middleware.GetUserID(c), id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *AppHandler) AssignDevelopers(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req dto.AssignDevelopersRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	userIDs := make([]uuid.UUID, 0, len(req.UserIDs))
	for _, raw := range req.UserIDs {
		userID, err := uuid.Parse(raw)
		if err != nil {
			return respondError(c, h.log, services.Validationf("invalid user id %q", raw))
		}
		userIDs = append(userIDs, userID)
	}

	if err := h.appService.AssignDevelopers(c.Context(), middleware.GetUserID(c), id, userIDs); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
