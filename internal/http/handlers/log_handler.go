package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eris-monitor/backend/internal/http/dto"
	"github.com/eris-monitor/backend/internal/middleware"
	"github.com/eris-monitor/backend/internal/models"
	"github.com/eris-monitor/backend/internal/repositories"
	"github.com/eris-monitor/backend/internal/services"
)

type LogHandler struct {
	logService    *services.LogStatusService
	ingestService *services.IngestService
	appRepo       *repositories.AppRepo
	log           *zap.Logger
}

func NewLogHandler(
	logService *services.LogStatusService,
	ingestService *services.IngestService,
	appRepo *repositories.AppRepo,
	log *zap.Logger,
) *LogHandler {
	return &LogHandler{
		logService:    logService,
		ingestService: ingestService,
		appRepo:       appRepo,
		log:           log,
	}
}

// Ingest is the public submission endpoint. It authenticates with the
// application API key, never with a user token.
func (h *LogHandler) Ingest(c *fiber.Ctx) error {
	var req dto.IngestLogRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	apiKey := c.Get("X-API-Key")
	if apiKey == "" {
		apiKey = req.APIKey
	}

	logRec, err := h.ingestService.Ingest(c.Context(), apiKey, services.IngestInput{
		Message:    req.Message,
		StackTrace: req.StackTrace,
		Severity:   req.Severity,
		Metadata:   req.Metadata,
		HappenedAt: req.HappenedAt,
		ClientIP:   c.IP(),
		UserAgent:  c.Get("User-Agent"),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.IngestResponse{
		ID:       logRec.ID.String(),
		Severity: string(logRec.Severity),
		Status:   string(logRec.Status),
	})
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// scopedAppIDs returns nil for admins (no filtering) and the set of assigned
// application ids for developers. A developer with no assignments gets a
// sentinel that matches nothing.
func (h *LogHandler) scopedAppIDs(c *fiber.Ctx) ([]uuid.UUID, error) {
	if middleware.GetUserRole(c) == models.RoleAdmin {
		return nil, nil
	}
	ids, err := h.appRepo.IDsForDeveloper(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []uuid.UUID{uuid.Nil}, nil
	}
	return ids, nil
}

func (h *LogHandler) List(c *fiber.Ctx) error {
	appIDs, err := h.scopedAppIDs(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	filter := repositories.LogFilter{
		ApplicationIDs: appIDs,
		Limit:          c.QueryInt("limit", 50),
		Offset:         c.QueryInt("offset", 0),
	}
	if raw := c.Query("application_id"); raw != "" {
		appID, err := uuid.Parse(raw)
		if err != nil {
			return respondError(c, h.log, services.Validationf("invalid application_id"))
		}
		if appIDs != nil && !containsID(appIDs, appID) {
			return respondError(c, h.log, services.ErrForbidden)
		}
		filter.ApplicationIDs = []uuid.UUID{appID}
	}
	if raw := c.Query("status"); raw != "" {
		status, ok := models.ParseStatus(raw)
		if !ok {
			return respondError(c, h.log, services.Validationf("invalid status %q", raw))
		}
		filter.Status = &status
	}
	if raw := c.Query("severity"); raw != "" {
		severity, ok := models.ParseSeverity(raw)
		if !ok {
			return respondError(c, h.log, services.Validationf("invalid severity %q", raw))
		}
		filter.Severity = &severity
	}

	logs, err := h.logService.List(c.Context(), filter)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(logs)
}

func (h *LogHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	detail, err := h.logService.Get(c.Context(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}

	if middleware.GetUserRole(c) != models.RoleAdmin {
		appIDs, err := h.appRepo.IDsForDeveloper(c.Context(), middleware.GetUserID(c))
		if err != nil {
			return respondError(c, h.log, err)
		}
		if !containsID(appIDs, detail.ApplicationID) {
			return respondError(c, h.log, services.ErrForbidden)
		}
	}
	return c.JSON(detail)
}

// History serves the audit trail of one log for the admin detail view.
func (h *LogHandler) History(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	entries, err := h.logService.History(c.Context(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(entries)
}

func (h *LogHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req dto.UpdateLogStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	detail, err := h.logService.UpdateStatus(c.Context(), middleware.GetUserID(c), id, req.Status)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(detail)
}

func (h *LogHandler) BulkUpdateStatus(c *fiber.Ctx) error {
	var req dto.BulkUpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	ids, err := parseIDs(req.LogIDs)
	if err != nil {
		return respondError(c, h.log, err)
	}

	count, err := h.logService.UpdateStatusBulk(c.Context(), middleware.GetUserID(c), ids, req.Status)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.BulkUpdateResponse{UpdatedCount: count})
}

func (h *LogHandler) BulkDelete(c *fiber.Ctx) error {
	var req dto.BulkDeleteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	ids, err := parseIDs(req.LogIDs)
	if err != nil {
		return respondError(c, h.log, err)
	}

	count, err := h.logService.DeleteBulk(c.Context(), middleware.GetUserID(c), ids)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.BulkDeleteResponse{DeletedCount: count})
}
