package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eris-monitor/backend/internal/claim"
	"github.com/eris-monitor/backend/internal/http/dto"
	"github.com/eris-monitor/backend/internal/services"
)

// respondError turns a service error into a JSON response. Every error that
// reaches a handler passes through here so the mapping stays in one place.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	var validation *services.ValidationError
	if errors.As(err, &validation) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Error: validation.Msg})
	}

	var denied *claim.BulkDenied
	if errors.As(err, &denied) {
		// The batch aborts on the first failing log; the status reflects
		// why that log failed, not just that the batch was refused.
		status := fiber.StatusForbidden
		switch {
		case errors.Is(denied.Reason, services.ErrNotFound):
			status = fiber.StatusNotFound
		case errors.Is(denied.Reason, services.ErrConflict):
			status = fiber.StatusConflict
		}
		return c.Status(status).JSON(fiber.Map{
			"error":  denied.Error(),
			"log_id": denied.LogID.String(),
		})
	}

	var claimed *claim.ClaimedByOtherError
	if errors.As(err, &claimed) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: claimed.Error()})
	}

	switch {
	case errors.Is(err, services.ErrUnauthenticated),
		errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidAPIKey):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrForbidden), errors.Is(err, claim.ErrNotAdmin):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	log.Error("request failed",
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal server error"})
}

func parseIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, services.Validationf("invalid %s", name)
	}
	return id, nil
}

func parseIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, services.Validationf("invalid log id %q", s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
