package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/eris-monitor/backend/internal/services"
)

type ArchiveHandler struct {
	archiveService *services.ArchiveService
	log            *zap.Logger
}

func NewArchiveHandler(archiveService *services.ArchiveService, log *zap.Logger) *ArchiveHandler {
	return &ArchiveHandler{archiveService: archiveService, log: log}
}

func (h *ArchiveHandler) List(c *fiber.Ctx) error {
	archives, err := h.archiveService.List(c.Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(archives)
}

func (h *ArchiveHandler) Download(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	archive, err := h.archiveService.Get(c.Context(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Download(archive.CSVPath)
}
