package handlers

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eris-monitor/backend/internal/claim"
	"github.com/eris-monitor/backend/internal/services"
)

func TestRespondErrorStatusCodes(t *testing.T) {
	logID := uuid.New()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", services.Validationf("bad input"), fiber.StatusUnprocessableEntity},
		{"unauthenticated", services.ErrUnauthenticated, fiber.StatusUnauthorized},
		{"invalid api key", services.ErrInvalidAPIKey, fiber.StatusUnauthorized},
		{"forbidden", services.ErrForbidden, fiber.StatusForbidden},
		{"not found", services.ErrNotFound, fiber.StatusNotFound},
		{"conflict", services.ErrConflict, fiber.StatusConflict},
		{"claimed by other", &claim.ClaimedByOtherError{ClaimantID: uuid.New()}, fiber.StatusForbidden},
		{"bulk denied on claim", &claim.BulkDenied{LogID: logID, Reason: &claim.ClaimedByOtherError{ClaimantID: uuid.New()}}, fiber.StatusForbidden},
		{"bulk denied on deleted log", &claim.BulkDenied{LogID: logID, Reason: fmt.Errorf("log %s: %w", logID, services.ErrNotFound)}, fiber.StatusNotFound},
		{"bulk denied on concurrent change", &claim.BulkDenied{LogID: logID, Reason: services.ErrConflict}, fiber.StatusConflict},
		{"unexpected", fmt.Errorf("pool exhausted"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/boom", func(c *fiber.Ctx) error {
				return respondError(c, zap.NewNop(), tt.err)
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}
