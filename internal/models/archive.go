package models

import (
	"time"

	"github.com/google/uuid"
)

// Archive records one quarterly export of purged logs.
type Archive struct {
	ID          uuid.UUID `json:"id"`
	Period      string    `json:"period"` // e.g. "Q1 2026"
	Year        int       `json:"year"`
	CSVPath     string    `json:"csv_path"`
	LogCount    int       `json:"log_count"`
	GeneratedAt time.Time `json:"generated_at"`
}
