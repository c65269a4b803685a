package services

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/eris-monitor/backend/internal/models"
)

func TestQuarterStart(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2026-01-01", "2026-01-01"},
		{"2026-02-15", "2026-01-01"},
		{"2026-03-31", "2026-01-01"},
		{"2026-04-01", "2026-04-01"},
		{"2026-08-31", "2026-07-01"},
		{"2026-12-31", "2026-10-01"},
	}

	for _, tt := range tests {
		in, _ := time.Parse("2006-01-02", tt.in)
		got := quarterStart(in)
		if got.Format("2006-01-02") != tt.want {
			t.Errorf("quarterStart(%s) = %s, want %s", tt.in, got.Format("2006-01-02"), tt.want)
		}
		if got.Hour() != 0 || got.Minute() != 0 {
			t.Errorf("quarterStart(%s) not at midnight: %s", tt.in, got)
		}
	}
}

func TestQuarterOf(t *testing.T) {
	tests := []struct {
		month time.Month
		want  int
	}{
		{time.January, 1}, {time.March, 1},
		{time.April, 2}, {time.June, 2},
		{time.July, 3}, {time.September, 3},
		{time.October, 4}, {time.December, 4},
	}
	for _, tt := range tests {
		in := time.Date(2026, tt.month, 15, 0, 0, 0, 0, time.UTC)
		if got := quarterOf(in); got != tt.want {
			t.Errorf("quarterOf(%s) = %d, want %d", tt.month, got, tt.want)
		}
	}
}

func TestBuildArchiveCSV(t *testing.T) {
	resolver := "Jane Dev"
	createdAt := time.Date(2026, time.March, 5, 12, 30, 0, 0, time.UTC)

	logs := []models.ErrorLogDetail{
		{
			ErrorLog: models.ErrorLog{
				ID:        uuid.MustParse("11111111-1111-1111-1111-111111111111"),
				Message:   "db timeout",
				Severity:  models.SeverityCritical,
				CreatedAt: createdAt,
			},
			AppName:        "billing",
			ResolvedByName: &resolver,
		},
		{
			ErrorLog: models.ErrorLog{
				ID:        uuid.MustParse("22222222-2222-2222-2222-222222222222"),
				Message:   "deprecated call",
				Severity:  models.SeverityWarning,
				CreatedAt: createdAt,
			},
			AppName: "storefront",
		},
	}

	out, err := BuildArchiveCSV(logs)
	if err != nil {
		t.Fatalf("BuildArchiveCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 rows", len(lines))
	}
	if lines[0] != "ID,Severity,Application,Message,Resolved By,Timestamp" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "billing") || !strings.Contains(lines[1], "Jane Dev") {
		t.Errorf("row 1 missing fields: %q", lines[1])
	}
	// Unresolved logs render a dash for the resolver.
	if !strings.Contains(lines[2], ",-,") {
		t.Errorf("row 2 missing placeholder resolver: %q", lines[2])
	}
	if !strings.Contains(lines[1], "2026-03-05T12:30:00Z") {
		t.Errorf("row 1 missing RFC3339 timestamp: %q", lines[1])
	}
}
