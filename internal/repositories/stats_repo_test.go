package repositories

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestStatsWhere(t *testing.T) {
	appIDs := []uuid.UUID{uuid.New(), uuid.New()}
	since := time.Now().AddDate(0, 0, -7)

	tests := []struct {
		name     string
		appIDs   []uuid.UUID
		since    *time.Time
		want     string
		wantArgs int
	}{
		{"unscoped all time", nil, nil, "", 0},
		{"app scope only", appIDs, nil, " WHERE l.application_id = ANY($1)", 1},
		{"range only", nil, &since, " WHERE l.created_at >= $1", 1},
		{"app scope and range", appIDs, &since, " WHERE l.application_id = ANY($1) AND l.created_at >= $2", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := []any{}
			got := statsWhere(tt.appIDs, tt.since, &args)
			if got != tt.want {
				t.Errorf("where = %q, want %q", got, tt.want)
			}
			if len(args) != tt.wantArgs {
				t.Errorf("args = %d, want %d", len(args), tt.wantArgs)
			}
		})
	}
}
