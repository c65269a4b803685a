package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestClassifySeverity(t *testing.T) {
	tests := []struct {
		message  string
		expected Severity
	}{
		{"Connection timeout after 30s", SeverityCritical},
		{"FATAL: could not fork new process", SeverityCritical},
		{"deadlock detected on orders table", SeverityCritical},
		{"SQLSTATE[HY000] general error", SeverityCritical},
		{"out of memory in worker", SeverityCritical},
		{"connection refused by upstream", SeverityCritical},
		{"panic: runtime error", SeverityCritical},

		{"Undefined variable $user", SeverityError},
		{"call to null pointer", SeverityError},
		{"syntax problem near line 10", SeverityError},
		{"unauthorized access attempt", SeverityError},
		{"invalid argument supplied", SeverityError},

		{"method is deprecated since v2", SeverityWarning},
		{"slow query took 4.2s", SeverityWarning},
		{"rate limit approaching", SeverityWarning},
		{"session expired for user", SeverityWarning},

		// No keyword match defaults to error.
		{"something odd happened", SeverityError},
		{"", SeverityError},

		// Critical keywords win over lower buckets.
		{"deprecated call caused a timeout", SeverityCritical},
		{"invalid retry configuration", SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			if got := ClassifySeverity(tt.message); got != tt.expected {
				t.Errorf("ClassifySeverity(%q) = %s, want %s", tt.message, got, tt.expected)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"open", "in_progress", "resolved"} {
		if _, ok := ParseStatus(valid); !ok {
			t.Errorf("ParseStatus(%q) rejected a valid status", valid)
		}
	}
	for _, invalid := range []string{"", "closed", "OPEN", "inprogress"} {
		if _, ok := ParseStatus(invalid); ok {
			t.Errorf("ParseStatus(%q) accepted an invalid status", invalid)
		}
	}
}

func TestParseSeverity(t *testing.T) {
	for _, valid := range []string{"warning", "error", "critical"} {
		if _, ok := ParseSeverity(valid); !ok {
			t.Errorf("ParseSeverity(%q) rejected a valid severity", valid)
		}
	}
	for _, invalid := range []string{"", "info", "CRITICAL"} {
		if _, ok := ParseSeverity(invalid); ok {
			t.Errorf("ParseSeverity(%q) accepted an invalid severity", invalid)
		}
	}
}

func TestActiveClaimant(t *testing.T) {
	worker := uuid.New()
	resolver := uuid.New()

	open := &ErrorLog{Status: StatusOpen}
	if open.ActiveClaimant() != nil {
		t.Error("open log must have no active claimant")
	}

	inProgress := &ErrorLog{Status: StatusInProgress, InProgressBy: &worker}
	if got := inProgress.ActiveClaimant(); got == nil || *got != worker {
		t.Errorf("in_progress claimant = %v, want %s", got, worker)
	}

	// Stale in_progress_by on a resolved log is provenance, not the claim.
	resolved := &ErrorLog{Status: StatusResolved, InProgressBy: &worker, ResolvedBy: &resolver}
	if got := resolved.ActiveClaimant(); got == nil || *got != resolver {
		t.Errorf("resolved claimant = %v, want %s", got, resolver)
	}

	if !resolved.ClaimedBy(worker) || !resolved.ClaimedBy(resolver) {
		t.Error("ClaimedBy must match either claim field")
	}
	if resolved.ClaimedBy(uuid.New()) {
		t.Error("ClaimedBy matched an unrelated user")
	}
}
