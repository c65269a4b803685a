package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Log severities, fixed at ingestion.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

func ParseSeverity(s string) (Severity, bool) {
	switch Severity(s) {
	case SeverityWarning, SeverityError, SeverityCritical:
		return Severity(s), true
	}
	return "", false
}

// Log statuses, controlled exclusively by the claim state machine.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
)

func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusOpen, StatusInProgress, StatusResolved:
		return Status(s), true
	}
	return "", false
}

// Keyword buckets for auto-severity, checked in order of urgency.
var (
	criticalKeywords = []string{"timeout", "fatal", "deadlock", "sql", "memory", "overflow", "refused", "panic"}
	errorKeywords    = []string{"error", "fail", "exception", "undefined", "null", "syntax", "unauthorized", "invalid"}
	warningKeywords  = []string{"deprecated", "slow", "retry", "limit", "expired"}
)

// ClassifySeverity derives a severity from the log message when the client
// did not send one. Unmatched messages default to error.
func ClassifySeverity(message string) Severity {
	m := strings.ToLower(message)
	for _, kw := range criticalKeywords {
		if strings.Contains(m, kw) {
			return SeverityCritical
		}
	}
	for _, kw := range errorKeywords {
		if strings.Contains(m, kw) {
			return SeverityError
		}
	}
	for _, kw := range warningKeywords {
		if strings.Contains(m, kw) {
			return SeverityWarning
		}
	}
	return SeverityError
}

type ErrorLog struct {
	ID            uuid.UUID      `json:"id"`
	ApplicationID uuid.UUID      `json:"application_id"`
	Message       string         `json:"message"`
	StackTrace    *string        `json:"stack_trace,omitempty"`
	Severity      Severity       `json:"severity"`
	Status        Status         `json:"status"`
	InProgressBy  *uuid.UUID     `json:"in_progress_by,omitempty"`
	InProgressAt  *time.Time     `json:"in_progress_at,omitempty"`
	ResolvedBy    *uuid.UUID     `json:"resolved_by,omitempty"`
	ResolvedAt    *time.Time     `json:"resolved_at,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// ActiveClaimant returns the user holding the claim that governs further
// transitions: the in_progress claimant while in progress, the resolver while
// resolved. Open logs have no active claimant. A stale in_progress_by on a
// resolved log is provenance only and does not govern.
func (l *ErrorLog) ActiveClaimant() *uuid.UUID {
	switch l.Status {
	case StatusInProgress:
		return l.InProgressBy
	case StatusResolved:
		return l.ResolvedBy
	}
	return nil
}

// ClaimedBy reports whether either claim field names the given user.
func (l *ErrorLog) ClaimedBy(userID uuid.UUID) bool {
	if l.InProgressBy != nil && *l.InProgressBy == userID {
		return true
	}
	if l.ResolvedBy != nil && *l.ResolvedBy == userID {
		return true
	}
	return false
}

// ErrorLogDetail embeds ErrorLog and adds display names to avoid N+1 queries.
type ErrorLogDetail struct {
	ErrorLog
	AppName          string  `json:"app_name"`
	InProgressByName *string `json:"in_progress_by_name,omitempty"`
	ResolvedByName   *string `json:"resolved_by_name,omitempty"`
}
