// Package claim holds the decision logic for error-log ownership. A log's
// in_progress/resolved claim acts as a pessimistic lock: whoever starts work
// owns the ticket until they release it or an admin force-releases it back to
// open. Every status write in the system goes through Evaluate; handlers and
// jobs never mutate status or claim fields on their own.
package claim

import (
	"errors"
	"fmt"
	"time"

	"github.com/eris-monitor/backend/internal/models"
	"github.com/google/uuid"
)

// Actor is the authenticated caller, as resolved by the session layer.
type Actor struct {
	ID   uuid.UUID
	Role string
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// Mutation is the full resulting state of the controlled fields after an
// allowed transition. The caller persists it; Evaluate never writes anything.
type Mutation struct {
	Status       models.Status
	InProgressBy *uuid.UUID
	InProgressAt *time.Time
	ResolvedBy   *uuid.UUID
	ResolvedAt   *time.Time
}

// ClaimedByOtherError denies a transition because the log is claimed by
// someone else. Name is filled in by the service layer, which is the only
// place user profiles can be loaded.
type ClaimedByOtherError struct {
	ClaimantID uuid.UUID
	Name       string
}

func (e *ClaimedByOtherError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("log is claimed by %s", e.Name)
	}
	return fmt.Sprintf("log is claimed by another user (%s)", e.ClaimantID)
}

// InvariantError flags a log whose claim fields contradict its status. No
// code path produces this state; seeing it means the record was mutated
// outside the state machine.
type InvariantError struct {
	LogID uuid.UUID
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("log %s violates the claim invariant", e.LogID)
}

// ErrNotAdmin denies a role-gated operation.
var ErrNotAdmin = errors.New("admin role required")

// CheckInvariant verifies the claim-fields/status contract: an open log
// carries no claims, an in_progress log names its claimant, a resolved log
// names its resolver.
func CheckInvariant(log *models.ErrorLog) error {
	switch log.Status {
	case models.StatusOpen:
		if log.InProgressBy != nil || log.ResolvedBy != nil {
			return &InvariantError{LogID: log.ID}
		}
	case models.StatusInProgress:
		if log.InProgressBy == nil {
			return &InvariantError{LogID: log.ID}
		}
	case models.StatusResolved:
		if log.ResolvedBy == nil {
			return &InvariantError{LogID: log.ID}
		}
	}
	return nil
}

// Evaluate decides whether actor may move log to target and, if so, what the
// controlled fields become. Pure: the log is never mutated. now is the
// timestamp recorded on any claim the transition creates.
//
// Rules, in precedence order:
//   - target open: admins always succeed (force release); developers succeed
//     only on unclaimed logs or logs they themselves claimed.
//   - target in_progress/resolved: denied for everyone, admins included, when
//     the active claim belongs to someone else. An admin takes over a ticket
//     by force-releasing it to open first, never by resolving over the
//     claimant's head.
func Evaluate(actor Actor, log *models.ErrorLog, target models.Status, now time.Time) (Mutation, error) {
	// Admin force release is the escape hatch and must stay reachable even
	// for a record whose claim fields were orphaned outside the state
	// machine (a claimant's account deletion nulls them via FK). Its
	// mutation unconditionally clears every controlled field, so it is
	// checked before the invariant.
	if target == models.StatusOpen && actor.IsAdmin() {
		return Mutation{Status: models.StatusOpen}, nil
	}

	if err := CheckInvariant(log); err != nil {
		return Mutation{}, err
	}

	switch target {
	case models.StatusOpen:
		if !unclaimedOrOwn(log, actor.ID) {
			return Mutation{}, &ClaimedByOtherError{ClaimantID: *log.ActiveClaimant()}
		}
		return Mutation{Status: models.StatusOpen}, nil

	case models.StatusInProgress:
		if claimant := log.ActiveClaimant(); claimant != nil && *claimant != actor.ID {
			return Mutation{}, &ClaimedByOtherError{ClaimantID: *claimant}
		}
		return Mutation{
			Status:       models.StatusInProgress,
			InProgressBy: &actor.ID,
			InProgressAt: &now,
		}, nil

	case models.StatusResolved:
		if claimant := log.ActiveClaimant(); claimant != nil && *claimant != actor.ID {
			return Mutation{}, &ClaimedByOtherError{ClaimantID: *claimant}
		}
		// The in_progress claim is kept as provenance of who worked the log.
		return Mutation{
			Status:       models.StatusResolved,
			InProgressBy: log.InProgressBy,
			InProgressAt: log.InProgressAt,
			ResolvedBy:   &actor.ID,
			ResolvedAt:   &now,
		}, nil
	}

	return Mutation{}, fmt.Errorf("unknown target status %q", target)
}

func unclaimedOrOwn(log *models.ErrorLog, userID uuid.UUID) bool {
	if log.ActiveClaimant() == nil {
		return true
	}
	return log.ClaimedBy(userID)
}

// CanDelete gates bulk deletion. Deletion is a destructive administrative
// action outside the claim model: it ignores claims entirely but is
// admin-only.
func CanDelete(actor Actor) error {
	if !actor.IsAdmin() {
		return ErrNotAdmin
	}
	return nil
}
