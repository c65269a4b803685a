package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eris-monitor/backend/internal/claim"
	"github.com/eris-monitor/backend/internal/events"
	"github.com/eris-monitor/backend/internal/models"
	"github.com/eris-monitor/backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// ErrConflict reports a concurrent modification that left the log unclaimed;
// the request can simply be retried.
var ErrConflict = errors.New("log changed concurrently, retry")

// LogStatusService is the only code path allowed to write a log's status and
// claim fields. Handlers, jobs and repositories never mutate them directly.
type LogStatusService struct {
	logRepo   *repositories.LogRepo
	userRepo  *repositories.UserRepo
	auditRepo *repositories.AuditRepo
	publisher events.Publisher
	log       *zap.Logger
}

func NewLogStatusService(
	logRepo *repositories.LogRepo,
	userRepo *repositories.UserRepo,
	auditRepo *repositories.AuditRepo,
	publisher events.Publisher,
	log *zap.Logger,
) *LogStatusService {
	return &LogStatusService{
		logRepo:   logRepo,
		userRepo:  userRepo,
		auditRepo: auditRepo,
		publisher: publisher,
		log:       log,
	}
}

func (s *LogStatusService) resolveActor(ctx context.Context, actorID uuid.UUID) (claim.Actor, error) {
	user, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return claim.Actor{}, ErrUnauthenticated
		}
		return claim.Actor{}, err
	}
	return claim.Actor{ID: user.ID, Role: user.Role}, nil
}

// decorateClaimant fills the claimant's display name into a denial so the UI
// can say who holds the ticket. The profile is loaded only when a denial
// actually happens.
func (s *LogStatusService) decorateClaimant(ctx context.Context, denial *claim.ClaimedByOtherError) {
	claimant, err := s.userRepo.GetByID(ctx, denial.ClaimantID)
	if err != nil {
		s.log.Warn("failed to resolve claimant name", zap.String("claimant_id", denial.ClaimantID.String()), zap.Error(err))
		return
	}
	denial.Name = claimant.Name
}

// UpdateStatus transitions a single log. The persist step is conditioned on
// the claim fields still matching what was read, so a concurrent claim is
// reported as ClaimedByOther instead of silently overwritten.
func (s *LogStatusService) UpdateStatus(ctx context.Context, actorID, logID uuid.UUID, requested string) (*models.ErrorLogDetail, error) {
	target, ok := models.ParseStatus(requested)
	if !ok {
		return nil, Validationf("unknown status %q, must be one of: open, in_progress, resolved", requested)
	}

	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	logRec, err := s.logRepo.GetByID(ctx, logID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("log %s: %w", logID, ErrNotFound)
		}
		return nil, err
	}

	mutation, err := claim.Evaluate(actor, logRec, target, time.Now())
	if err != nil {
		var denial *claim.ClaimedByOtherError
		if errors.As(err, &denial) {
			s.decorateClaimant(ctx, denial)
		}
		return nil, err
	}

	if _, err := s.logRepo.UpdateStatusClaim(ctx, logRec.ID, mutation, logRec.InProgressBy, logRec.ResolvedBy); err != nil {
		var conflict *repositories.ClaimConflictError
		if errors.As(err, &conflict) {
			return nil, s.explainConflict(ctx, logID)
		}
		return nil, err
	}

	s.recordTransition(ctx, actor, logRec, target)

	return s.logRepo.GetDetail(ctx, logID)
}

// explainConflict re-reads a log after a lost CAS race and shapes the error
// the caller sees: gone means not found, re-claimed means ClaimedByOther.
func (s *LogStatusService) explainConflict(ctx context.Context, logID uuid.UUID) error {
	current, err := s.logRepo.GetByID(ctx, logID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("log %s: %w", logID, ErrNotFound)
		}
		return err
	}
	if claimant := current.ActiveClaimant(); claimant != nil {
		denial := &claim.ClaimedByOtherError{ClaimantID: *claimant}
		s.decorateClaimant(ctx, denial)
		return denial
	}
	return ErrConflict
}

func (s *LogStatusService) recordTransition(ctx context.Context, actor claim.Actor, logRec *models.ErrorLog, target models.Status) {
	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &actor.ID,
		ActorType:   models.ActorUser,
		Action:      fmt.Sprintf("log_status_%s_to_%s", logRec.Status, target),
		EntityType:  models.EntityErrorLog,
		EntityID:    &logRec.ID,
		Meta:        map[string]any{"old_status": logRec.Status, "new_status": target},
	})
	_ = s.publisher.Publish(ctx, events.StreamLogs, events.Event{
		Type: events.EventLogStatusChanged,
		Payload: map[string]any{
			"log_id":     logRec.ID.String(),
			"old_status": string(logRec.Status),
			"new_status": string(target),
			"actor_id":   actor.ID.String(),
		},
	})
}

// UpdateStatusBulk applies one target status to a batch. Authorization is
// checked for every item before anything is persisted; one denial rejects the
// whole batch and no log changes.
func (s *LogStatusService) UpdateStatusBulk(ctx context.Context, actorID uuid.UUID, logIDs []uuid.UUID, requested string) (int, error) {
	if len(logIDs) == 0 {
		return 0, Validationf("log id list must not be empty")
	}
	target, ok := models.ParseStatus(requested)
	if !ok {
		return 0, Validationf("unknown status %q, must be one of: open, in_progress, resolved", requested)
	}

	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return 0, err
	}

	logIDs = dedupe(logIDs)
	logs, err := s.logRepo.GetByIDs(ctx, logIDs)
	if err != nil {
		return 0, err
	}
	if len(logs) != len(logIDs) {
		return 0, fmt.Errorf("log %s: %w", firstMissing(logIDs, logs), ErrNotFound)
	}

	now := time.Now()
	mutations, err := claim.EvaluateBulk(actor, logs, target, now)
	if err != nil {
		var denied *claim.BulkDenied
		if errors.As(err, &denied) {
			var denial *claim.ClaimedByOtherError
			if errors.As(denied.Reason, &denial) {
				s.decorateClaimant(ctx, denial)
			}
		}
		return 0, err
	}

	updates := make([]repositories.ClaimUpdate, len(logs))
	for i, l := range logs {
		updates[i] = repositories.ClaimUpdate{
			ID:               l.ID,
			PrevInProgressBy: l.InProgressBy,
			PrevResolvedBy:   l.ResolvedBy,
			Mutation:         mutations[i],
		}
	}

	if err := s.logRepo.BulkUpdateStatusClaim(ctx, updates); err != nil {
		var conflict *repositories.ClaimConflictError
		if errors.As(err, &conflict) {
			return 0, &claim.BulkDenied{LogID: conflict.LogID, Reason: s.explainConflict(ctx, conflict.LogID)}
		}
		return 0, err
	}

	for _, l := range logs {
		s.recordTransition(ctx, actor, l, target)
	}

	return len(logs), nil
}

// DeleteBulk removes logs unconditionally. Admin only; claims are not
// consulted; deletion sits outside the claim model.
func (s *LogStatusService) DeleteBulk(ctx context.Context, actorID uuid.UUID, logIDs []uuid.UUID) (int64, error) {
	if len(logIDs) == 0 {
		return 0, Validationf("log id list must not be empty")
	}

	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return 0, err
	}
	if err := claim.CanDelete(actor); err != nil {
		return 0, fmt.Errorf("bulk delete: %w", ErrForbidden)
	}

	count, err := s.logRepo.DeleteByIDs(ctx, logIDs)
	if err != nil {
		return 0, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &actor.ID,
		ActorType:   models.ActorUser,
		Action:      "logs_bulk_deleted",
		EntityType:  models.EntityErrorLog,
		Meta:        map[string]any{"count": count},
	})
	_ = s.publisher.Publish(ctx, events.StreamLogs, events.Event{
		Type:    events.EventLogsDeleted,
		Payload: map[string]any{"count": count, "actor_id": actor.ID.String()},
	})

	return count, nil
}

func (s *LogStatusService) Get(ctx context.Context, id uuid.UUID) (*models.ErrorLogDetail, error) {
	d, err := s.logRepo.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("log %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return d, nil
}

func (s *LogStatusService) List(ctx context.Context, f repositories.LogFilter) ([]models.ErrorLogDetail, error) {
	return s.logRepo.ListDetails(ctx, f)
}

// History returns the audit trail of a single log, newest first.
func (s *LogStatusService) History(ctx context.Context, id uuid.UUID) ([]models.AuditLog, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.auditRepo.GetByEntity(ctx, models.EntityErrorLog, id, 50, 0)
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func firstMissing(ids []uuid.UUID, found []*models.ErrorLog) uuid.UUID {
	present := make(map[uuid.UUID]bool, len(found))
	for _, l := range found {
		present[l.ID] = true
	}
	for _, id := range ids {
		if !present[id] {
			return id
		}
	}
	return uuid.Nil
}
