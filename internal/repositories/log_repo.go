package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eris-monitor/backend/internal/claim"
	"github.com/eris-monitor/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LogRepo struct {
	pool *pgxpool.Pool
}

func NewLogRepo(pool *pgxpool.Pool) *LogRepo {
	return &LogRepo{pool: pool}
}

// ClaimConflictError means a guarded status update matched no row: the log was
// deleted or its claim fields changed after they were read. The service layer
// re-reads to tell the two apart.
type ClaimConflictError struct {
	LogID uuid.UUID
}

func (e *ClaimConflictError) Error() string {
	return fmt.Sprintf("claim state of log %s changed since read", e.LogID)
}

const logColumns = `id, application_id, message, stack_trace, severity, status,
	in_progress_by, in_progress_at, resolved_by, resolved_at, metadata, created_at, updated_at`

func scanLog(row interface{ Scan(...any) error }) (*models.ErrorLog, error) {
	var l models.ErrorLog
	err := row.Scan(&l.ID, &l.ApplicationID, &l.Message, &l.StackTrace, &l.Severity, &l.Status,
		&l.InProgressBy, &l.InProgressAt, &l.ResolvedBy, &l.ResolvedAt, &l.Metadata, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LogRepo) Create(ctx context.Context, l *models.ErrorLog) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO error_logs (application_id, message, stack_trace, severity, status, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, updated_at
	`, l.ApplicationID, l.Message, l.StackTrace, l.Severity, l.Status, l.Metadata, l.CreatedAt).Scan(&l.ID, &l.UpdatedAt)
}

func (r *LogRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ErrorLog, error) {
	return scanLog(r.pool.QueryRow(ctx, `SELECT `+logColumns+` FROM error_logs WHERE id = $1`, id))
}

// GetByIDs loads a batch. The result preserves the order of ids; a shorter
// result means some ids do not exist.
func (r *LogRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.ErrorLog, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+logColumns+` FROM error_logs WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]*models.ErrorLog, len(ids))
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		byID[l.ID] = l
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	logs := make([]*models.ErrorLog, 0, len(ids))
	for _, id := range ids {
		if l, ok := byID[id]; ok {
			logs = append(logs, l)
		}
	}
	return logs, nil
}

const logDetailQuery = `
	SELECT l.id, l.application_id, l.message, l.stack_trace, l.severity, l.status,
	       l.in_progress_by, l.in_progress_at, l.resolved_by, l.resolved_at, l.metadata,
	       l.created_at, l.updated_at,
	       a.app_name, ip.name, rs.name
	FROM error_logs l
	JOIN applications a ON a.id = l.application_id
	LEFT JOIN users ip ON ip.id = l.in_progress_by
	LEFT JOIN users rs ON rs.id = l.resolved_by`

func scanLogDetail(row interface{ Scan(...any) error }) (*models.ErrorLogDetail, error) {
	var d models.ErrorLogDetail
	err := row.Scan(&d.ID, &d.ApplicationID, &d.Message, &d.StackTrace, &d.Severity, &d.Status,
		&d.InProgressBy, &d.InProgressAt, &d.ResolvedBy, &d.ResolvedAt, &d.Metadata,
		&d.CreatedAt, &d.UpdatedAt,
		&d.AppName, &d.InProgressByName, &d.ResolvedByName)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *LogRepo) GetDetail(ctx context.Context, id uuid.UUID) (*models.ErrorLogDetail, error) {
	return scanLogDetail(r.pool.QueryRow(ctx, logDetailQuery+` WHERE l.id = $1`, id))
}

type LogFilter struct {
	ApplicationIDs []uuid.UUID
	Status         *models.Status
	Severity       *models.Severity
	Limit          int
	Offset         int
}

func (r *LogRepo) ListDetails(ctx context.Context, f LogFilter) ([]models.ErrorLogDetail, error) {
	query := logDetailQuery
	args := []any{}
	argIdx := 1
	where := []string{}

	if len(f.ApplicationIDs) > 0 {
		where = append(where, fmt.Sprintf("l.application_id = ANY($%d)", argIdx))
		args = append(args, f.ApplicationIDs)
		argIdx++
	}
	if f.Status != nil {
		where = append(where, fmt.Sprintf("l.status = $%d", argIdx))
		args = append(args, *f.Status)
		argIdx++
	}
	if f.Severity != nil {
		where = append(where, fmt.Sprintf("l.severity = $%d", argIdx))
		args = append(args, *f.Severity)
		argIdx++
	}

	if len(where) > 0 {
		query += " WHERE "
		for i, w := range where {
			if i > 0 {
				query += " AND "
			}
			query += w
		}
	}

	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query += fmt.Sprintf(" ORDER BY l.created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.ErrorLogDetail
	for rows.Next() {
		d, err := scanLogDetail(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *d)
	}
	return logs, rows.Err()
}

// UpdateStatusClaim persists an allowed transition, conditioned on the claim
// fields still holding the values that were read. A concurrent claim makes the
// update match nothing and surfaces as ClaimConflictError instead of a silent
// lost update.
func (r *LogRepo) UpdateStatusClaim(ctx context.Context, id uuid.UUID, m claim.Mutation, prevInProgressBy, prevResolvedBy *uuid.UUID) (*models.ErrorLog, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE error_logs
		SET status = $1, in_progress_by = $2, in_progress_at = $3,
		    resolved_by = $4, resolved_at = $5, updated_at = now()
		WHERE id = $6
		  AND in_progress_by IS NOT DISTINCT FROM $7
		  AND resolved_by IS NOT DISTINCT FROM $8
		RETURNING `+logColumns,
		m.Status, m.InProgressBy, m.InProgressAt, m.ResolvedBy, m.ResolvedAt,
		id, prevInProgressBy, prevResolvedBy)

	l, err := scanLog(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ClaimConflictError{LogID: id}
		}
		return nil, err
	}
	return l, nil
}

// ClaimUpdate is one row of a guarded batch update.
type ClaimUpdate struct {
	ID               uuid.UUID
	PrevInProgressBy *uuid.UUID
	PrevResolvedBy   *uuid.UUID
	Mutation         claim.Mutation
}

// BulkUpdateStatusClaim applies all updates in a single transaction with the
// same per-row guard as UpdateStatusClaim. Any row that fails its guard rolls
// the whole batch back; either every log gets its new state or none does.
func (r *LogRepo) BulkUpdateStatusClaim(ctx context.Context, updates []ClaimUpdate) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, u := range updates {
		tag, err := tx.Exec(ctx, `
			UPDATE error_logs
			SET status = $1, in_progress_by = $2, in_progress_at = $3,
			    resolved_by = $4, resolved_at = $5, updated_at = now()
			WHERE id = $6
			  AND in_progress_by IS NOT DISTINCT FROM $7
			  AND resolved_by IS NOT DISTINCT FROM $8
		`, u.Mutation.Status, u.Mutation.InProgressBy, u.Mutation.InProgressAt,
			u.Mutation.ResolvedBy, u.Mutation.ResolvedAt,
			u.ID, u.PrevInProgressBy, u.PrevResolvedBy)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return &ClaimConflictError{LogID: u.ID}
		}
	}
	return tx.Commit(ctx)
}

func (r *LogRepo) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM error_logs WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListDetailsBefore fetches every log created before cutoff, oldest first.
// Used by the archival job.
func (r *LogRepo) ListDetailsBefore(ctx context.Context, cutoff time.Time) ([]models.ErrorLogDetail, error) {
	rows, err := r.pool.Query(ctx, logDetailQuery+` WHERE l.created_at < $1 ORDER BY l.created_at ASC`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.ErrorLogDetail
	for rows.Next() {
		d, err := scanLogDetail(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *d)
	}
	return logs, rows.Err()
}

// ReleaseClaimsByUser reopens every log the user holds an active in_progress
// claim on. Called before account deletion so the FK SET NULL never strands a
// claimed log in a state nobody can transition.
func (r *LogRepo) ReleaseClaimsByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE error_logs
		SET status = 'open', in_progress_by = NULL, in_progress_at = NULL,
		    resolved_by = NULL, resolved_at = NULL, updated_at = now()
		WHERE status = 'in_progress' AND in_progress_by = $1
	`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteBefore purges every log created before cutoff, claimed or not.
func (r *LogRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM error_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
