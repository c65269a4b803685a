package repositories

import (
	"context"

	"github.com/eris-monitor/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AppRepo struct {
	pool *pgxpool.Pool
}

func NewAppRepo(pool *pgxpool.Pool) *AppRepo {
	return &AppRepo{pool: pool}
}

const appColumns = `id, app_name, description, notification_email, api_key, is_active, owner_user_id, created_at, updated_at`

func scanApp(row interface{ Scan(...any) error }) (*models.Application, error) {
	var a models.Application
	err := row.Scan(&a.ID, &a.AppName, &a.Description, &a.NotificationEmail, &a.APIKey, &a.IsActive, &a.OwnerUserID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AppRepo) Create(ctx context.Context, a *models.Application) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO applications (app_name, description, notification_email, api_key, is_active, owner_user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, a.AppName, a.Description, a.NotificationEmail, a.APIKey, a.IsActive, a.OwnerUserID).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *AppRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	return scanApp(r.pool.QueryRow(ctx, `SELECT `+appColumns+` FROM applications WHERE id = $1`, id))
}

// GetByAPIKey resolves an ingestion key. Inactive applications are treated the
// same as an unknown key.
func (r *AppRepo) GetByAPIKey(ctx context.Context, apiKey string) (*models.Application, error) {
	return scanApp(r.pool.QueryRow(ctx,
		`SELECT `+appColumns+` FROM applications WHERE api_key = $1 AND is_active = true`, apiKey))
}

func (r *AppRepo) List(ctx context.Context) ([]models.Application, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+appColumns+` FROM applications ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []models.Application
	for rows.Next() {
		a, err := scanApp(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}

func (r *AppRepo) Update(ctx context.Context, a *models.Application) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE applications SET app_name = $1, description = $2, notification_email = $3, api_key = $4, updated_at = now()
		WHERE id = $5
	`, a.AppName, a.Description, a.NotificationEmail, a.APIKey, a.ID)
	return err
}

func (r *AppRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE applications SET is_active = $1, updated_at = now() WHERE id = $2`, active, id)
	return err
}

func (r *AppRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM applications WHERE id = $1`, id)
	return err
}

// AssignDevelopers replaces the set of developers attached to an application.
func (r *AppRepo) AssignDevelopers(ctx context.Context, appID uuid.UUID, userIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM application_user WHERE application_id = $1`, appID); err != nil {
		return err
	}
	for _, uid := range userIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO application_user (application_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			appID, uid); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// IDsForDeveloper lists the applications a developer is assigned to; used to
// scope analytics for non-admins.
func (r *AppRepo) IDsForDeveloper(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT application_id FROM application_user WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
