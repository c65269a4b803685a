package repositories

import (
	"context"

	"github.com/eris-monitor/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ArchiveRepo struct {
	pool *pgxpool.Pool
}

func NewArchiveRepo(pool *pgxpool.Pool) *ArchiveRepo {
	return &ArchiveRepo{pool: pool}
}

func (r *ArchiveRepo) Create(ctx context.Context, a *models.Archive) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO archives (period, year, csv_path, log_count, generated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, a.Period, a.Year, a.CSVPath, a.LogCount, a.GeneratedAt).Scan(&a.ID)
}

func (r *ArchiveRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Archive, error) {
	var a models.Archive
	err := r.pool.QueryRow(ctx, `
		SELECT id, period, year, csv_path, log_count, generated_at FROM archives WHERE id = $1
	`, id).Scan(&a.ID, &a.Period, &a.Year, &a.CSVPath, &a.LogCount, &a.GeneratedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ArchiveRepo) List(ctx context.Context) ([]models.Archive, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, period, year, csv_path, log_count, generated_at FROM archives ORDER BY generated_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var archives []models.Archive
	for rows.Next() {
		var a models.Archive
		if err := rows.Scan(&a.ID, &a.Period, &a.Year, &a.CSVPath, &a.LogCount, &a.GeneratedAt); err != nil {
			return nil, err
		}
		archives = append(archives, a)
	}
	return archives, rows.Err()
}

// ExistsForPeriod prevents the worker from archiving the same quarter twice.
func (r *ArchiveRepo) ExistsForPeriod(ctx context.Context, period string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM archives WHERE period = $1)`, period).Scan(&exists)
	return exists, err
}
