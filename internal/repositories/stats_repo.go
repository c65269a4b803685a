package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StatsRepo owns the aggregate queries behind the analytics views. All
// methods accept an optional application scope (nil means unrestricted) and
// an optional lower time bound.
type StatsRepo struct {
	pool *pgxpool.Pool
}

func NewStatsRepo(pool *pgxpool.Pool) *StatsRepo {
	return &StatsRepo{pool: pool}
}

type LabelValue struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

type TrendPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type SummaryCounts struct {
	Total    int `json:"total_errors"`
	Resolved int `json:"resolved"`
	Pending  int `json:"pending"`
	Critical int `json:"critical"`
}

func statsWhere(appIDs []uuid.UUID, since *time.Time, args *[]any) string {
	where := ""
	and := func(cond string) {
		if where == "" {
			where = " WHERE " + cond
		} else {
			where += " AND " + cond
		}
	}
	if len(appIDs) > 0 {
		*args = append(*args, appIDs)
		and(fmt.Sprintf("l.application_id = ANY($%d)", len(*args)))
	}
	if since != nil {
		*args = append(*args, *since)
		and(fmt.Sprintf("l.created_at >= $%d", len(*args)))
	}
	return where
}

func (r *StatsRepo) Summary(ctx context.Context, appIDs []uuid.UUID, since *time.Time) (*SummaryCounts, error) {
	args := []any{}
	where := statsWhere(appIDs, since, &args)

	var c SummaryCounts
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE l.status = 'resolved'),
		       COUNT(*) FILTER (WHERE l.status != 'resolved'),
		       COUNT(*) FILTER (WHERE l.severity = 'critical')
		FROM error_logs l`+where, args...,
	).Scan(&c.Total, &c.Resolved, &c.Pending, &c.Critical)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// AvgResolutionHours averages resolved_at - created_at over resolved logs,
// in hours rounded to one decimal. Zero when nothing is resolved.
func (r *StatsRepo) AvgResolutionHours(ctx context.Context, appIDs []uuid.UUID, since *time.Time) (float64, error) {
	args := []any{}
	where := statsWhere(appIDs, since, &args)
	if where == "" {
		where = " WHERE l.status = 'resolved'"
	} else {
		where += " AND l.status = 'resolved'"
	}

	var hours *float64
	err := r.pool.QueryRow(ctx, `
		SELECT ROUND(AVG(EXTRACT(EPOCH FROM (l.resolved_at - l.created_at)) / 3600)::numeric, 1)
		FROM error_logs l`+where, args...).Scan(&hours)
	if err != nil {
		return 0, err
	}
	if hours == nil {
		return 0, nil
	}
	return *hours, nil
}

func (r *StatsRepo) DailyTrend(ctx context.Context, appIDs []uuid.UUID, since *time.Time) ([]TrendPoint, error) {
	args := []any{}
	where := statsWhere(appIDs, since, &args)

	rows, err := r.pool.Query(ctx, `
		SELECT to_char(date_trunc('day', l.created_at), 'YYYY-MM-DD') AS date, COUNT(*)
		FROM error_logs l`+where+`
		GROUP BY 1 ORDER BY 1 ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trend []TrendPoint
	for rows.Next() {
		var p TrendPoint
		if err := rows.Scan(&p.Date, &p.Count); err != nil {
			return nil, err
		}
		trend = append(trend, p)
	}
	return trend, rows.Err()
}

// TopApps ranks applications by error volume.
func (r *StatsRepo) TopApps(ctx context.Context, appIDs []uuid.UUID, since *time.Time, limit int) ([]LabelValue, error) {
	args := []any{}
	where := statsWhere(appIDs, since, &args)

	query := `
		SELECT a.app_name AS label, COUNT(*) AS value
		FROM error_logs l
		JOIN applications a ON a.id = l.application_id` + where + `
		GROUP BY a.app_name ORDER BY value DESC`
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return r.queryLabelValues(ctx, query, args...)
}

// TopMessages ranks error messages, grouped by 50-char prefix so variants of
// the same error collapse together.
func (r *StatsRepo) TopMessages(ctx context.Context, appIDs []uuid.UUID, since *time.Time, limit int) ([]LabelValue, error) {
	args := []any{}
	where := statsWhere(appIDs, since, &args)

	query := `
		SELECT LEFT(l.message, 50) AS label, COUNT(*) AS value
		FROM error_logs l` + where + `
		GROUP BY LEFT(l.message, 50) ORDER BY value DESC`
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return r.queryLabelValues(ctx, query, args...)
}

// SeverityDistribution counts logs per severity for the dashboard pie chart.
func (r *StatsRepo) SeverityDistribution(ctx context.Context, appIDs []uuid.UUID, since *time.Time) ([]LabelValue, error) {
	args := []any{}
	where := statsWhere(appIDs, since, &args)

	return r.queryLabelValues(ctx, `
		SELECT l.severity AS label, COUNT(*) AS value
		FROM error_logs l`+where+`
		GROUP BY l.severity ORDER BY value DESC`, args...)
}

// ResolvedPerDeveloper counts resolved logs per resolver, for the admin
// productivity view.
func (r *StatsRepo) ResolvedPerDeveloper(ctx context.Context, since *time.Time) ([]LabelValue, error) {
	args := []any{}
	where := " WHERE l.status = 'resolved'"
	if since != nil {
		args = append(args, *since)
		where += fmt.Sprintf(" AND l.created_at >= $%d", len(args))
	}

	return r.queryLabelValues(ctx, `
		SELECT u.name AS label, COUNT(*) AS value
		FROM error_logs l
		JOIN users u ON u.id = l.resolved_by`+where+`
		GROUP BY u.name ORDER BY value DESC`, args...)
}

func (r *StatsRepo) queryLabelValues(ctx context.Context, query string, args ...any) ([]LabelValue, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LabelValue
	for rows.Next() {
		var lv LabelValue
		if err := rows.Scan(&lv.Label, &lv.Value); err != nil {
			return nil, err
		}
		out = append(out, lv)
	}
	return out, rows.Err()
}
