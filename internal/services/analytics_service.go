package services

import (
	"context"
	"errors"
	"time"

	"github.com/eris-monitor/backend/internal/models"
	"github.com/eris-monitor/backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Analytics ranges.
const (
	Range7Days   = "7_days"
	Range30Days  = "30_days"
	RangeAllTime = "all_time"
)

// AnalyticsService shapes the dashboard aggregates. Developers only see logs
// of applications they are assigned to; admins see everything.
type AnalyticsService struct {
	statsRepo *repositories.StatsRepo
	appRepo   *repositories.AppRepo
	userRepo  *repositories.UserRepo
	log       *zap.Logger
}

func NewAnalyticsService(statsRepo *repositories.StatsRepo, appRepo *repositories.AppRepo, userRepo *repositories.UserRepo, log *zap.Logger) *AnalyticsService {
	return &AnalyticsService{statsRepo: statsRepo, appRepo: appRepo, userRepo: userRepo, log: log}
}

type Summary struct {
	repositories.SummaryCounts
	AvgResolutionHours float64                   `json:"avg_resolution_time"`
	Trend              []repositories.TrendPoint `json:"trend"`
}

func rangeSince(rng string) (*time.Time, error) {
	switch rng {
	case Range7Days, "":
		t := time.Now().AddDate(0, 0, -7)
		return &t, nil
	case Range30Days:
		t := time.Now().AddDate(0, 0, -30)
		return &t, nil
	case RangeAllTime:
		return nil, nil
	}
	return nil, Validationf("unknown range %q, must be one of: 7_days, 30_days, all_time", rng)
}

func (s *AnalyticsService) scope(ctx context.Context, actorID uuid.UUID) (*models.User, []uuid.UUID, error) {
	user, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrUnauthenticated
		}
		return nil, nil, err
	}
	if user.Role == models.RoleAdmin {
		return user, nil, nil
	}
	appIDs, err := s.appRepo.IDsForDeveloper(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	if len(appIDs) == 0 {
		// Developer with no assignments sees nothing, not everything.
		appIDs = []uuid.UUID{uuid.Nil}
	}
	return user, appIDs, nil
}

func (s *AnalyticsService) Summary(ctx context.Context, actorID uuid.UUID, rng string) (*Summary, error) {
	_, appIDs, err := s.scope(ctx, actorID)
	if err != nil {
		return nil, err
	}
	since, err := rangeSince(rng)
	if err != nil {
		return nil, err
	}

	counts, err := s.statsRepo.Summary(ctx, appIDs, since)
	if err != nil {
		return nil, err
	}
	avg, err := s.statsRepo.AvgResolutionHours(ctx, appIDs, since)
	if err != nil {
		return nil, err
	}
	trend, err := s.statsRepo.DailyTrend(ctx, appIDs, since)
	if err != nil {
		return nil, err
	}

	return &Summary{SummaryCounts: *counts, AvgResolutionHours: avg, Trend: trend}, nil
}

// TopErrors ranks by application volume for admins and by message prefix for
// developers.
func (s *AnalyticsService) TopErrors(ctx context.Context, actorID uuid.UUID, rng string) ([]repositories.LabelValue, error) {
	user, appIDs, err := s.scope(ctx, actorID)
	if err != nil {
		return nil, err
	}
	since, err := rangeSince(rng)
	if err != nil {
		return nil, err
	}

	if user.Role == models.RoleAdmin {
		return s.statsRepo.TopApps(ctx, appIDs, since, 5)
	}
	return s.statsRepo.TopMessages(ctx, appIDs, since, 5)
}

// SeverityDistribution counts logs per severity within the range, scoped to
// the developer's assigned applications like every other chart.
func (s *AnalyticsService) SeverityDistribution(ctx context.Context, actorID uuid.UUID, rng string) ([]repositories.LabelValue, error) {
	_, appIDs, err := s.scope(ctx, actorID)
	if err != nil {
		return nil, err
	}
	since, err := rangeSince(rng)
	if err != nil {
		return nil, err
	}
	return s.statsRepo.SeverityDistribution(ctx, appIDs, since)
}

// Comparison shows resolved-per-developer for admins and errors-per-app for
// developers.
func (s *AnalyticsService) Comparison(ctx context.Context, actorID uuid.UUID, rng string) ([]repositories.LabelValue, error) {
	user, appIDs, err := s.scope(ctx, actorID)
	if err != nil {
		return nil, err
	}
	since, err := rangeSince(rng)
	if err != nil {
		return nil, err
	}

	if user.Role == models.RoleAdmin {
		return s.statsRepo.ResolvedPerDeveloper(ctx, since)
	}
	return s.statsRepo.TopApps(ctx, appIDs, since, 0)
}
