package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/eris-monitor/backend/internal/config"
	"github.com/eris-monitor/backend/internal/models"
	"github.com/eris-monitor/backend/internal/repositories"
	"go.uber.org/zap"
)

// ArchiveService exports logs older than the current quarter to CSV and
// purges them. The purge is unconditional: archived logs are removed whether
// claimed or not.
type ArchiveService struct {
	logRepo     *repositories.LogRepo
	archiveRepo *repositories.ArchiveRepo
	auditRepo   *repositories.AuditRepo
	cfg         *config.Config
	log         *zap.Logger
}

func NewArchiveService(
	logRepo *repositories.LogRepo,
	archiveRepo *repositories.ArchiveRepo,
	auditRepo *repositories.AuditRepo,
	cfg *config.Config,
	log *zap.Logger,
) *ArchiveService {
	return &ArchiveService{
		logRepo:     logRepo,
		archiveRepo: archiveRepo,
		auditRepo:   auditRepo,
		cfg:         cfg,
		log:         log,
	}
}

func quarterOf(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

// quarterStart returns midnight on the first day of t's quarter, in t's
// location. Logs created before this boundary belong to a past quarter.
func quarterStart(t time.Time) time.Time {
	month := time.Month((quarterOf(t)-1)*3 + 1)
	return time.Date(t.Year(), month, 1, 0, 0, 0, 0, t.Location())
}

// Run archives everything older than the current quarter under the previous
// quarter's label. Already-archived periods are skipped, so the worker can
// call this as often as it likes.
func (s *ArchiveService) Run(ctx context.Context) error {
	now := time.Now()
	cutoff := quarterStart(now)
	prev := cutoff.AddDate(0, -3, 0)
	period := fmt.Sprintf("Q%d %d", quarterOf(prev), prev.Year())

	archived, err := s.archiveRepo.ExistsForPeriod(ctx, period)
	if err != nil {
		return err
	}
	if archived {
		return nil
	}

	logs, err := s.logRepo.ListDetailsBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if len(logs) == 0 {
		return nil
	}

	s.log.Info("archiving logs",
		zap.String("period", period),
		zap.Int("count", len(logs)),
	)

	content, err := BuildArchiveCSV(logs)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.cfg.ArchiveDir, 0o755); err != nil {
		return err
	}
	filename := fmt.Sprintf("logs_%d_Q%d.csv", prev.Year(), quarterOf(prev))
	path := filepath.Join(s.cfg.ArchiveDir, filename)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return err
	}

	archive := &models.Archive{
		Period:      period,
		Year:        prev.Year(),
		CSVPath:     path,
		LogCount:    len(logs),
		GeneratedAt: now,
	}
	if err := s.archiveRepo.Create(ctx, archive); err != nil {
		return err
	}

	purged, err := s.logRepo.DeleteBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorType:  models.ActorSystem,
		Action:     "logs_archived",
		EntityType: models.EntityArchive,
		EntityID:   &archive.ID,
		Meta:       map[string]any{"period": period, "purged": purged},
	})

	s.log.Info("archival complete",
		zap.String("period", period),
		zap.String("path", path),
		zap.Int64("purged", purged),
	)
	return nil
}

func (s *ArchiveService) List(ctx context.Context) ([]models.Archive, error) {
	return s.archiveRepo.List(ctx)
}

func (s *ArchiveService) Get(ctx context.Context, id uuid.UUID) (*models.Archive, error) {
	archive, err := s.archiveRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("archive %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return archive, nil
}

// BuildArchiveCSV renders the raw-log export: one row per log with its
// application and resolver names.
func BuildArchiveCSV(logs []models.ErrorLogDetail) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"ID", "Severity", "Application", "Message", "Resolved By", "Timestamp"}); err != nil {
		return nil, err
	}
	for _, l := range logs {
		resolver := "-"
		if l.ResolvedByName != nil {
			resolver = *l.ResolvedByName
		}
		row := []string{
			l.ID.String(),
			string(l.Severity),
			l.AppName,
			l.Message,
			resolver,
			l.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
