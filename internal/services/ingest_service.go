package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/eris-monitor/backend/internal/events"
	"github.com/eris-monitor/backend/internal/models"
	"github.com/eris-monitor/backend/internal/repositories"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// IngestService accepts error events from client applications authenticated
// by API key. Ingestion never touches claims: every log starts open and
// unclaimed.
type IngestService struct {
	appRepo     *repositories.AppRepo
	logRepo     *repositories.LogRepo
	userRepo    *repositories.UserRepo
	settingRepo *repositories.SettingRepo
	auditRepo   *repositories.AuditRepo
	mailer      *Mailer
	publisher   events.Publisher
	log         *zap.Logger
}

func NewIngestService(
	appRepo *repositories.AppRepo,
	logRepo *repositories.LogRepo,
	userRepo *repositories.UserRepo,
	settingRepo *repositories.SettingRepo,
	auditRepo *repositories.AuditRepo,
	mailer *Mailer,
	publisher events.Publisher,
	log *zap.Logger,
) *IngestService {
	return &IngestService{
		appRepo:     appRepo,
		logRepo:     logRepo,
		userRepo:    userRepo,
		settingRepo: settingRepo,
		auditRepo:   auditRepo,
		mailer:      mailer,
		publisher:   publisher,
		log:         log,
	}
}

type IngestInput struct {
	Message    string
	StackTrace *string
	Severity   string
	Metadata   map[string]any
	HappenedAt *time.Time // optional client-side timestamp override
	ClientIP   string
	UserAgent  string
}

func (s *IngestService) Ingest(ctx context.Context, apiKey string, input IngestInput) (*models.ErrorLog, error) {
	if apiKey == "" {
		return nil, ErrInvalidAPIKey
	}
	app, err := s.appRepo.GetByAPIKey(ctx, apiKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidAPIKey
		}
		return nil, err
	}

	if input.Message == "" {
		return nil, Validationf("message is required")
	}

	var severity models.Severity
	if input.Severity != "" {
		sev, ok := models.ParseSeverity(input.Severity)
		if !ok {
			return nil, Validationf("unknown severity %q, must be one of: warning, error, critical", input.Severity)
		}
		severity = sev
	} else {
		severity = models.ClassifySeverity(input.Message)
	}

	metadata := make(map[string]any, len(input.Metadata)+3)
	for k, v := range input.Metadata {
		metadata[k] = v
	}
	metadata["ip_address"] = input.ClientIP
	metadata["user_agent"] = input.UserAgent
	metadata["ingested_at"] = time.Now().Format(time.RFC3339)

	createdAt := time.Now()
	if input.HappenedAt != nil {
		createdAt = *input.HappenedAt
	}

	logRec := &models.ErrorLog{
		ApplicationID: app.ID,
		Message:       input.Message,
		StackTrace:    input.StackTrace,
		Severity:      severity,
		Status:        models.StatusOpen,
		Metadata:      metadata,
		CreatedAt:     createdAt,
	}
	if err := s.logRepo.Create(ctx, logRec); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorType:  models.ActorAPI,
		Action:     "log_ingested",
		EntityType: models.EntityErrorLog,
		EntityID:   &logRec.ID,
		Meta:       map[string]any{"application_id": app.ID, "severity": severity},
	})
	_ = s.publisher.Publish(ctx, events.StreamLogs, events.Event{
		Type: events.EventLogIngested,
		Payload: map[string]any{
			"log_id":         logRec.ID.String(),
			"application_id": app.ID.String(),
			"severity":       string(severity),
		},
	})

	if severity == models.SeverityCritical {
		// Fire and forget: a broken mail relay must never fail ingestion.
		go s.notifyCritical(app, logRec)
	}

	return logRec, nil
}

func (s *IngestService) notifyCritical(app *models.Application, logRec *models.ErrorLog) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	enabled, err := s.settingRepo.Get(ctx, models.SettingEmailNotificationsEnabled, models.DefaultEmailNotificationsEnabled)
	if err != nil {
		s.log.Error("failed to read email notification setting", zap.Error(err))
		return
	}
	if on, _ := strconv.ParseBool(enabled); !on {
		return
	}

	recipients, err := s.userRepo.EmailsByRole(ctx, models.RoleDeveloper)
	if err != nil {
		s.log.Error("failed to list notification recipients", zap.Error(err))
		return
	}
	if app.NotificationEmail != nil && *app.NotificationEmail != "" {
		recipients = append(recipients, *app.NotificationEmail)
	}
	if len(recipients) == 0 {
		return
	}

	if err := s.mailer.SendCriticalAlert(ctx, app.AppName, logRec, recipients); err != nil {
		s.log.Error("failed to send critical error email",
			zap.String("log_id", logRec.ID.String()),
			zap.Error(err),
		)
	}
}
