package services

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eris-monitor/backend/internal/models"
	"github.com/eris-monitor/backend/internal/repositories"
)

type SettingsService struct {
	settingRepo *repositories.SettingRepo
	auditRepo   *repositories.AuditRepo
	log         *zap.Logger
}

func NewSettingsService(settingRepo *repositories.SettingRepo, auditRepo *repositories.AuditRepo, log *zap.Logger) *SettingsService {
	return &SettingsService{settingRepo: settingRepo, auditRepo: auditRepo, log: log}
}

// EmailNotificationsEnabled defaults to on when the setting was never written.
func (s *SettingsService) EmailNotificationsEnabled(ctx context.Context) (bool, error) {
	v, err := s.settingRepo.Get(ctx, models.SettingEmailNotificationsEnabled, models.DefaultEmailNotificationsEnabled)
	if err != nil {
		return false, err
	}
	enabled, err := strconv.ParseBool(v)
	if err != nil {
		return true, nil
	}
	return enabled, nil
}

func (s *SettingsService) SetEmailNotificationsEnabled(ctx context.Context, actorID uuid.UUID, enabled bool) error {
	if err := s.settingRepo.Set(ctx, models.SettingEmailNotificationsEnabled, strconv.FormatBool(enabled)); err != nil {
		return err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   models.ActorUser,
		Action:      "settings_updated",
		EntityType:  models.EntitySettings,
		Meta:        map[string]any{models.SettingEmailNotificationsEnabled: enabled},
	})
	s.log.Info("settings updated", zap.Bool("email_notifications_enabled", enabled))
	return nil
}
