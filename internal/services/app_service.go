package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/eris-monitor/backend/internal/auth"
	"github.com/eris-monitor/backend/internal/models"
	"github.com/eris-monitor/backend/internal/repositories"
)

type AppService struct {
	appRepo   *repositories.AppRepo
	auditRepo *repositories.AuditRepo
	log       *zap.Logger
}

func NewAppService(appRepo *repositories.AppRepo, auditRepo *repositories.AuditRepo, log *zap.Logger) *AppService {
	return &AppService{appRepo: appRepo, auditRepo: auditRepo, log: log}
}

func (s *AppService) List(ctx context.Context) ([]models.Application, error) {
	return s.appRepo.List(ctx)
}

func (s *AppService) Get(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("application %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return app, nil
}

type CreateAppInput struct {
	AppName           string
	Description       string
	NotificationEmail string
}

func (s *AppService) Create(ctx context.Context, actorID uuid.UUID, in CreateAppInput) (*models.Application, error) {
	if in.AppName == "" {
		return nil, Validationf("app_name is required")
	}
	key, err := auth.GenerateAPIKey()
	if err != nil {
		return nil, fmt.Errorf("generate api key: %w", err)
	}

	app := &models.Application{
		AppName:     in.AppName,
		APIKey:      key,
		IsActive:    true,
		OwnerUserID: &actorID,
	}
	if in.Description != "" {
		app.Description = &in.Description
	}
	if in.NotificationEmail != "" {
		app.NotificationEmail = &in.NotificationEmail
	}
	if err := s.appRepo.Create(ctx, app); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   models.ActorUser,
		Action:      "application_created",
		EntityType:  models.EntityApplication,
		EntityID:    &app.ID,
		Meta:        map[string]any{"app_name": app.AppName},
	})
	return app, nil
}

type UpdateAppInput struct {
	AppName           *string
	Description       *string
	NotificationEmail *string
}

func (s *AppService) Update(ctx context.Context, actorID, id uuid.UUID, in UpdateAppInput) (*models.Application, error) {
	app, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.AppName != nil {
		if *in.AppName == "" {
			return nil, Validationf("app_name cannot be empty")
		}
		app.AppName = *in.AppName
	}
	if in.Description != nil {
		app.Description = in.Description
	}
	if in.NotificationEmail != nil {
		app.NotificationEmail = in.NotificationEmail
	}
	if err := s.appRepo.Update(ctx, app); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   models.ActorUser,
		Action:      "application_updated",
		EntityType:  models.EntityApplication,
		EntityID:    &app.ID,
	})
	return app, nil
}

// ToggleActive flips ingestion on or off. An inactive application rejects
// every submission made with its key.
func (s *AppService) ToggleActive(ctx context.Context, actorID, id uuid.UUID) (*models.Application, error) {
	app, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	app.IsActive = !app.IsActive
	if err := s.appRepo.SetActive(ctx, id, app.IsActive); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   models.ActorUser,
		Action:      "application_toggled",
		EntityType:  models.EntityApplication,
		EntityID:    &app.ID,
		Meta:        map[string]any{"is_active": app.IsActive},
	})
	return app, nil
}

// RotateAPIKey replaces the key. The old one stops working immediately.
func (s *AppService) RotateAPIKey(ctx context.Context, actorID, id uuid.UUID) (*models.Application, error) {
	app, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	key, err := auth.GenerateAPIKey()
	if err != nil {
		return nil, fmt.Errorf("generate api key: %w", err)
	}
	app.APIKey = key
	if err := s.appRepo.Update(ctx, app); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   models.ActorUser,
		Action:      "application_key_rotated",
		EntityType:  models.EntityApplication,
		EntityID:    &app.ID,
	})
	return app, nil
}

func (s *AppService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.appRepo.Delete(ctx, id); err != nil {
		return err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   models.ActorUser,
		Action:      "application_deleted",
		EntityType:  models.EntityApplication,
		EntityID:    &id,
	})
	return nil
}

func (s *AppService) AssignDevelopers(ctx context.Context, actorID, id uuid.UUID, userIDs []uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.appRepo.AssignDevelopers(ctx, id, userIDs); err != nil {
		return err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   models.ActorUser,
		Action:      "application_developers_assigned",
		EntityType:  models.EntityApplication,
		EntityID:    &id,
		Meta:        map[string]any{"count": len(userIDs)},
	})
	return nil
}
