package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/eris-monitor/backend/internal/auth"
	"github.com/eris-monitor/backend/internal/models"
	"github.com/eris-monitor/backend/internal/repositories"
)

// UserService is the admin-side account management surface.
type UserService struct {
	userRepo  *repositories.UserRepo
	logRepo   *repositories.LogRepo
	auditRepo *repositories.AuditRepo
	log       *zap.Logger
}

func NewUserService(userRepo *repositories.UserRepo, logRepo *repositories.LogRepo, auditRepo *repositories.AuditRepo, log *zap.Logger) *UserService {
	return &UserService{userRepo: userRepo, logRepo: logRepo, auditRepo: auditRepo, log: log}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.userRepo.List(ctx)
}

func (s *UserService) ListDevelopers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.ListByRole(ctx, models.RoleDeveloper)
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

func (s *UserService) Create(ctx context.Context, actorID uuid.UUID, in CreateUserInput) (*models.User, error) {
	if in.Name == "" || in.Email == "" {
		return nil, Validationf("name and email are required")
	}
	if !strings.Contains(in.Email, "@") {
		return nil, Validationf("invalid email address")
	}
	if len(in.Password) < 8 {
		return nil, Validationf("password must be at least 8 characters")
	}
	if in.Role == "" {
		in.Role = models.RoleDeveloper
	}
	if !models.IsValidRole(in.Role) {
		return nil, Validationf("invalid role %q", in.Role)
	}

	if _, err := s.userRepo.GetByEmail(ctx, in.Email); err == nil {
		return nil, Validationf("email already in use")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   models.ActorUser,
		Action:      "user_created",
		EntityType:  models.EntityUser,
		EntityID:    &user.ID,
		Meta:        map[string]any{"role": user.Role},
	})
	return user, nil
}

type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *string
}

func (s *UserService) Update(ctx context.Context, actorID, id uuid.UUID, in UpdateUserInput) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, Validationf("name cannot be empty")
		}
		user.Name = *in.Name
	}
	if in.Email != nil {
		if !strings.Contains(*in.Email, "@") {
			return nil, Validationf("invalid email address")
		}
		user.Email = *in.Email
	}
	if in.Role != nil {
		if !models.IsValidRole(*in.Role) {
			return nil, Validationf("invalid role %q", *in.Role)
		}
		user.Role = *in.Role
	}
	if in.Password != nil {
		if len(*in.Password) < 8 {
			return nil, Validationf("password must be at least 8 characters")
		}
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   models.ActorUser,
		Action:      "user_updated",
		EntityType:  models.EntityUser,
		EntityID:    &user.ID,
	})
	return user, nil
}

// Delete removes an account. Admins cannot delete themselves so the system is
// never left without an administrator by accident. Logs the user has claimed
// are reopened first; otherwise the FK would null the claim while the status
// stays in_progress and the log could never be transitioned again.
func (s *UserService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return Validationf("cannot delete your own account")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	released, err := s.logRepo.ReleaseClaimsByUser(ctx, id)
	if err != nil {
		return err
	}
	if released > 0 {
		s.log.Info("released claims of deleted user",
			zap.String("user_id", id.String()),
			zap.Int64("count", released),
		)
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   models.ActorUser,
		Action:      "user_deleted",
		EntityType:  models.EntityUser,
		EntityID:    &id,
	})
	return nil
}

// EnsureAdmin creates the bootstrap administrator on an empty user table.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if email == "" || password == "" {
		s.log.Warn("user table is empty and no bootstrap admin configured")
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	admin := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return err
	}
	s.log.Info("bootstrap admin created", zap.String("email", email))
	return nil
}
