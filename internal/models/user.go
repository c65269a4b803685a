package models

import (
	"time"

	"github.com/google/uuid"
)

// Roles. There is no third role.
const (
	RoleAdmin     = "admin"
	RoleDeveloper = "developer"
)

func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleDeveloper
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
