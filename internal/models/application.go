package models

import (
	"time"

	"github.com/google/uuid"
)

type Application struct {
	ID                uuid.UUID  `json:"id"`
	AppName           string     `json:"app_name"`
	Description       *string    `json:"description,omitempty"`
	NotificationEmail *string    `json:"notification_email,omitempty"`
	APIKey            string     `json:"api_key"`
	IsActive          bool       `json:"is_active"`
	OwnerUserID       *uuid.UUID `json:"owner_user_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
