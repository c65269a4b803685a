package dto

import "time"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	Name      *string `json:"name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// IngestLogRequest is the public submission payload. Severity is optional;
// a missing or unknown value is classified from the message text. The api_key
// field is a fallback for clients that cannot set the X-API-Key header.
type IngestLogRequest struct {
	APIKey     string         `json:"api_key,omitempty"`
	Message    string         `json:"message"`
	StackTrace *string        `json:"stack_trace,omitempty"`
	Severity   string         `json:"severity,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	HappenedAt *time.Time     `json:"happened_at,omitempty"`
}

type UpdateLogStatusRequest struct {
	Status string `json:"status"`
}

type BulkUpdateStatusRequest struct {
	LogIDs []string `json:"log_ids"`
	Status string   `json:"status"`
}

type BulkDeleteRequest struct {
	LogIDs []string `json:"log_ids"`
}

type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty"`
}

type CreateAppRequest struct {
	AppName           string `json:"app_name"`
	Description       string `json:"description,omitempty"`
	NotificationEmail string `json:"notification_email,omitempty"`
}

type UpdateAppRequest struct {
	AppName           *string `json:"app_name,omitempty"`
	Description       *string `json:"description,omitempty"`
	NotificationEmail *string `json:"notification_email,omitempty"`
}

type AssignDevelopersRequest struct {
	UserIDs []string `json:"user_ids"`
}

type UpdateSettingsRequest struct {
	EmailNotificationsEnabled bool `json:"email_notifications_enabled"`
}
