package dto

type AuthResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

type IngestResponse struct {
	ID       string `json:"id"`
	Severity string `json:"severity"`
	Status   string `json:"status"`
}

type BulkUpdateResponse struct {
	UpdatedCount int `json:"updated_count"`
}

type BulkDeleteResponse struct {
	DeletedCount int64 `json:"deleted_count"`
}

type SettingsResponse struct {
	EmailNotificationsEnabled bool `json:"email_notifications_enabled"`
}
