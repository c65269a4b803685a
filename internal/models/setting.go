package models

// Global settings keys and their defaults when the row is absent.
const (
	SettingEmailNotificationsEnabled = "email_notifications_enabled"

	// Email broadcast is opt-in: until an admin flips the switch, critical
	// logs do not trigger mail.
	DefaultEmailNotificationsEnabled = "false"
)
