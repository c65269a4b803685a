package events

import "context"

// Event types
const (
	EventLogIngested      = "log_ingested"
	EventLogStatusChanged = "log_status_changed"
	EventLogsDeleted      = "logs_deleted"
)

// StreamLogs is the pub/sub channel dashboard consumers listen on.
const StreamLogs = "events:logs"

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}
