package models

import (
	"time"

	"github.com/google/uuid"
)

// Actor types recorded in the audit trail. ActorAPI entries come from
// API-key ingestion and carry no user ID; ActorSystem entries are written by
// background jobs such as quarterly archival.
const (
	ActorUser   = "user"
	ActorSystem = "system"
	ActorAPI    = "api"
)

// Entity types audited across the service layer.
const (
	EntityErrorLog    = "error_log"
	EntityApplication = "application"
	EntityUser        = "user"
	EntitySettings    = "settings"
	EntityArchive     = "archive"
)

type AuditLog struct {
	ID          uuid.UUID  `json:"id"`
	ActorUserID *uuid.UUID `json:"actor_user_id,omitempty"`
	ActorType   string     `json:"actor_type"`
	Action      string     `json:"action"`
	EntityType  string     `json:"entity_type"`
	EntityID    *uuid.UUID `json:"entity_id,omitempty"`
	Meta        any        `json:"meta,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
