package models

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions emitted by the authentication core. Content modules append
// their own actions (create, update, publish, ...) to the same table.
const (
	AuditActionLoginSuccess = "login_success"
	AuditActionLoginFailure = "login_failure"
	AuditActionLockout      = "lockout"
)

// Entity types
const (
	AuditEntityAuth = "auth"
	AuditEntityUser = "user"
)

// AuditLog is a single append-only audit trail entry. Entries are never
// mutated or deleted by the application.
type AuditLog struct {
	ID         uuid.UUID  `db:"id"`
	ActorID    *uuid.UUID `db:"actor_id"` // nil when the actor is unknown (e.g. failed login)
	EntityType string     `db:"entity_type"`
	EntityID   string     `db:"entity_id"`
	Action     string     `db:"action"`
	Note       *string    `db:"note"`
	CreatedAt  time.Time  `db:"created_at"`
}
