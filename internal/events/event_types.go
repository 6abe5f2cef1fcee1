package events

import (
	"time"

	"github.com/spec-kit/crm-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventPortalContactInvited   EventType = "portal_contact_invited"
	EventPortalAccountActivated EventType = "portal_account_activated"
	EventUserRoleAssigned       EventType = "user_role_assigned"
	EventRBACInitialized        EventType = "rbac_initialized"
	EventTaskStatusChanged      EventType = "task_status_changed"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type      domain.PrincipalType `json:"type"`
	UserID    *string              `json:"user_id,omitempty"`
	ContactID *string              `json:"contact_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// PortalContactInvitedPayload payload.
type PortalContactInvitedPayload struct {
	ContactID    string    `json:"contact_id"`
	ContactEmail string    `json:"contact_email"`
	SetupToken   string    `json:"setup_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// PortalAccountActivatedPayload payload.
type PortalAccountActivatedPayload struct {
	ContactID string `json:"contact_id"`
}

// UserRoleAssignedPayload payload.
type UserRoleAssignedPayload struct {
	UserID   string  `json:"user_id"`
	RoleID   *string `json:"role_id,omitempty"`
	RoleName string  `json:"role_name,omitempty"`
}

// RBACInitializedPayload payload.
type RBACInitializedPayload struct {
	RolesEnsured       int `json:"roles_ensured"`
	PermissionsEnsured int `json:"permissions_ensured"`
}

// TaskStatusChangedPayload payload.
type TaskStatusChangedPayload struct {
	TaskID    string            `json:"task_id"`
	OldStatus domain.TaskStatus `json:"old_status"`
	NewStatus domain.TaskStatus `json:"new_status"`
}
