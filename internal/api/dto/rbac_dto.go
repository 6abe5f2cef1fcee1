package dto

import (
	"time"

	"github.com/spec-kit/crm-service/internal/domain"
)

// RoleRequest payload for role create/update. The permission id set always
// replaces the stored set wholesale.
type RoleRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	PermissionIDs []string `json:"permission_ids"`
}

// AssignRoleRequest payload; a null role id clears the assignment. Both
// snake_case and camelCase keys are accepted on the wire.
type AssignRoleRequest struct {
	RoleID      *string `json:"role_id"`
	RoleIDCamel *string `json:"roleId"`
}

// Role returns the role id regardless of which key the client sent.
func (r AssignRoleRequest) Role() *string {
	if r.RoleID != nil {
		return r.RoleID
	}
	return r.RoleIDCamel
}

// PermissionResponse response shape for a permission.
type PermissionResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Resource    string `json:"resource,omitempty"`
	Action      string `json:"action,omitempty"`
	Description string `json:"description,omitempty"`
}

// RoleResponse response shape for a role.
type RoleResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Permissions []PermissionResponse `json:"permissions"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// NewPermissionResponse maps a domain permission.
func NewPermissionResponse(p domain.Permission) PermissionResponse {
	return PermissionResponse{
		ID:          p.ID,
		Name:        p.Name,
		Resource:    p.Resource,
		Action:      p.Action,
		Description: p.Description,
	}
}

// NewRoleResponse maps a domain role.
func NewRoleResponse(role *domain.Role) RoleResponse {
	perms := make([]PermissionResponse, 0, len(role.Permissions))
	for _, p := range role.Permissions {
		perms = append(perms, NewPermissionResponse(p))
	}
	return RoleResponse{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
		Permissions: perms,
		CreatedAt:   role.CreatedAt,
		UpdatedAt:   role.UpdatedAt,
	}
}
