package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/events"
	"github.com/spec-kit/crm-service/internal/repository"
	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

// RBACService resolves effective roles and permissions and manages the
// role/permission catalog.
type RBACService struct {
	roles       repository.RoleRepository
	permissions repository.PermissionRepository
	users       repository.UserRepository
	dispatcher  events.Dispatcher
}

// RBACDependencies bundles repositories for the RBAC service.
type RBACDependencies struct {
	RoleRepo       repository.RoleRepository
	PermissionRepo repository.PermissionRepository
	UserRepo       repository.UserRepository
	Dispatcher     events.Dispatcher
}

// NewRBACService builds the service.
func NewRBACService(deps RBACDependencies) *RBACService {
	return &RBACService{
		roles:       deps.RoleRepo,
		permissions: deps.PermissionRepo,
		users:       deps.UserRepo,
		dispatcher:  deps.Dispatcher,
	}
}

// ResolveRoleName returns the canonical role name for a role reference, or
// the no-role sentinel. A linked reference to a role that no longer exists
// resolves to the sentinel rather than an error.
func (s *RBACService) ResolveRoleName(ctx context.Context, ref domain.RoleRef) (string, error) {
	switch ref.Kind {
	case domain.RoleRefLegacy:
		return ref.LegacyName, nil
	case domain.RoleRefLinked:
		role, err := s.roles.GetByID(ctx, ref.RoleID)
		if err != nil {
			if err == pgx.ErrNoRows {
				return domain.NoRoleName, nil
			}
			return domain.NoRoleName, err
		}
		return role.Name, nil
	default:
		return domain.NoRoleName, nil
	}
}

// ResolvePermissions returns the permission set attached to a role
// reference. An unassigned reference, or a legacy name without a matching
// role row, yields an empty set.
func (s *RBACService) ResolvePermissions(ctx context.Context, ref domain.RoleRef) ([]domain.Permission, error) {
	var (
		role *domain.Role
		err  error
	)

	switch ref.Kind {
	case domain.RoleRefLegacy:
		role, err = s.roles.GetByName(ctx, ref.LegacyName)
	case domain.RoleRefLinked:
		role, err = s.roles.GetByID(ctx, ref.RoleID)
	default:
		return []domain.Permission{}, nil
	}

	if err != nil {
		if err == pgx.ErrNoRows {
			return []domain.Permission{}, nil
		}
		return nil, err
	}
	if role.Permissions == nil {
		return []domain.Permission{}, nil
	}
	return role.Permissions, nil
}

// UserHasPermission reports whether the user's effective role carries the
// named permission.
func (s *RBACService) UserHasPermission(ctx context.Context, user *domain.User, permission string) (bool, error) {
	perms, err := s.ResolvePermissions(ctx, user.RoleRef())
	if err != nil {
		return false, err
	}
	for _, p := range perms {
		if p.Name == permission {
			return true, nil
		}
	}
	return false, nil
}

// ListPermissions returns the full permission catalog in stable name order.
func (s *RBACService) ListPermissions(ctx context.Context) ([]domain.Permission, error) {
	return s.permissions.List(ctx)
}

// ListRoles returns all roles with their permission sets.
func (s *RBACService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	return s.roles.List(ctx)
}

// GetRole loads a single role.
func (s *RBACService) GetRole(ctx context.Context, id string) (*domain.Role, error) {
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("role", map[string]any{"role_id": id})
		}
		return nil, err
	}
	return role, nil
}

// CreateRole persists a new role with the exact permission-id set supplied.
// Role names are case-sensitive unique.
func (s *RBACService) CreateRole(ctx context.Context, name, description string, permissionIDs []string) (*domain.Role, error) {
	if name == "" {
		return nil, apperrors.NewValidationError("role name required", nil)
	}

	if _, err := s.roles.GetByName(ctx, name); err == nil {
		return nil, apperrors.NewConflict("role name already in use", map[string]any{"name": name})
	} else if err != pgx.ErrNoRows {
		return nil, err
	}

	role := &domain.Role{Name: name, Description: description}
	if err := s.roles.Create(ctx, role, permissionIDs); err != nil {
		// a concurrent create can slip past the name check; the unique
		// index is authoritative
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("role name already in use", map[string]any{"name": name})
		}
		return nil, err
	}
	return s.roles.GetByID(ctx, role.ID)
}

// UpdateRole replaces name, description and the entire permission set
// atomically. Partial application is impossible: the repository runs the
// replace in one transaction.
func (s *RBACService) UpdateRole(ctx context.Context, roleID, name, description string, permissionIDs []string) (*domain.Role, error) {
	if name == "" {
		return nil, apperrors.NewValidationError("role name required", nil)
	}

	current, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("role", map[string]any{"role_id": roleID})
		}
		return nil, err
	}

	if name != current.Name {
		if _, err := s.roles.GetByName(ctx, name); err == nil {
			return nil, apperrors.NewConflict("role name already in use", map[string]any{"name": name})
		} else if err != pgx.ErrNoRows {
			return nil, err
		}
	}

	current.Name = name
	current.Description = description
	if err := s.roles.Replace(ctx, current, permissionIDs); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("role", map[string]any{"role_id": roleID})
		}
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("role name already in use", map[string]any{"name": name})
		}
		return nil, err
	}
	return s.roles.GetByID(ctx, roleID)
}

// DeleteRole removes a role. Users referencing it transition to the no-role
// state; they are never cascaded.
func (s *RBACService) DeleteRole(ctx context.Context, roleID string) error {
	if err := s.roles.Delete(ctx, roleID); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("role", map[string]any{"role_id": roleID})
		}
		return err
	}
	return nil
}

// AssignRoleToUser sets or clears a user's role reference. A nil roleID is
// the remove-role action, not an error.
func (s *RBACService) AssignRoleToUser(ctx context.Context, userID string, roleID *string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return err
	}

	roleName := ""
	if roleID != nil {
		role, err := s.roles.GetByID(ctx, *roleID)
		if err != nil {
			if err == pgx.ErrNoRows {
				return apperrors.NewNotFound("role", map[string]any{"role_id": *roleID})
			}
			return err
		}
		roleName = role.Name
	}

	if err := s.users.SetRole(ctx, userID, roleID); err != nil {
		return err
	}

	s.publish(ctx, events.EventUserRoleAssigned, events.UserRoleAssignedPayload{
		UserID:   user.ID,
		RoleID:   roleID,
		RoleName: roleName,
	})
	return nil
}

type seededRole struct {
	name        string
	description string
	permissions []string
}

// InitializeSystemRBAC ensures the canonical default roles and permission
// catalog exist. Safe to call repeatedly: existing rows are left untouched
// and no duplicates are created.
func (s *RBACService) InitializeSystemRBAC(ctx context.Context) error {
	catalog := defaultPermissionCatalog()
	permIDs := make(map[string]string, len(catalog))
	for i := range catalog {
		if err := s.permissions.Ensure(ctx, &catalog[i]); err != nil {
			return err
		}
		permIDs[catalog[i].Name] = catalog[i].ID
	}

	rolesEnsured := 0
	for _, seed := range defaultRoles() {
		if _, err := s.roles.GetByName(ctx, seed.name); err == nil {
			continue
		} else if err != pgx.ErrNoRows {
			return err
		}

		ids := make([]string, 0, len(seed.permissions))
		for _, permName := range seed.permissions {
			if id, ok := permIDs[permName]; ok {
				ids = append(ids, id)
			}
		}
		role := &domain.Role{Name: seed.name, Description: seed.description}
		if err := s.roles.Create(ctx, role, ids); err != nil {
			return err
		}
		rolesEnsured++
	}

	s.publish(ctx, events.EventRBACInitialized, events.RBACInitializedPayload{
		RolesEnsured:       rolesEnsured,
		PermissionsEnsured: len(catalog),
	})
	return nil
}

func (s *RBACService) publish(ctx context.Context, eventType events.EventType, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

func defaultPermissionCatalog() []domain.Permission {
	crud := []string{"accounts", "contacts", "tasks", "leads", "workflows", "reports"}
	perms := make([]domain.Permission, 0, len(crud)*2+3)
	for _, resource := range crud {
		perms = append(perms,
			domain.Permission{Name: resource + ":read", Resource: resource, Action: "read"},
			domain.Permission{Name: resource + ":write", Resource: resource, Action: "write"},
		)
	}
	perms = append(perms,
		domain.Permission{Name: "users:manage", Resource: "users", Action: "manage"},
		domain.Permission{Name: "roles:manage", Resource: "roles", Action: "manage"},
		domain.Permission{Name: "settings:manage", Resource: "settings", Action: "manage"},
	)
	return perms
}

func defaultRoles() []seededRole {
	all := make([]string, 0)
	for _, p := range defaultPermissionCatalog() {
		all = append(all, p.Name)
	}

	return []seededRole{
		{
			name:        "administrator",
			description: "Full system access",
			permissions: all,
		},
		{
			name:        "manager",
			description: "Manage CRM records and reporting",
			permissions: []string{
				"accounts:read", "accounts:write",
				"contacts:read", "contacts:write",
				"tasks:read", "tasks:write",
				"leads:read", "leads:write",
				"workflows:read", "workflows:write",
				"reports:read", "reports:write",
			},
		},
		{
			name:        "sales",
			description: "Work accounts, contacts and leads",
			permissions: []string{
				"accounts:read", "accounts:write",
				"contacts:read", "contacts:write",
				"tasks:read", "tasks:write",
				"leads:read", "leads:write",
				"reports:read",
			},
		},
		{
			name:        "support",
			description: "Handle customer tasks",
			permissions: []string{
				"accounts:read",
				"contacts:read",
				"tasks:read", "tasks:write",
			},
		},
		{
			name:        "user",
			description: "Read-only access",
			permissions: []string{
				"accounts:read",
				"contacts:read",
				"tasks:read",
			},
		},
	}
}
