package domain

import "time"

// NoRoleName is the sentinel returned when a user has no effective role.
const NoRoleName = ""

// Role bundles permissions under a unique, case-sensitive name.
type Role struct {
	ID          string
	Name        string
	Description string
	Permissions []Permission
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Permission is an atomic capability grant, named "resource:action".
type Permission struct {
	ID          string
	Name        string
	Resource    string
	Action      string
	Description string
}

// RoleRefKind discriminates the three role reference forms a user can carry.
type RoleRefKind int

const (
	RoleRefUnassigned RoleRefKind = iota
	RoleRefLegacy
	RoleRefLinked
)

// RoleRef is the tagged union over a user's role reference: no role at all,
// a legacy free-text role name, or a foreign key to a Role row. The linked
// form always wins when both columns are populated.
type RoleRef struct {
	Kind       RoleRefKind
	LegacyName string
	RoleID     string
}

// NewLegacyRoleRef wraps a free-text role name.
func NewLegacyRoleRef(name string) RoleRef {
	if name == "" {
		return RoleRef{}
	}
	return RoleRef{Kind: RoleRefLegacy, LegacyName: name}
}

// NewLinkedRoleRef wraps a relational role id.
func NewLinkedRoleRef(roleID string) RoleRef {
	if roleID == "" {
		return RoleRef{}
	}
	return RoleRef{Kind: RoleRefLinked, RoleID: roleID}
}

// RoleRefFromColumns builds the union from the two persisted user columns,
// preferring the relational reference over the legacy string.
func RoleRefFromColumns(roleID *string, legacyRole *string) RoleRef {
	if roleID != nil && *roleID != "" {
		return RoleRef{Kind: RoleRefLinked, RoleID: *roleID}
	}
	if legacyRole != nil && *legacyRole != "" {
		return RoleRef{Kind: RoleRefLegacy, LegacyName: *legacyRole}
	}
	return RoleRef{}
}
