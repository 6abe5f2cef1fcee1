package domain

import "time"

// User is the domain model for internal staff members of the CRM.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	RoleID       *string
	LegacyRole   *string
	GoogleLinked bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RoleRef returns the tagged role reference for this user.
func (u *User) RoleRef() RoleRef {
	return RoleRefFromColumns(u.RoleID, u.LegacyRole)
}
