package domain

import "time"

// Contact models an external customer contact. Contacts are portal
// principals and never share the users table with staff.
type Contact struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash *string
	AccountID    *string
	AccountName  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PortalEnabled reports whether the contact completed portal setup.
func (c *Contact) PortalEnabled() bool {
	return c.PasswordHash != nil && *c.PasswordHash != ""
}
