package domain

import "time"

// PrincipalType differentiates staff vs portal tokens.
type PrincipalType string

const (
	PrincipalTypeStaff  PrincipalType = "STAFF"
	PrincipalTypePortal PrincipalType = "PORTAL"
)

// Token represents issued authentication token metadata.
type Token struct {
	ID          string
	PrincipalID string
	Principal   PrincipalType
	ExpiresAt   time.Time
	IssuedAt    time.Time
}
