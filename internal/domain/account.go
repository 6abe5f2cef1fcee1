package domain

import "time"

// Account represents a customer organization.
type Account struct {
	ID        string
	Name      string
	Industry  string
	Website   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
