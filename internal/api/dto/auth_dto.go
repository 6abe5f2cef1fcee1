package dto

import "time"

// StaffLoginRequest payload for staff login.
type StaffLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest payload for staff password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// PortalLoginRequest payload for portal contact login.
type PortalLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PortalSetupRequest payload for exchanging an invitation token.
type PortalSetupRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
