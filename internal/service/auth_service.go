package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/crm-service/internal/auth"
	"github.com/spec-kit/crm-service/internal/config"
	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/events"
	"github.com/spec-kit/crm-service/internal/repository"
	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

// AuthService coordinates staff and portal login flows and the portal
// onboarding invitation lifecycle.
type AuthService struct {
	users      repository.UserRepository
	contacts   repository.ContactRepository
	setups     repository.SetupTokenRepository
	dispatcher events.Dispatcher
	tokenMgr   *auth.TokenManager
	bcryptCost int
	setupTTL   time.Duration
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo       repository.UserRepository
	ContactRepo    repository.ContactRepository
	SetupTokenRepo repository.SetupTokenRepository
	Dispatcher     events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		contacts:   deps.ContactRepo,
		setups:     deps.SetupTokenRepo,
		dispatcher: deps.Dispatcher,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.StaffTokenTTLMinutes, cfg.Auth.PortalTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
		setupTTL:   time.Duration(cfg.Auth.SetupTokenTTLHours) * time.Hour,
	}
}

// errInvalidCredentials deliberately does not distinguish an unknown email
// from a password mismatch.
func errInvalidCredentials() error {
	return apperrors.NewUnauthorized("invalid credentials")
}

// LoginStaff authenticates a staff user and mints a staff-namespace token.
func (s *AuthService) LoginStaff(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", time.Time{}, errInvalidCredentials()
		}
		return nil, "", time.Time{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, errInvalidCredentials()
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, domain.PrincipalTypeStaff)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// LoginPortal authenticates a portal contact and mints a portal-namespace
// token. Contacts that never completed setup are rejected the same way as
// bad credentials.
func (s *AuthService) LoginPortal(ctx context.Context, email, password string) (*domain.Contact, string, time.Time, error) {
	contact, err := s.contacts.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", time.Time{}, errInvalidCredentials()
		}
		return nil, "", time.Time{}, err
	}
	if !contact.PortalEnabled() {
		return nil, "", time.Time{}, errInvalidCredentials()
	}
	if err := auth.ComparePassword(*contact.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, errInvalidCredentials()
	}

	token, exp, err := s.tokenMgr.GenerateToken(contact.ID, domain.PrincipalTypePortal)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return contact, token, exp, nil
}

// InvitePortalContact issues a one-time setup token for a contact and emits
// the invitation event that drives the onboarding email.
func (s *AuthService) InvitePortalContact(ctx context.Context, contactID string) (*repository.PortalSetupToken, error) {
	contact, err := s.contacts.GetByID(ctx, contactID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("contact", map[string]any{"contact_id": contactID})
		}
		return nil, err
	}

	token := &repository.PortalSetupToken{
		ContactID: contact.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(s.setupTTL),
	}
	if err := s.setups.Create(ctx, token); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventPortalContactInvited, events.PortalContactInvitedPayload{
		ContactID:    contact.ID,
		ContactEmail: contact.Email,
		SetupToken:   token.Token,
		ExpiresAt:    token.ExpiresAt,
	})
	return token, nil
}

// SetupPortalAccount exchanges a one-time invitation token for a first
// password. The token transitions Issued to Consumed; both the consumed and
// expired states are terminal.
func (s *AuthService) SetupPortalAccount(ctx context.Context, tokenStr, newPassword string) error {
	if len(newPassword) < auth.MinPasswordLength {
		return apperrors.NewValidationError("password too short", map[string]any{"min_length": auth.MinPasswordLength})
	}

	token, err := s.setups.GetByToken(ctx, tokenStr)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewValidationError("invalid setup token", nil)
		}
		return err
	}

	// Consume before touching the password; the repository's conditional
	// update serializes concurrent exchanges of the same token.
	if err := s.setups.Consume(ctx, token.ID); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewValidationError("invalid setup token", nil)
		}
		return err
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.contacts.SetPasswordHash(ctx, token.ContactID, hash); err != nil {
		return err
	}

	s.publish(ctx, events.EventPortalAccountActivated, events.PortalAccountActivatedPayload{
		ContactID: token.ContactID,
	})
	return nil
}

// ChangePassword verifies a staff user's current password before updating.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < auth.MinPasswordLength {
		return apperrors.NewValidationError("password too short", map[string]any{"min_length": auth.MinPasswordLength})
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return errInvalidCredentials()
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.users.Update(ctx, user)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, payload interface{}) {
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
