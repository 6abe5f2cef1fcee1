package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/repository"
	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	Type    domain.PrincipalType
	User    *domain.User
	Contact *domain.Contact
}

// PermissionChecker resolves whether a staff user holds a named permission.
// Implemented by the RBAC service; an interface here avoids the import cycle.
type PermissionChecker interface {
	UserHasPermission(ctx context.Context, user *domain.User, permission string) (bool, error)
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens      *TokenManager
	users       repository.UserRepository
	contacts    repository.ContactRepository
	permissions PermissionChecker
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository, contacts repository.ContactRepository, permissions PermissionChecker) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, contacts: contacts, permissions: permissions}
}

// RequireStaff enforces a staff-namespace token and loads the user.
func (m *AuthMiddleware) RequireStaff(c *fiber.Ctx) error {
	claims, err := m.claimsFor(c, domain.PrincipalTypeStaff)
	if err != nil {
		return err
	}

	user, err := m.users.GetByID(c.Context(), claims.PrincipalID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewUnauthorized("invalid token")
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &Principal{Type: domain.PrincipalTypeStaff, User: user})
	return c.Next()
}

// RequirePortal enforces a portal-namespace token and loads the contact.
func (m *AuthMiddleware) RequirePortal(c *fiber.Ctx) error {
	claims, err := m.claimsFor(c, domain.PrincipalTypePortal)
	if err != nil {
		return err
	}

	contact, err := m.contacts.GetByID(c.Context(), claims.PrincipalID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewUnauthorized("invalid token")
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &Principal{Type: domain.PrincipalTypePortal, Contact: contact})
	return c.Next()
}

// RequirePermission gates a staff route on a named permission. Must run
// after RequireStaff.
func (m *AuthMiddleware) RequirePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return apperrors.NewUnauthorized("staff required")
		}

		allowed, err := m.permissions.UserHasPermission(c.Context(), principal.User, permission)
		if err != nil {
			return apperrors.MapError(err)
		}
		if !allowed {
			return apperrors.NewForbidden("insufficient permissions")
		}
		return c.Next()
	}
}

func (m *AuthMiddleware) claimsFor(c *fiber.Ctx, expected domain.PrincipalType) (*Claims, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ValidateToken(parts[1], expected)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid token")
	}
	return claims, nil
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
