package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/crm-service/internal/api/dto"
	"github.com/spec-kit/crm-service/internal/auth"
	"github.com/spec-kit/crm-service/internal/repository"
	"github.com/spec-kit/crm-service/internal/service"
	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

// UsersHandler exposes staff auth and user administration endpoints.
type UsersHandler struct {
	auth  *service.AuthService
	rbac  *service.RBACService
	users repository.UserRepository
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, rbacService *service.RBACService, users repository.UserRepository) *UsersHandler {
	return &UsersHandler{auth: authService, rbac: rbacService, users: users}
}

// Login POST /api/auth/staff/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.StaffLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	user, token, exp, err := h.auth.LoginStaff(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	roleName, err := h.rbac.ResolveRoleName(c.Context(), user.RoleRef())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.UserSummary{
				ID:           user.ID,
				Name:         user.Name,
				Email:        user.Email,
				RoleName:     roleName,
				GoogleLinked: user.GoogleLinked,
			},
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// ChangePassword POST /api/auth/staff/password/change.
func (h *UsersHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("staff required")
	}

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("current_password and new_password required", nil)
	}

	if err := h.auth.ChangePassword(c.Context(), principal.User.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"changed": true}})
}

// List GET /api/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	users, err := h.users.List(c.Context(), limit, offset)
	if err != nil {
		return err
	}

	items := make([]dto.UserSummary, 0, len(users))
	for i := range users {
		roleName, err := h.rbac.ResolveRoleName(c.Context(), users[i].RoleRef())
		if err != nil {
			return err
		}
		items = append(items, dto.UserSummary{
			ID:           users[i].ID,
			Name:         users[i].Name,
			Email:        users[i].Email,
			RoleName:     roleName,
			GoogleLinked: users[i].GoogleLinked,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// AssignRole POST /api/users/:id/role.
func (h *UsersHandler) AssignRole(c *fiber.Ctx) error {
	var req dto.AssignRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.rbac.AssignRoleToUser(c.Context(), c.Params("id"), req.Role()); err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"data": fiber.Map{"assigned": true}})
}
