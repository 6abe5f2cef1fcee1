package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/crm-service/internal/api/dto"
	"github.com/spec-kit/crm-service/internal/service"
	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

// RBACHandler exposes role and permission administration endpoints.
type RBACHandler struct {
	rbac *service.RBACService
}

// NewRBACHandler constructs handler.
func NewRBACHandler(rbacService *service.RBACService) *RBACHandler {
	return &RBACHandler{rbac: rbacService}
}

// ListRoles GET /api/rbac/roles.
func (h *RBACHandler) ListRoles(c *fiber.Ctx) error {
	roles, err := h.rbac.ListRoles(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.RoleResponse, 0, len(roles))
	for i := range roles {
		items = append(items, dto.NewRoleResponse(&roles[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateRole POST /api/rbac/roles.
func (h *RBACHandler) CreateRole(c *fiber.Ctx) error {
	var req dto.RoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	role, err := h.rbac.CreateRole(c.Context(), req.Name, req.Description, req.PermissionIDs)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewRoleResponse(role)})
}

// UpdateRole PUT /api/rbac/roles/:id.
func (h *RBACHandler) UpdateRole(c *fiber.Ctx) error {
	var req dto.RoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	role, err := h.rbac.UpdateRole(c.Context(), c.Params("id"), req.Name, req.Description, req.PermissionIDs)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRoleResponse(role)})
}

// DeleteRole DELETE /api/rbac/roles/:id.
func (h *RBACHandler) DeleteRole(c *fiber.Ctx) error {
	if err := h.rbac.DeleteRole(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListPermissions GET /api/rbac/permissions.
func (h *RBACHandler) ListPermissions(c *fiber.Ctx) error {
	perms, err := h.rbac.ListPermissions(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.PermissionResponse, 0, len(perms))
	for _, p := range perms {
		items = append(items, dto.NewPermissionResponse(p))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Initialize POST /api/rbac/initialize.
func (h *RBACHandler) Initialize(c *fiber.Ctx) error {
	if err := h.rbac.InitializeSystemRBAC(c.Context()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"initialized": true}})
}
