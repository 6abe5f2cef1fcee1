package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/crm-service/internal/api/dto"
	"github.com/spec-kit/crm-service/internal/auth"
	"github.com/spec-kit/crm-service/internal/service"
	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

// PortalHandler exposes the customer portal endpoints.
type PortalHandler struct {
	auth  *service.AuthService
	tasks *service.TaskService
}

// NewPortalHandler constructs handler.
func NewPortalHandler(authService *service.AuthService, taskService *service.TaskService) *PortalHandler {
	return &PortalHandler{auth: authService, tasks: taskService}
}

// Login POST /api/portal/login.
func (h *PortalHandler) Login(c *fiber.Ctx) error {
	var req dto.PortalLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	contact, token, exp, err := h.auth.LoginPortal(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"contact": dto.NewContactProfile(contact),
			"auth":    dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Setup POST /api/portal/setup.
func (h *PortalHandler) Setup(c *fiber.Ctx) error {
	var req dto.PortalSetupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Token == "" {
		return apperrors.NewValidationError("token required", nil)
	}

	if err := h.auth.SetupPortalAccount(c.Context(), req.Token, req.Password); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"activated": true}})
}

// ListTasks GET /api/portal/tasks. Doubles as the portal session probe.
func (h *PortalHandler) ListTasks(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Contact == nil {
		return apperrors.NewUnauthorized("portal contact required")
	}

	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	tasks, err := h.tasks.ListContactTasks(c.Context(), principal.Contact.ID, limit, offset)
	if err != nil {
		return err
	}

	items := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		items = append(items, dto.NewTaskResponse(&tasks[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// UpdateTaskStatus PUT /api/portal/tasks/:id/status.
func (h *PortalHandler) UpdateTaskStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Contact == nil {
		return apperrors.NewUnauthorized("portal contact required")
	}

	var req dto.TaskStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	task, err := h.tasks.UpdateContactTaskStatus(c.Context(), principal.Contact.ID, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTaskResponse(task)})
}
