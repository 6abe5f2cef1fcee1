package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/crm-service/internal/api/dto"
	"github.com/spec-kit/crm-service/internal/service"
	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

// ContactsHandler manages staff contact endpoints, including portal
// invitations.
type ContactsHandler struct {
	service *service.AccountService
	auth    *service.AuthService
}

// NewContactsHandler constructs handler.
func NewContactsHandler(accountService *service.AccountService, authService *service.AuthService) *ContactsHandler {
	return &ContactsHandler{service: accountService, auth: authService}
}

// List GET /api/contacts.
func (h *ContactsHandler) List(c *fiber.Ctx) error {
	var accountID *string
	if v := c.Query("account_id"); v != "" {
		accountID = &v
	}

	contacts, err := h.service.ListContacts(c.Context(), accountID, c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	items := make([]dto.ContactProfile, 0, len(contacts))
	for i := range contacts {
		items = append(items, dto.NewContactProfile(&contacts[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Create POST /api/contacts.
func (h *ContactsHandler) Create(c *fiber.Ctx) error {
	var req dto.ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	contact, err := h.service.CreateContact(c.Context(), service.ContactInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		AccountID: req.AccountID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewContactProfile(contact)})
}

// Update PUT /api/contacts/:id.
func (h *ContactsHandler) Update(c *fiber.Ctx) error {
	var req dto.ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	contact, err := h.service.UpdateContact(c.Context(), c.Params("id"), service.ContactInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		AccountID: req.AccountID,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewContactProfile(contact)})
}

// Invite POST /api/contacts/:id/portal-invite.
func (h *ContactsHandler) Invite(c *fiber.Ctx) error {
	token, err := h.auth.InvitePortalContact(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"contact_id": token.ContactID,
			"expires_at": token.ExpiresAt,
		},
	})
}
