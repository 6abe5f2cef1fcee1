package dto

import (
	"time"

	"github.com/spec-kit/crm-service/internal/domain"
)

// UserSummary response shape for a staff user.
type UserSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	RoleName     string `json:"role_name"`
	GoogleLinked bool   `json:"google_linked"`
}

// ContactProfile is the public portal-facing contact shape, also cached by
// the portal session store.
type ContactProfile struct {
	ID          string `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	AccountID   string `json:"account_id,omitempty"`
	AccountName string `json:"account_name,omitempty"`
}

// NewContactProfile maps a domain contact.
func NewContactProfile(contact *domain.Contact) ContactProfile {
	profile := ContactProfile{
		ID:          contact.ID,
		FirstName:   contact.FirstName,
		LastName:    contact.LastName,
		Email:       contact.Email,
		AccountName: contact.AccountName,
	}
	if contact.AccountID != nil {
		profile.AccountID = *contact.AccountID
	}
	return profile
}

// AccountRequest payload for account create/update.
type AccountRequest struct {
	Name     string `json:"name"`
	Industry string `json:"industry"`
	Website  string `json:"website"`
}

// AccountResponse response shape for an account.
type AccountResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Industry  string    `json:"industry,omitempty"`
	Website   string    `json:"website,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewAccountResponse maps a domain account.
func NewAccountResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		ID:        account.ID,
		Name:      account.Name,
		Industry:  account.Industry,
		Website:   account.Website,
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}
}

// ContactRequest payload for contact create/update.
type ContactRequest struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	AccountID *string `json:"account_id"`
}

// TaskRequest payload for task create/update.
type TaskRequest struct {
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Status         domain.TaskStatus `json:"status"`
	DueDate        *time.Time        `json:"due_date"`
	AccountID      *string           `json:"account_id"`
	ContactID      *string           `json:"contact_id"`
	AssignedUserID *string           `json:"assigned_user_id"`
}

// TaskStatusRequest payload for portal task status updates.
type TaskStatusRequest struct {
	Status domain.TaskStatus `json:"status"`
}

// TaskResponse response shape for a task.
type TaskResponse struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Description    string            `json:"description,omitempty"`
	Status         domain.TaskStatus `json:"status"`
	DueDate        *time.Time        `json:"due_date,omitempty"`
	AccountID      *string           `json:"account_id,omitempty"`
	ContactID      *string           `json:"contact_id,omitempty"`
	AssignedUserID *string           `json:"assigned_user_id,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// NewTaskResponse maps a domain task.
func NewTaskResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:             task.ID,
		Title:          task.Title,
		Description:    task.Description,
		Status:         task.Status,
		DueDate:        task.DueDate,
		AccountID:      task.AccountID,
		ContactID:      task.ContactID,
		AssignedUserID: task.AssignedUserID,
		CreatedAt:      task.CreatedAt,
		UpdatedAt:      task.UpdatedAt,
	}
}
