package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/repository"
	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

// AccountService manages accounts and their contacts.
type AccountService struct {
	accounts repository.AccountRepository
	contacts repository.ContactRepository
}

// NewAccountService constructs the service.
func NewAccountService(accounts repository.AccountRepository, contacts repository.ContactRepository) *AccountService {
	return &AccountService{accounts: accounts, contacts: contacts}
}

// AccountInput describes account create/update payloads.
type AccountInput struct {
	Name     string
	Industry string
	Website  string
}

// ContactInput describes contact create/update payloads.
type ContactInput struct {
	FirstName string
	LastName  string
	Email     string
	AccountID *string
}

// CreateAccount creates an account.
func (s *AccountService) CreateAccount(ctx context.Context, input AccountInput) (*domain.Account, error) {
	if input.Name == "" {
		return nil, apperrors.NewValidationError("account name required", nil)
	}
	account := &domain.Account{Name: input.Name, Industry: input.Industry, Website: input.Website}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// UpdateAccount updates an account and keeps contact denormalized names in
// sync with the new account name.
func (s *AccountService) UpdateAccount(ctx context.Context, id string, input AccountInput) (*domain.Account, error) {
	if input.Name == "" {
		return nil, apperrors.NewValidationError("account name required", nil)
	}

	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("account", map[string]any{"account_id": id})
		}
		return nil, err
	}

	renamed := account.Name != input.Name
	account.Name = input.Name
	account.Industry = input.Industry
	account.Website = input.Website
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, err
	}

	if renamed {
		linked, err := s.contacts.List(ctx, &account.ID, 1000, 0)
		if err != nil {
			return nil, err
		}
		for i := range linked {
			linked[i].AccountName = account.Name
			if err := s.contacts.Update(ctx, &linked[i]); err != nil {
				return nil, err
			}
		}
	}
	return account, nil
}

// GetAccount loads one account.
func (s *AccountService) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("account", map[string]any{"account_id": id})
		}
		return nil, err
	}
	return account, nil
}

// ListAccounts lists accounts.
func (s *AccountService) ListAccounts(ctx context.Context, limit, offset int) ([]domain.Account, error) {
	return s.accounts.List(ctx, limit, offset)
}

// CreateContact creates a contact, denormalizing the linked account name.
func (s *AccountService) CreateContact(ctx context.Context, input ContactInput) (*domain.Contact, error) {
	if input.Email == "" || input.FirstName == "" {
		return nil, apperrors.NewValidationError("first_name and email required", nil)
	}

	accountName := ""
	if input.AccountID != nil {
		account, err := s.accounts.GetByID(ctx, *input.AccountID)
		if err != nil {
			if err == pgx.ErrNoRows {
				return nil, apperrors.NewNotFound("account", map[string]any{"account_id": *input.AccountID})
			}
			return nil, err
		}
		accountName = account.Name
	}

	contact := &domain.Contact{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		AccountID:   input.AccountID,
		AccountName: accountName,
	}
	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// UpdateContact updates contact profile fields.
func (s *AccountService) UpdateContact(ctx context.Context, id string, input ContactInput) (*domain.Contact, error) {
	contact, err := s.contacts.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("contact", map[string]any{"contact_id": id})
		}
		return nil, err
	}

	accountName := ""
	if input.AccountID != nil {
		account, err := s.accounts.GetByID(ctx, *input.AccountID)
		if err != nil {
			if err == pgx.ErrNoRows {
				return nil, apperrors.NewNotFound("account", map[string]any{"account_id": *input.AccountID})
			}
			return nil, err
		}
		accountName = account.Name
	}

	contact.FirstName = input.FirstName
	contact.LastName = input.LastName
	contact.Email = input.Email
	contact.AccountID = input.AccountID
	contact.AccountName = accountName
	if err := s.contacts.Update(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// ListContacts lists contacts, optionally scoped to one account.
func (s *AccountService) ListContacts(ctx context.Context, accountID *string, limit, offset int) ([]domain.Contact, error) {
	return s.contacts.List(ctx, accountID, limit, offset)
}
