package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

func newTestAccountService() (*AccountService, *fakeAccountRepo, *fakeContactRepo) {
	accounts := newFakeAccountRepo()
	contacts := newFakeContactRepo()
	return NewAccountService(accounts, contacts), accounts, contacts
}

func TestCreateAccount(t *testing.T) {
	svc, _, _ := newTestAccountService()
	ctx := context.Background()

	account, err := svc.CreateAccount(ctx, AccountInput{Name: "Acme", Industry: "Manufacturing"})
	require.NoError(t, err)
	assert.NotEmpty(t, account.ID)

	_, err = svc.CreateAccount(ctx, AccountInput{Name: ""})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
}

func TestCreateContactDenormalizesAccountName(t *testing.T) {
	svc, _, _ := newTestAccountService()
	ctx := context.Background()

	account, err := svc.CreateAccount(ctx, AccountInput{Name: "Acme"})
	require.NoError(t, err)

	contact, err := svc.CreateContact(ctx, ContactInput{
		FirstName: "Pat",
		Email:     "pat@example.com",
		AccountID: &account.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme", contact.AccountName)

	bogus := "missing-account"
	_, err = svc.CreateContact(ctx, ContactInput{FirstName: "Lee", Email: "lee@example.com", AccountID: &bogus})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = svc.CreateContact(ctx, ContactInput{FirstName: "", Email: "x@example.com"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
}

func TestUpdateAccountRenameSyncsContacts(t *testing.T) {
	svc, _, contacts := newTestAccountService()
	ctx := context.Background()

	account, err := svc.CreateAccount(ctx, AccountInput{Name: "Acme"})
	require.NoError(t, err)
	contact, err := svc.CreateContact(ctx, ContactInput{
		FirstName: "Pat",
		Email:     "pat@example.com",
		AccountID: &account.ID,
	})
	require.NoError(t, err)

	_, err = svc.UpdateAccount(ctx, account.ID, AccountInput{Name: "Acme Global"})
	require.NoError(t, err)

	reloaded, err := contacts.GetByID(ctx, contact.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Global", reloaded.AccountName)

	_, err = svc.UpdateAccount(ctx, "missing", AccountInput{Name: "X"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestUpdateContactRelink(t *testing.T) {
	svc, _, _ := newTestAccountService()
	ctx := context.Background()

	first, err := svc.CreateAccount(ctx, AccountInput{Name: "Acme"})
	require.NoError(t, err)
	second, err := svc.CreateAccount(ctx, AccountInput{Name: "Globex"})
	require.NoError(t, err)

	contact, err := svc.CreateContact(ctx, ContactInput{
		FirstName: "Pat",
		Email:     "pat@example.com",
		AccountID: &first.ID,
	})
	require.NoError(t, err)

	updated, err := svc.UpdateContact(ctx, contact.ID, ContactInput{
		FirstName: "Pat",
		LastName:  "Ng",
		Email:     "pat@example.com",
		AccountID: &second.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Globex", updated.AccountName)

	// Unlinking drops the denormalized name too.
	updated, err = svc.UpdateContact(ctx, contact.ID, ContactInput{
		FirstName: "Pat",
		Email:     "pat@example.com",
	})
	require.NoError(t, err)
	assert.Nil(t, updated.AccountID)
	assert.Empty(t, updated.AccountName)
}

func TestListContactsScopedToAccount(t *testing.T) {
	svc, _, _ := newTestAccountService()
	ctx := context.Background()

	account, err := svc.CreateAccount(ctx, AccountInput{Name: "Acme"})
	require.NoError(t, err)
	_, err = svc.CreateContact(ctx, ContactInput{FirstName: "Pat", Email: "pat@example.com", AccountID: &account.ID})
	require.NoError(t, err)
	_, err = svc.CreateContact(ctx, ContactInput{FirstName: "Lee", Email: "lee@example.com"})
	require.NoError(t, err)

	scoped, err := svc.ListContacts(ctx, &account.ID, 50, 0)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "pat@example.com", scoped[0].Email)

	all, err := svc.ListContacts(ctx, nil, 50, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
