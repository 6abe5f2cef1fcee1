package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/repository"
)

// In-memory repositories backing the service tests.

type fakePermissionRepo struct {
	mu    sync.Mutex
	perms map[string]domain.Permission // by id
}

func newFakePermissionRepo() *fakePermissionRepo {
	return &fakePermissionRepo{perms: make(map[string]domain.Permission)}
}

func (f *fakePermissionRepo) List(_ context.Context) ([]domain.Permission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]domain.Permission, 0, len(f.perms))
	for _, p := range f.perms {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (f *fakePermissionRepo) GetByName(_ context.Context, name string) (*domain.Permission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.perms {
		if p.Name == name {
			found := p
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakePermissionRepo) Ensure(_ context.Context, perm *domain.Permission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.perms {
		if p.Name == perm.Name {
			perm.ID = p.ID
			return nil
		}
	}
	perm.ID = uuid.NewString()
	f.perms[perm.ID] = *perm
	return nil
}

type fakeRoleRepo struct {
	mu      sync.Mutex
	roles   map[string]domain.Role // by id, Permissions left nil
	permIDs map[string][]string    // role id -> permission ids
	perms   *fakePermissionRepo
}

func newFakeRoleRepo(perms *fakePermissionRepo) *fakeRoleRepo {
	return &fakeRoleRepo{
		roles:   make(map[string]domain.Role),
		permIDs: make(map[string][]string),
		perms:   perms,
	}
}

func (f *fakeRoleRepo) Create(_ context.Context, role *domain.Role, permissionIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	role.ID = uuid.NewString()
	role.CreatedAt = time.Now()
	role.UpdatedAt = role.CreatedAt
	f.roles[role.ID] = *role
	f.permIDs[role.ID] = append([]string(nil), permissionIDs...)
	return nil
}

func (f *fakeRoleRepo) Replace(_ context.Context, role *domain.Role, permissionIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.roles[role.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Name = role.Name
	stored.Description = role.Description
	stored.UpdatedAt = time.Now()
	f.roles[role.ID] = stored
	f.permIDs[role.ID] = append([]string(nil), permissionIDs...)
	return nil
}

func (f *fakeRoleRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.roles[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.roles, id)
	delete(f.permIDs, id)
	return nil
}

func (f *fakeRoleRepo) GetByID(_ context.Context, id string) (*domain.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	role, ok := f.roles[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	role.Permissions = f.resolvePerms(id)
	return &role, nil
}

func (f *fakeRoleRepo) GetByName(_ context.Context, name string) (*domain.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, role := range f.roles {
		if role.Name == name {
			role.Permissions = f.resolvePerms(id)
			return &role, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeRoleRepo) List(_ context.Context) ([]domain.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]domain.Role, 0, len(f.roles))
	for id, role := range f.roles {
		role.Permissions = f.resolvePerms(id)
		result = append(result, role)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// resolvePerms mirrors the SQL join's ORDER BY name. Callers hold f.mu.
func (f *fakeRoleRepo) resolvePerms(roleID string) []domain.Permission {
	var perms []domain.Permission
	for _, permID := range f.permIDs[roleID] {
		f.perms.mu.Lock()
		p, ok := f.perms.perms[permID]
		f.perms.mu.Unlock()
		if ok {
			perms = append(perms, p)
		}
	}
	sort.Slice(perms, func(i, j int) bool { return perms[i].Name < perms[j].Name })
	return perms
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			found := user
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) List(_ context.Context, _, _ int) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]domain.User, 0, len(f.users))
	for _, user := range f.users {
		result = append(result, user)
	}
	return result, nil
}

func (f *fakeUserRepo) SetRole(_ context.Context, userID string, roleID *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	user.RoleID = roleID
	user.LegacyRole = nil
	f.users[userID] = user
	return nil
}

// clearRoleRefs mimics the ON DELETE SET NULL constraint on users.role_id.
func (f *fakeUserRepo) clearRoleRefs(roleID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, user := range f.users {
		if user.RoleID != nil && *user.RoleID == roleID {
			user.RoleID = nil
			f.users[id] = user
		}
	}
}

type fakeContactRepo struct {
	mu       sync.Mutex
	contacts map[string]domain.Contact
}

func newFakeContactRepo() *fakeContactRepo {
	return &fakeContactRepo{contacts: make(map[string]domain.Contact)}
}

func (f *fakeContactRepo) Create(_ context.Context, contact *domain.Contact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	contact.ID = uuid.NewString()
	contact.CreatedAt = time.Now()
	contact.UpdatedAt = contact.CreatedAt
	f.contacts[contact.ID] = *contact
	return nil
}

func (f *fakeContactRepo) Update(_ context.Context, contact *domain.Contact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.contacts[contact.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.contacts[contact.ID] = *contact
	return nil
}

func (f *fakeContactRepo) GetByID(_ context.Context, id string) (*domain.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	contact, ok := f.contacts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &contact, nil
}

func (f *fakeContactRepo) GetByEmail(_ context.Context, email string) (*domain.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, contact := range f.contacts {
		if contact.Email == email {
			found := contact
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeContactRepo) List(_ context.Context, accountID *string, _, _ int) ([]domain.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]domain.Contact, 0, len(f.contacts))
	for _, contact := range f.contacts {
		if accountID != nil && (contact.AccountID == nil || *contact.AccountID != *accountID) {
			continue
		}
		result = append(result, contact)
	}
	return result, nil
}

func (f *fakeContactRepo) SetPasswordHash(_ context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	contact, ok := f.contacts[id]
	if !ok {
		return pgx.ErrNoRows
	}
	contact.PasswordHash = &hash
	f.contacts[id] = contact
	return nil
}

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]domain.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[string]domain.Account)}
}

func (f *fakeAccountRepo) Create(_ context.Context, account *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account.ID = uuid.NewString()
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	f.accounts[account.ID] = *account
	return nil
}

func (f *fakeAccountRepo) Update(_ context.Context, account *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[account.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.accounts[account.ID] = *account
	return nil
}

func (f *fakeAccountRepo) GetByID(_ context.Context, id string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &account, nil
}

func (f *fakeAccountRepo) List(_ context.Context, _, _ int) ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]domain.Account, 0, len(f.accounts))
	for _, account := range f.accounts {
		result = append(result, account)
	}
	return result, nil
}

type fakeTaskRepo struct {
	mu    sync.Mutex
	tasks map[string]domain.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[string]domain.Task)}
}

func (f *fakeTaskRepo) Create(_ context.Context, task *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	task.ID = uuid.NewString()
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	f.tasks[task.ID] = *task
	return nil
}

func (f *fakeTaskRepo) Update(_ context.Context, task *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[task.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.tasks[task.ID] = *task
	return nil
}

func (f *fakeTaskRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &task, nil
}

func (f *fakeTaskRepo) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]domain.Task, 0, len(f.tasks))
	for _, task := range f.tasks {
		if filter.AccountID != nil && (task.AccountID == nil || *task.AccountID != *filter.AccountID) {
			continue
		}
		if filter.ContactID != nil && (task.ContactID == nil || *task.ContactID != *filter.ContactID) {
			continue
		}
		if filter.AssignedUserID != nil && (task.AssignedUserID == nil || *task.AssignedUserID != *filter.AssignedUserID) {
			continue
		}
		if filter.Status != nil && task.Status != *filter.Status {
			continue
		}
		result = append(result, task)
	}
	return result, nil
}

type fakeSetupTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]repository.PortalSetupToken // by id
}

func newFakeSetupTokenRepo() *fakeSetupTokenRepo {
	return &fakeSetupTokenRepo{tokens: make(map[string]repository.PortalSetupToken)}
}

func (f *fakeSetupTokenRepo) Create(_ context.Context, token *repository.PortalSetupToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	token.ID = uuid.NewString()
	token.CreatedAt = time.Now()
	f.tokens[token.ID] = *token
	return nil
}

func (f *fakeSetupTokenRepo) GetByToken(_ context.Context, tokenStr string) (*repository.PortalSetupToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, token := range f.tokens {
		if token.Token == tokenStr {
			found := token
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// Consume mirrors the conditional UPDATE: check and transition happen under
// one lock, so at most one caller wins.
func (f *fakeSetupTokenRepo) Consume(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	token, ok := f.tokens[id]
	if !ok || token.UsedAt != nil || time.Now().After(token.ExpiresAt) {
		return pgx.ErrNoRows
	}
	now := time.Now()
	token.UsedAt = &now
	f.tokens[id] = token
	return nil
}
