// Package storetest provides an in-memory CredentialStore for tests.
package storetest

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"tripcore/internal/models"
	"tripcore/internal/store"
)

// Fake is a mutex-guarded, map-backed CredentialStore. It enforces the same
// uniqueness and idempotency contracts as the gorm implementation.
type Fake struct {
	mu        sync.Mutex
	users     map[string]*models.User
	roles     map[string]*models.Role
	perms     map[string]*models.Permission
	userRoles map[string]map[string]bool
	rolePerms map[string]map[string]bool
	audits    []models.AuditLog
}

func New() *Fake {
	return &Fake{
		users:     make(map[string]*models.User),
		roles:     make(map[string]*models.Role),
		perms:     make(map[string]*models.Permission),
		userRoles: make(map[string]map[string]bool),
		rolePerms: make(map[string]map[string]bool),
	}
}

func copyUser(u *models.User) *models.User {
	cp := *u
	return &cp
}

func (f *Fake) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *Fake) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *Fake) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		return copyUser(u), nil
	}
	return nil, store.ErrNotFound
}

func (f *Fake) CreateUser(ctx context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return store.ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	f.users[u.ID] = copyUser(u)
	return nil
}

func (f *Fake) SaveUser(ctx context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return store.ErrNotFound
	}
	f.users[u.ID] = copyUser(u)
	return nil
}

func (f *Fake) ListUsers(ctx context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *Fake) FindRoleByID(ctx context.Context, id string) (*models.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.roles[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, store.ErrNotFound
}

func (f *Fake) FindRoleByName(ctx context.Context, name string) (*models.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.roles {
		if r.Name == name {
			cp := *r
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *Fake) CreateRole(ctx context.Context, r *models.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.roles {
		if existing.Name == r.Name {
			return store.ErrDuplicate
		}
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	cp := *r
	f.roles[r.ID] = &cp
	return nil
}

func (f *Fake) SaveRole(ctx context.Context, r *models.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.roles[r.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *r
	f.roles[r.ID] = &cp
	return nil
}

func (f *Fake) ListRoles(ctx context.Context) ([]models.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Role, 0, len(f.roles))
	for _, r := range f.roles {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *Fake) FindPermissionByID(ctx context.Context, id string) (*models.Permission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.perms[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, store.ErrNotFound
}

func (f *Fake) FindPermissionByName(ctx context.Context, name string) (*models.Permission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.perms {
		if p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *Fake) CreatePermission(ctx context.Context, p *models.Permission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.perms {
		if existing.Name == p.Name ||
			(existing.Resource == p.Resource && existing.Action == p.Action) {
			return store.ErrDuplicate
		}
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	cp := *p
	f.perms[p.ID] = &cp
	return nil
}

func (f *Fake) SavePermission(ctx context.Context, p *models.Permission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.perms[p.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *p
	f.perms[p.ID] = &cp
	return nil
}

func (f *Fake) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Permission, 0, len(f.perms))
	for _, p := range f.perms {
		out = append(out, *p)
	}
	return out, nil
}

func (f *Fake) AddUserRole(ctx context.Context, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.userRoles[userID] == nil {
		f.userRoles[userID] = make(map[string]bool)
	}
	f.userRoles[userID][roleID] = true
	return nil
}

func (f *Fake) RemoveUserRole(ctx context.Context, userID, roleID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.userRoles[userID][roleID] {
		return false, nil
	}
	delete(f.userRoles[userID], roleID)
	return true, nil
}

func (f *Fake) RoleNamesForUser(ctx context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := []string{}
	for roleID := range f.userRoles[userID] {
		if r, ok := f.roles[roleID]; ok {
			names = append(names, r.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (f *Fake) AddRolePermission(ctx context.Context, roleID, permissionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rolePerms[roleID] == nil {
		f.rolePerms[roleID] = make(map[string]bool)
	}
	f.rolePerms[roleID][permissionID] = true
	return nil
}

func (f *Fake) RemoveRolePermission(ctx context.Context, roleID, permissionID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.rolePerms[roleID][permissionID] {
		return false, nil
	}
	delete(f.rolePerms[roleID], permissionID)
	return true, nil
}

func (f *Fake) PermissionsForRole(ctx context.Context, roleID string) ([]models.Permission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	perms := []models.Permission{}
	for permID := range f.rolePerms[roleID] {
		if p, ok := f.perms[permID]; ok {
			perms = append(perms, *p)
		}
	}
	return perms, nil
}

func (f *Fake) AppendAudit(ctx context.Context, entry *models.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry.ID = int64(len(f.audits) + 1)
	f.audits = append(f.audits, *entry)
	return nil
}

func (f *Fake) RecentAudit(ctx context.Context, userID string, limit int) ([]models.AuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.AuditLog{}
	for i := len(f.audits) - 1; i >= 0 && len(out) < limit; i-- {
		entry := f.audits[i]
		if userID != "" && (entry.UserID == nil || *entry.UserID != userID) {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

// AssignmentCount reports how many role rows a user holds, for idempotency
// assertions.
func (f *Fake) AssignmentCount(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.userRoles[userID])
}

var _ store.CredentialStore = (*Fake)(nil)
