package store

import (
	"context"
	"errors"

	"tripcore/internal/models"
)

var (
	// ErrNotFound is returned when a looked-up record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
)

// CredentialStore persists users, roles, permissions and their join rows.
// The database's unique indexes are the final arbiter for identity
// collisions; callers may pre-check but must still handle ErrDuplicate.
type CredentialStore interface {
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	SaveUser(ctx context.Context, u *models.User) error
	ListUsers(ctx context.Context) ([]models.User, error)

	FindRoleByID(ctx context.Context, id string) (*models.Role, error)
	FindRoleByName(ctx context.Context, name string) (*models.Role, error)
	CreateRole(ctx context.Context, r *models.Role) error
	SaveRole(ctx context.Context, r *models.Role) error
	ListRoles(ctx context.Context) ([]models.Role, error)

	FindPermissionByID(ctx context.Context, id string) (*models.Permission, error)
	FindPermissionByName(ctx context.Context, name string) (*models.Permission, error)
	CreatePermission(ctx context.Context, p *models.Permission) error
	SavePermission(ctx context.Context, p *models.Permission) error
	ListPermissions(ctx context.Context) ([]models.Permission, error)

	// AddUserRole is idempotent: assigning an already-held role succeeds
	// without creating a second row.
	AddUserRole(ctx context.Context, userID, roleID string) error
	// RemoveUserRole reports whether an assignment was actually deleted.
	RemoveUserRole(ctx context.Context, userID, roleID string) (bool, error)
	RoleNamesForUser(ctx context.Context, userID string) ([]string, error)

	AddRolePermission(ctx context.Context, roleID, permissionID string) error
	RemoveRolePermission(ctx context.Context, roleID, permissionID string) (bool, error)
	PermissionsForRole(ctx context.Context, roleID string) ([]models.Permission, error)

	AppendAudit(ctx context.Context, entry *models.AuditLog) error
	RecentAudit(ctx context.Context, userID string, limit int) ([]models.AuditLog, error)
}
