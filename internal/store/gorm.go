package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tripcore/internal/models"
)

// GormStore implements CredentialStore on top of a gorm-managed PostgreSQL
// connection.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the auth tables.
func (s *GormStore) Migrate() error {
	if err := s.db.SetupJoinTable(&models.User{}, "Roles", &models.UserRole{}); err != nil {
		return err
	}
	if err := s.db.SetupJoinTable(&models.Role{}, "Permissions", &models.RolePermission{}); err != nil {
		return err
	}
	return s.db.AutoMigrate(
		&models.Role{},
		&models.Permission{},
		&models.User{},
		&models.UserRole{},
		&models.RolePermission{},
		&models.AuditLog{},
	)
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

func (s *GormStore) findUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Preload("Roles").First(&u, query, arg).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *GormStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(ctx, "username = ?", username)
}

func (s *GormStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, "email = ?", email)
}

func (s *GormStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.findUser(ctx, "id = ?", id)
}

func (s *GormStore) CreateUser(ctx context.Context, u *models.User) error {
	return translate(s.db.WithContext(ctx).Create(u).Error)
}

func (s *GormStore) SaveUser(ctx context.Context, u *models.User) error {
	return translate(s.db.WithContext(ctx).Omit("Roles").Save(u).Error)
}

func (s *GormStore) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Preload("Roles").Order("created_at desc").Find(&users).Error
	return users, translate(err)
}

func (s *GormStore) FindRoleByID(ctx context.Context, id string) (*models.Role, error) {
	var r models.Role
	if err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (s *GormStore) FindRoleByName(ctx context.Context, name string) (*models.Role, error) {
	var r models.Role
	if err := s.db.WithContext(ctx).First(&r, "name = ?", name).Error; err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (s *GormStore) CreateRole(ctx context.Context, r *models.Role) error {
	return translate(s.db.WithContext(ctx).Create(r).Error)
}

func (s *GormStore) SaveRole(ctx context.Context, r *models.Role) error {
	return translate(s.db.WithContext(ctx).Omit("Permissions").Save(r).Error)
}

func (s *GormStore) ListRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	err := s.db.WithContext(ctx).Order("name").Find(&roles).Error
	return roles, translate(err)
}

func (s *GormStore) FindPermissionByID(ctx context.Context, id string) (*models.Permission, error) {
	var p models.Permission
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *GormStore) FindPermissionByName(ctx context.Context, name string) (*models.Permission, error) {
	var p models.Permission
	if err := s.db.WithContext(ctx).First(&p, "name = ?", name).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *GormStore) CreatePermission(ctx context.Context, p *models.Permission) error {
	return translate(s.db.WithContext(ctx).Create(p).Error)
}

func (s *GormStore) SavePermission(ctx context.Context, p *models.Permission) error {
	return translate(s.db.WithContext(ctx).Save(p).Error)
}

func (s *GormStore) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	var perms []models.Permission
	err := s.db.WithContext(ctx).Order("resource, action").Find(&perms).Error
	return perms, translate(err)
}

func (s *GormStore) AddUserRole(ctx context.Context, userID, roleID string) error {
	row := models.UserRole{UserID: userID, RoleID: roleID}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
	return translate(err)
}

func (s *GormStore) RemoveUserRole(ctx context.Context, userID, roleID string) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&models.UserRole{})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) RoleNamesForUser(ctx context.Context, userID string) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).
		Model(&models.Role{}).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.name").
		Pluck("roles.name", &names).Error
	return names, translate(err)
}

func (s *GormStore) AddRolePermission(ctx context.Context, roleID, permissionID string) error {
	row := models.RolePermission{RoleID: roleID, PermissionID: permissionID}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
	return translate(err)
}

func (s *GormStore) RemoveRolePermission(ctx context.Context, roleID, permissionID string) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("role_id = ? AND permission_id = ?", roleID, permissionID).
		Delete(&models.RolePermission{})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) PermissionsForRole(ctx context.Context, roleID string) ([]models.Permission, error) {
	var perms []models.Permission
	err := s.db.WithContext(ctx).
		Model(&models.Permission{}).
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Find(&perms).Error
	return perms, translate(err)
}

func (s *GormStore) AppendAudit(ctx context.Context, entry *models.AuditLog) error {
	return translate(s.db.WithContext(ctx).Create(entry).Error)
}

func (s *GormStore) RecentAudit(ctx context.Context, userID string, limit int) ([]models.AuditLog, error) {
	q := s.db.WithContext(ctx).Order("created_at desc").Limit(limit)
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	var logs []models.AuditLog
	err := q.Find(&logs).Error
	return logs, translate(err)
}

var _ CredentialStore = (*GormStore)(nil)
