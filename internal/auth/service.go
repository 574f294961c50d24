package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"tripcore/internal/models"
	"tripcore/internal/store"
)

// UserInfo is the projection of a user returned alongside a token pair.
type UserInfo struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Roles     []string `json:"roles"`
}

// TokenPair is one access/refresh issuance.
type TokenPair struct {
	AccessToken     string    `json:"access_token"`
	AccessExpiresAt time.Time `json:"access_expires_at"`
	RefreshToken    string    `json:"refresh_token"`
}

// Session is the result of a successful login, registration or refresh.
type Session struct {
	TokenPair
	User UserInfo `json:"user"`
}

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// DefaultRoleName is granted to every self-registered account.
const DefaultRoleName = "User"

// Service orchestrates credential verification, token issuance and
// role/permission assignment.
type Service struct {
	store   store.CredentialStore
	hasher  PasswordHasher
	issuer  *TokenIssuer
	refresh RefreshTokenStore
	lg      *zap.SugaredLogger
}

func NewService(st store.CredentialStore, hasher PasswordHasher, issuer *TokenIssuer, refresh RefreshTokenStore, lg *zap.SugaredLogger) *Service {
	return &Service{store: st, hasher: hasher, issuer: issuer, refresh: refresh, lg: lg}
}

// Login verifies a username/password pair and opens a new session. Unknown
// username, wrong password and deactivated account all surface as
// ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.store.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now
	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	sess, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, user.ID, "auth.login", nil)
	return sess, nil
}

// Register creates a new active user, grants the default role and opens a
// session. Username and email collisions fail with ErrDuplicateIdentity;
// the database unique indexes are the final arbiter for races.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if _, err := s.store.FindUserByUsername(ctx, in.Username); err == nil {
		return nil, ErrDuplicateIdentity
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if _, err := s.store.FindUserByEmail(ctx, in.Email); err == nil {
		return nil, ErrDuplicateIdentity
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		IsActive:     true,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrDuplicateIdentity
		}
		return nil, err
	}

	if role, err := s.store.FindRoleByName(ctx, DefaultRoleName); err == nil {
		if err := s.store.AddUserRole(ctx, user.ID, role.ID); err != nil {
			s.lg.Warnw("grant default role", "user", user.Username, "error", err)
		}
	}

	sess, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, user.ID, "auth.register", map[string]any{"email": user.Email})
	return sess, nil
}

// Refresh redeems a refresh token and issues a brand-new access/refresh
// pair. The redeemed token is invalid from this point on, whether or not
// the rest of the operation succeeds.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	username, err := s.refresh.Redeem(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	user, err := s.store.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	return s.openSession(ctx, user)
}

// Logout revokes a single refresh token. Unknown tokens are a no-op.
// Already-issued access tokens stay valid until natural expiry.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	return s.refresh.Revoke(ctx, refreshToken)
}

// LogoutAll revokes every refresh token held by a user.
func (s *Service) LogoutAll(ctx context.Context, username string) error {
	return s.refresh.RevokeAll(ctx, username)
}

// ChangePassword re-hashes and persists a new password after verifying the
// current one. A wrong current password leaves the stored hash untouched.
func (s *Service) ChangePassword(ctx context.Context, userID, current, newPassword string) error {
	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !s.hasher.Verify(current, user.PasswordHash) {
		return ErrInvalidCredentials
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.store.SaveUser(ctx, user); err != nil {
		return err
	}
	s.audit(ctx, user.ID, "auth.password_change", nil)
	return nil
}

// AssignRole grants a role to a user. Assigning an already-held role is a
// successful no-op.
func (s *Service) AssignRole(ctx context.Context, userID, roleID string) error {
	if _, err := s.store.FindUserByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if _, err := s.store.FindRoleByID(ctx, roleID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrRoleNotFound
		}
		return err
	}
	if err := s.store.AddUserRole(ctx, userID, roleID); err != nil {
		return err
	}
	s.audit(ctx, userID, "rbac.role_assigned", map[string]any{"role_id": roleID})
	return nil
}

// RemoveRole revokes a role from a user. The returned flag reports whether
// an assignment actually existed.
func (s *Service) RemoveRole(ctx context.Context, userID, roleID string) (bool, error) {
	if _, err := s.store.FindUserByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}
	if _, err := s.store.FindRoleByID(ctx, roleID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, ErrRoleNotFound
		}
		return false, err
	}
	removed, err := s.store.RemoveUserRole(ctx, userID, roleID)
	if err != nil {
		return false, err
	}
	if removed {
		s.audit(ctx, userID, "rbac.role_removed", map[string]any{"role_id": roleID})
	}
	return removed, nil
}

// AssignPermission grants a permission to a role, idempotently.
func (s *Service) AssignPermission(ctx context.Context, roleID, permissionID string) error {
	if _, err := s.store.FindRoleByID(ctx, roleID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrRoleNotFound
		}
		return err
	}
	if _, err := s.store.FindPermissionByID(ctx, permissionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPermissionNotFound
		}
		return err
	}
	return s.store.AddRolePermission(ctx, roleID, permissionID)
}

// RemovePermission revokes a permission from a role; the flag reports
// whether the assignment existed.
func (s *Service) RemovePermission(ctx context.Context, roleID, permissionID string) (bool, error) {
	if _, err := s.store.FindRoleByID(ctx, roleID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, ErrRoleNotFound
		}
		return false, err
	}
	if _, err := s.store.FindPermissionByID(ctx, permissionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, ErrPermissionNotFound
		}
		return false, err
	}
	return s.store.RemoveRolePermission(ctx, roleID, permissionID)
}

func (s *Service) openSession(ctx context.Context, user *models.User) (*Session, error) {
	access, expires, err := s.issuer.Issue(user)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.refresh.Issue(ctx, user.Username)
	if err != nil {
		return nil, err
	}
	roles, err := s.store.RoleNamesForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{
		TokenPair: TokenPair{
			AccessToken:     access,
			AccessExpiresAt: expires,
			RefreshToken:    refreshToken,
		},
		User: UserInfo{
			ID:        user.ID,
			Username:  user.Username,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Roles:     roles,
		},
	}, nil
}

func (s *Service) audit(ctx context.Context, userID, action string, meta map[string]any) {
	entry := &models.AuditLog{UserID: &userID, Action: action}
	if meta != nil {
		if b, err := json.Marshal(meta); err == nil {
			entry.Metadata = models.JSONB(b)
		}
	}
	if err := s.store.AppendAudit(ctx, entry); err != nil {
		s.lg.Warnw("append audit", "action", action, "error", err)
	}
}
