package auth

import "errors"

// Failure taxonomy surfaced by Service. Unknown-user and wrong-password are
// deliberately collapsed into ErrInvalidCredentials so callers cannot probe
// for account existence.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrDuplicateIdentity   = errors.New("username or email already taken")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrUserNotFound        = errors.New("user not found")
	ErrInactiveUser        = errors.New("user is deactivated")
	ErrRoleNotFound        = errors.New("role not found")
	ErrPermissionNotFound  = errors.New("permission not found")
	ErrAssignmentNotFound  = errors.New("assignment not found")
)
