package auth

import (
	"context"
	"errors"

	"tripcore/internal/store"
)

// Checker answers whether a role holds a (resource, action) capability.
type Checker struct {
	store store.CredentialStore
}

func NewChecker(st store.CredentialStore) *Checker {
	return &Checker{store: st}
}

// HasPermission reports whether the role holds the exact (resource, action)
// pair. No wildcard or hierarchy semantics.
func (c *Checker) HasPermission(ctx context.Context, roleID, resource, action string) (bool, error) {
	if _, err := c.store.FindRoleByID(ctx, roleID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, ErrRoleNotFound
		}
		return false, err
	}
	perms, err := c.store.PermissionsForRole(ctx, roleID)
	if err != nil {
		return false, err
	}
	for _, p := range perms {
		if p.Resource == resource && p.Action == action {
			return true, nil
		}
	}
	return false, nil
}
