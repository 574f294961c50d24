package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"tripcore/internal/auth"
	"tripcore/internal/models"
	"tripcore/internal/store/storetest"
)

func TestHasPermissionExactMatch(t *testing.T) {
	ctx := context.Background()
	fake := storetest.New()
	checker := auth.NewChecker(fake)

	role := models.Role{Name: "SalesManager", IsActive: true}
	require.NoError(t, fake.CreateRole(ctx, &role))
	perm := models.Permission{Name: "sales.read", Resource: "sales", Action: "read"}
	require.NoError(t, fake.CreatePermission(ctx, &perm))
	require.NoError(t, fake.AddRolePermission(ctx, role.ID, perm.ID))

	allowed, err := checker.HasPermission(ctx, role.ID, "sales", "read")
	require.NoError(t, err)
	require.True(t, allowed)

	// No wildcard or partial semantics: any mismatch denies.
	for _, pair := range [][2]string{
		{"sales", "write"},
		{"tours", "read"},
		{"sale", "read"},
		{"sales", "*"},
	} {
		allowed, err := checker.HasPermission(ctx, role.ID, pair[0], pair[1])
		require.NoError(t, err)
		require.False(t, allowed, "pair %v", pair)
	}
}

func TestHasPermissionUnknownRole(t *testing.T) {
	checker := auth.NewChecker(storetest.New())
	_, err := checker.HasPermission(context.Background(), "missing-role", "sales", "read")
	require.ErrorIs(t, err, auth.ErrRoleNotFound)
}

func TestHasPermissionEmptyRole(t *testing.T) {
	ctx := context.Background()
	fake := storetest.New()
	checker := auth.NewChecker(fake)

	role := models.Role{Name: "Bare", IsActive: true}
	require.NoError(t, fake.CreateRole(ctx, &role))

	allowed, err := checker.HasPermission(ctx, role.ID, "sales", "read")
	require.NoError(t, err)
	require.False(t, allowed)
}
