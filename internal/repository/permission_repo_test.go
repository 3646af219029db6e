package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/darsa-school/darsa-api/internal/authz"
	"github.com/darsa-school/darsa-api/internal/models"
)

func TestPermissionRepositoryUpsertIsKeyed(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPermissionRepository(db)
	ctx := context.Background()

	admin := seedUser(t, db, models.User{Username: "admin", Role: authz.RoleAdmin})
	super := seedUser(t, db, models.User{Username: "root", Role: authz.RoleSuperAdmin})

	granted, err := repo.Upsert(ctx, admin.ID, authz.PermApproveStudents, true, super.ID)
	require.NoError(t, err)
	require.True(t, granted.IsGranted)

	// A second write for the same (admin, permission) updates in place.
	revoked, err := repo.Upsert(ctx, admin.ID, authz.PermApproveStudents, false, super.ID)
	require.NoError(t, err)
	require.Equal(t, granted.ID, revoked.ID)
	require.False(t, revoked.IsGranted)

	var count int64
	require.NoError(t, db.Model(&models.AdminPermission{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestPermissionRepositoryHasAndGrantsFor(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPermissionRepository(db)
	ctx := context.Background()

	admin := seedUser(t, db, models.User{Username: "admin", Role: authz.RoleAdmin})
	super := seedUser(t, db, models.User{Username: "root", Role: authz.RoleSuperAdmin})

	has, err := repo.Has(ctx, admin.ID, authz.PermViewStudents)
	require.NoError(t, err)
	require.False(t, has, "absence of a row means not granted")

	_, err = repo.Upsert(ctx, admin.ID, authz.PermViewStudents, true, super.ID)
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, admin.ID, authz.PermEditStudents, false, super.ID)
	require.NoError(t, err)

	has, err = repo.Has(ctx, admin.ID, authz.PermViewStudents)
	require.NoError(t, err)
	require.True(t, has)

	has, err = repo.Has(ctx, admin.ID, authz.PermEditStudents)
	require.NoError(t, err)
	require.False(t, has, "a revoked row is not a grant")

	grants, err := repo.GrantsFor(ctx, admin.ID)
	require.NoError(t, err)
	require.Equal(t, map[authz.Permission]bool{authz.PermViewStudents: true}, grants)
}
