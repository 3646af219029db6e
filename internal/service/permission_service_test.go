package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/darsa-school/darsa-api/internal/authz"
	"github.com/darsa-school/darsa-api/internal/dto"
	"github.com/darsa-school/darsa-api/internal/repository"
)

func newPermissionService(t *testing.T, db *gorm.DB) PermissionService {
	t.Helper()
	logger := zerolog.Nop()
	activity := NewActivityService(repository.NewActivityLogRepository(db), logger)
	return NewPermissionService(repository.NewPermissionRepository(db), repository.NewUserRepository(db), activity, logger)
}

func TestGrantAndRevoke(t *testing.T) {
	db := setupTestDB(t)
	svc := newPermissionService(t, db)
	ctx := context.Background()

	superAdmin := seedApprovedUser(t, db, "root", authz.RoleSuperAdmin)
	admin := seedApprovedUser(t, db, "clerk", authz.RoleAdmin)
	actor := Actor{ID: superAdmin.ID, Role: string(authz.RoleSuperAdmin)}

	row, err := svc.Grant(ctx, dto.PermissionGrantRequest{
		AdminID:        admin.ID,
		PermissionType: "can_approve_students",
		IsGranted:      true,
	}, actor)
	require.NoError(t, err)
	require.True(t, row.IsGranted)

	has, err := svc.HasPermission(ctx, admin.ID, authz.RoleAdmin, authz.PermApproveStudents)
	require.NoError(t, err)
	require.True(t, has)

	revoked, err := svc.Grant(ctx, dto.PermissionGrantRequest{
		AdminID:        admin.ID,
		PermissionType: "can_approve_students",
		IsGranted:      false,
	}, actor)
	require.NoError(t, err)
	require.Equal(t, row.ID, revoked.ID, "revoke updates the existing grid row")

	has, err = svc.HasPermission(ctx, admin.ID, authz.RoleAdmin, authz.PermApproveStudents)
	require.NoError(t, err)
	require.False(t, has)
}

func TestGrantValidatesTarget(t *testing.T) {
	db := setupTestDB(t)
	svc := newPermissionService(t, db)
	ctx := context.Background()

	superAdmin := seedApprovedUser(t, db, "root", authz.RoleSuperAdmin)
	student := seedApprovedUser(t, db, "karim", authz.RoleStudent)
	actor := Actor{ID: superAdmin.ID, Role: string(authz.RoleSuperAdmin)}

	_, err := svc.Grant(ctx, dto.PermissionGrantRequest{
		AdminID:        student.ID,
		PermissionType: "can_view_students",
		IsGranted:      true,
	}, actor)
	require.ErrorIs(t, err, ErrPermissionNotAdmin)

	_, err = svc.Grant(ctx, dto.PermissionGrantRequest{
		AdminID:        9999,
		PermissionType: "can_view_students",
		IsGranted:      true,
	}, actor)
	require.ErrorIs(t, err, ErrPermissionAdminNotFound)

	admin := seedApprovedUser(t, db, "clerk", authz.RoleAdmin)
	_, err = svc.Grant(ctx, dto.PermissionGrantRequest{
		AdminID:        admin.ID,
		PermissionType: "can_levitate",
		IsGranted:      true,
	}, actor)
	require.ErrorIs(t, err, ErrUnknownPermission)
}

func TestBulkSetReportsPerItemErrors(t *testing.T) {
	db := setupTestDB(t)
	svc := newPermissionService(t, db)
	ctx := context.Background()

	superAdmin := seedApprovedUser(t, db, "root", authz.RoleSuperAdmin)
	admin := seedApprovedUser(t, db, "clerk", authz.RoleAdmin)
	actor := Actor{ID: superAdmin.ID, Role: string(authz.RoleSuperAdmin)}

	result, err := svc.BulkSet(ctx, dto.PermissionBulkRequest{
		AdminID: admin.ID,
		Permissions: []dto.PermissionItem{
			{PermissionType: "can_view_students", IsGranted: true},
			{PermissionType: "can_fly", IsGranted: true},
			{PermissionType: "can_edit_students", IsGranted: true},
			{PermissionType: "can_teleport", IsGranted: false},
			{PermissionType: "can_approve_students", IsGranted: true},
		},
	}, actor)
	require.NoError(t, err, "the batch itself succeeds even when items fail")
	require.Len(t, result.Updated, 3)
	require.Len(t, result.Errors, 2)
	require.Equal(t, 1, result.Errors[0].Index)
	require.Equal(t, 3, result.Errors[1].Index)

	// Valid items before and after a failing one were still applied.
	has, err := svc.HasPermission(ctx, admin.ID, authz.RoleAdmin, authz.PermApproveStudents)
	require.NoError(t, err)
	require.True(t, has)
}

func TestActorForLoadsAdminGrants(t *testing.T) {
	db := setupTestDB(t)
	svc := newPermissionService(t, db)
	ctx := context.Background()

	superAdmin := seedApprovedUser(t, db, "root", authz.RoleSuperAdmin)
	admin := seedApprovedUser(t, db, "clerk", authz.RoleAdmin)

	_, err := svc.Grant(ctx, dto.PermissionGrantRequest{
		AdminID:        admin.ID,
		PermissionType: "can_view_students",
		IsGranted:      true,
	}, Actor{ID: superAdmin.ID, Role: string(authz.RoleSuperAdmin)})
	require.NoError(t, err)

	actor, err := svc.ActorFor(ctx, admin.ID, authz.RoleAdmin)
	require.NoError(t, err)
	require.True(t, authz.Allowed(actor, authz.PermViewStudents))
	require.False(t, authz.Allowed(actor, authz.PermDeleteStudents))

	// Super admins carry no grid and pass everything.
	superActor, err := svc.ActorFor(ctx, superAdmin.ID, authz.RoleSuperAdmin)
	require.NoError(t, err)
	require.Nil(t, superActor.Grants)
	require.True(t, authz.Allowed(superActor, authz.PermConfigureSystem))

	// Students carry no grid and pass nothing.
	studentActor, err := svc.ActorFor(ctx, 42, authz.RoleStudent)
	require.NoError(t, err)
	require.False(t, authz.Allowed(studentActor, authz.PermViewStudents))
}
