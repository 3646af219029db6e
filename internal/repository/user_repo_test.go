package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/darsa-school/darsa-api/internal/authz"
	"github.com/darsa-school/darsa-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.AdminPermission{},
		&models.Semester{},
		&models.SchoolClass{},
		&models.Subject{},
		&models.Student{},
		&models.Teacher{},
		&models.StudentScore{},
		&models.StudentAttendance{},
		&models.TeacherAttendance{},
		&models.Document{},
		&models.ActivityLog{},
	))

	return db
}

func seedUser(t *testing.T, db *gorm.DB, user models.User) models.User {
	t.Helper()
	if user.PasswordHash == "" {
		user.PasswordHash = "x"
	}
	if user.Name == "" {
		user.Name = user.Username
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestUserRepositoryUsernameExists(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	seedUser(t, db, models.User{Username: "ahmad", Role: authz.RoleStudent})

	exists, err := repo.UsernameExists(ctx, "ahmad")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.UsernameExists(ctx, "someone-else")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestUserRepositoryListFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	seedUser(t, db, models.User{Username: "root", Role: authz.RoleSuperAdmin, ApprovalStatus: models.ApprovalApproved})
	seedUser(t, db, models.User{Username: "clerk", Role: authz.RoleAdmin, ApprovalStatus: models.ApprovalApproved})
	seedUser(t, db, models.User{Username: "karim", Name: "Karim Azimi", Role: authz.RoleStudent, ApprovalStatus: models.ApprovalPending})
	seedUser(t, db, models.User{Username: "sara", Role: authz.RoleStudent, ApprovalStatus: models.ApprovalApproved})

	users, total, err := repo.List(ctx, UserFilter{Roles: []authz.Role{authz.RoleTeacher, authz.RoleStudent}})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	for _, u := range users {
		require.NotEqual(t, authz.RoleAdmin, u.Role)
		require.NotEqual(t, authz.RoleSuperAdmin, u.Role)
	}

	users, total, err = repo.List(ctx, UserFilter{
		Roles:          []authz.Role{authz.RoleStudent},
		ApprovalStatus: models.ApprovalPending,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "karim", users[0].Username)

	users, total, err = repo.List(ctx, UserFilter{Search: "azimi"})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "karim", users[0].Username)
}

func TestUserRepositoryDeleteExpiredPending(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	old := time.Now().Add(-7 * 30 * 24 * time.Hour)
	fresh := time.Now().Add(-24 * time.Hour)

	stale := seedUser(t, db, models.User{Username: "stale", Role: authz.RoleStudent, ApprovalStatus: models.ApprovalPending})
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", stale.ID).Update("created_at", old).Error)

	approvedOld := seedUser(t, db, models.User{Username: "approved", Role: authz.RoleStudent, ApprovalStatus: models.ApprovalApproved})
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", approvedOld.ID).Update("created_at", old).Error)

	rejectedOld := seedUser(t, db, models.User{Username: "rejected", Role: authz.RoleStudent, ApprovalStatus: models.ApprovalRejected})
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", rejectedOld.ID).Update("created_at", old).Error)

	recent := seedUser(t, db, models.User{Username: "recent", Role: authz.RoleStudent, ApprovalStatus: models.ApprovalPending})
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", recent.ID).Update("created_at", fresh).Error)

	oldTeacher := seedUser(t, db, models.User{Username: "teach", Role: authz.RoleTeacher, ApprovalStatus: models.ApprovalPending})
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", oldTeacher.ID).Update("created_at", old).Error)

	deleted, err := repo.DeleteExpiredPending(ctx, time.Now().Add(-6*30*24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted, "only the stale pending student is swept")

	var remaining int64
	require.NoError(t, db.Model(&models.User{}).Count(&remaining).Error)
	require.Equal(t, int64(4), remaining)

	_, err = repo.GetByUsername(ctx, "stale")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepositoryUpdateAndDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, models.User{Username: "amin", Role: authz.RoleStudent, ApprovalStatus: models.ApprovalPending})

	updated, err := repo.Update(ctx, user.ID, map[string]interface{}{
		"approval_status": models.ApprovalApproved,
		"is_approved":     true,
	})
	require.NoError(t, err)
	require.Equal(t, models.ApprovalApproved, updated.ApprovalStatus)
	require.True(t, updated.IsApproved)

	require.NoError(t, repo.Delete(ctx, user.ID))
	require.ErrorIs(t, repo.Delete(ctx, user.ID), gorm.ErrRecordNotFound)
}
