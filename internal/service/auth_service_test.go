package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/darsa-school/darsa-api/internal/authz"
	"github.com/darsa-school/darsa-api/internal/dto"
	"github.com/darsa-school/darsa-api/internal/models"
	"github.com/darsa-school/darsa-api/internal/repository"
)

func newAuthService(t *testing.T, db *gorm.DB) AuthService {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
	}

	return NewAuthService(repository.NewUserRepository(db), NewRedisTokenStore(client), cfg, newTestValidator(), zerolog.Nop())
}

func TestLoginSucceedsForApprovedUser(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(t, db)

	seedApprovedUser(t, db, "karim", authz.RoleStudent)

	pair, err := svc.Login(context.Background(), dto.LoginRequest{Username: "karim", Password: "str0ngpass"})
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)
	require.Equal(t, "karim", pair.User.Username)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(t, db)
	ctx := context.Background()

	seedApprovedUser(t, db, "karim", authz.RoleStudent)

	_, err := svc.Login(ctx, dto.LoginRequest{Username: "karim", Password: "wrongpass1"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "nobody", Password: "str0ngpass"})
	require.ErrorIs(t, err, ErrInvalidCredentials, "unknown user and wrong password are indistinguishable")
}

func TestLoginGatesUnapprovedStudents(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(t, db)
	ctx := context.Background()

	pending := seedApprovedUser(t, db, "pending", authz.RoleStudent)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", pending.ID).Updates(map[string]interface{}{
		"is_approved":     false,
		"approval_status": models.ApprovalPending,
	}).Error)

	rejected := seedApprovedUser(t, db, "rejected", authz.RoleStudent)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", rejected.ID).Updates(map[string]interface{}{
		"is_approved":     false,
		"approval_status": models.ApprovalRejected,
	}).Error)

	_, err := svc.Login(ctx, dto.LoginRequest{Username: "pending", Password: "str0ngpass"})
	require.ErrorIs(t, err, ErrAccountPending)

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "rejected", Password: "str0ngpass"})
	require.ErrorIs(t, err, ErrAccountRejected)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(t, db)

	user := seedApprovedUser(t, db, "karim", authz.RoleStudent)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_active", false).Error)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "karim", Password: "str0ngpass"})
	require.ErrorIs(t, err, ErrAccountInactive)
}

func TestRefreshRotatesToken(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(t, db)
	ctx := context.Background()

	seedApprovedUser(t, db, "karim", authz.RoleStudent)

	pair, err := svc.Login(ctx, dto.LoginRequest{Username: "karim", Password: "str0ngpass"})
	require.NoError(t, err)

	next, err := svc.Refresh(ctx, dto.RefreshRequest{Refresh: pair.Refresh})
	require.NoError(t, err)
	require.NotEmpty(t, next.Access)

	// The consumed refresh token is revoked and cannot be replayed.
	_, err = svc.Refresh(ctx, dto.RefreshRequest{Refresh: pair.Refresh})
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(t, db)
	ctx := context.Background()

	seedApprovedUser(t, db, "karim", authz.RoleStudent)

	pair, err := svc.Login(ctx, dto.LoginRequest{Username: "karim", Password: "str0ngpass"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, dto.RefreshRequest{Refresh: pair.Refresh}))

	_, err = svc.Refresh(ctx, dto.RefreshRequest{Refresh: pair.Refresh})
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshRejectsGarbageToken(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(t, db)

	_, err := svc.Refresh(context.Background(), dto.RefreshRequest{Refresh: "not-a-token"})
	require.ErrorIs(t, err, ErrInvalidToken)
}
