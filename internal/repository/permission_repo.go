package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/darsa-school/darsa-api/internal/authz"
	"github.com/darsa-school/darsa-api/internal/models"
)

// PermissionRepository persists the sparse per-admin capability grid.
type PermissionRepository interface {
	Upsert(ctx context.Context, adminID uint, perm authz.Permission, granted bool, actorID uint) (models.AdminPermission, error)
	Has(ctx context.Context, adminID uint, perm authz.Permission) (bool, error)
	GrantsFor(ctx context.Context, adminID uint) (map[authz.Permission]bool, error)
	ListByAdmin(ctx context.Context, adminID uint) ([]models.AdminPermission, error)
	List(ctx context.Context) ([]models.AdminPermission, error)
}

type permissionRepository struct {
	db *gorm.DB
}

// NewPermissionRepository constructs the permission grid repository.
func NewPermissionRepository(db *gorm.DB) PermissionRepository {
	return &permissionRepository{db: db}
}

// Upsert writes the single (admin, permission) row, keyed by the natural key.
// Repeated identical calls are idempotent.
func (r *permissionRepository) Upsert(ctx context.Context, adminID uint, perm authz.Permission, granted bool, actorID uint) (models.AdminPermission, error) {
	row := models.AdminPermission{
		AdminID:        adminID,
		PermissionType: perm,
		IsGranted:      granted,
		GrantedByID:    &actorID,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "admin_id"}, {Name: "permission_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_granted", "granted_by_id", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return models.AdminPermission{}, err
	}

	var stored models.AdminPermission
	err = r.db.WithContext(ctx).
		Where("admin_id = ? AND permission_type = ?", adminID, perm).
		First(&stored).Error
	if err != nil {
		return models.AdminPermission{}, err
	}

	return stored, nil
}

func (r *permissionRepository) Has(ctx context.Context, adminID uint, perm authz.Permission) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AdminPermission{}).
		Where("admin_id = ? AND permission_type = ? AND is_granted = ?", adminID, perm, true).
		Count(&count).Error

	return count > 0, err
}

func (r *permissionRepository) GrantsFor(ctx context.Context, adminID uint) (map[authz.Permission]bool, error) {
	var rows []models.AdminPermission
	err := r.db.WithContext(ctx).
		Where("admin_id = ? AND is_granted = ?", adminID, true).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	grants := make(map[authz.Permission]bool, len(rows))
	for _, row := range rows {
		grants[row.PermissionType] = true
	}

	return grants, nil
}

func (r *permissionRepository) ListByAdmin(ctx context.Context, adminID uint) ([]models.AdminPermission, error) {
	var rows []models.AdminPermission
	err := r.db.WithContext(ctx).
		Where("admin_id = ?", adminID).
		Order("permission_type").
		Find(&rows).Error

	return rows, err
}

func (r *permissionRepository) List(ctx context.Context) ([]models.AdminPermission, error) {
	var rows []models.AdminPermission
	err := r.db.WithContext(ctx).
		Order("admin_id, permission_type").
		Find(&rows).Error

	return rows, err
}
