package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/darsa-school/darsa-api/internal/models"
)

// ActivityLogRepository persists the administrative audit trail.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, action string, limit int) ([]models.ActivityLog, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository constructs the activity log repository.
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *activityLogRepository) List(ctx context.Context, action string, limit int) ([]models.ActivityLog, error) {
	query := r.db.WithContext(ctx).Model(&models.ActivityLog{})
	if action != "" {
		query = query.Where("action = ?", action)
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var entries []models.ActivityLog
	err := query.Order("created_at DESC").Limit(limit).Find(&entries).Error
	return entries, err
}
