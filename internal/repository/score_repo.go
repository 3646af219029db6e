package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/darsa-school/darsa-api/internal/models"
)

// ScoreRepository persists student scores keyed by the
// (student, subject, exam_type) natural key.
type ScoreRepository interface {
	Upsert(ctx context.Context, score *models.StudentScore) (models.StudentScore, error)
	GetByID(ctx context.Context, id uint) (models.StudentScore, error)
	ListByStudent(ctx context.Context, studentID uint, subjectIDs []uint) ([]models.StudentScore, error)
	ListBySubject(ctx context.Context, subjectID uint) ([]models.StudentScore, error)
	Delete(ctx context.Context, id uint) error
}

type scoreRepository struct {
	db *gorm.DB
}

// NewScoreRepository constructs the score repository.
func NewScoreRepository(db *gorm.DB) ScoreRepository {
	return &scoreRepository{db: db}
}

// Upsert writes the row for the natural key, updating in place when it already
// exists. Concurrent writers to the same key resolve last-write-wins at the
// row level.
func (r *scoreRepository) Upsert(ctx context.Context, score *models.StudentScore) (models.StudentScore, error) {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "student_id"}, {Name: "subject_id"}, {Name: "exam_type"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"score", "exam_date", "remarks", "entered_by_id", "updated_at",
		}),
	}).Create(score).Error
	if err != nil {
		return models.StudentScore{}, err
	}

	var stored models.StudentScore
	err = r.db.WithContext(ctx).
		Where("student_id = ? AND subject_id = ? AND exam_type = ?",
			score.StudentID, score.SubjectID, score.ExamType).
		First(&stored).Error
	if err != nil {
		return models.StudentScore{}, err
	}

	return stored, nil
}

func (r *scoreRepository) GetByID(ctx context.Context, id uint) (models.StudentScore, error) {
	var score models.StudentScore
	err := r.db.WithContext(ctx).
		Preload("Subject").
		First(&score, id).Error
	if err != nil {
		return models.StudentScore{}, err
	}

	return score, nil
}

// ListByStudent returns a student's scores. A non-nil subjectIDs narrows the
// result to those subjects; an empty non-nil slice matches nothing.
func (r *scoreRepository) ListByStudent(ctx context.Context, studentID uint, subjectIDs []uint) ([]models.StudentScore, error) {
	query := r.db.WithContext(ctx).
		Preload("Subject").
		Where("student_id = ?", studentID)
	if subjectIDs != nil {
		if len(subjectIDs) == 0 {
			return []models.StudentScore{}, nil
		}
		query = query.Where("subject_id IN ?", subjectIDs)
	}

	var scores []models.StudentScore
	err := query.Order("created_at DESC").Find(&scores).Error

	return scores, err
}

func (r *scoreRepository) ListBySubject(ctx context.Context, subjectID uint) ([]models.StudentScore, error) {
	var scores []models.StudentScore
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("subject_id = ?", subjectID).
		Order("created_at DESC").
		Find(&scores).Error

	return scores, err
}

func (r *scoreRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.StudentScore{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
