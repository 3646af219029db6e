package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/darsa-school/darsa-api/internal/models"
)

// SemesterRepository persists academic terms.
type SemesterRepository interface {
	Create(ctx context.Context, semester *models.Semester) error
	GetByID(ctx context.Context, id uint) (models.Semester, error)
	List(ctx context.Context) ([]models.Semester, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Semester, error)
	Delete(ctx context.Context, id uint) error
}

type semesterRepository struct {
	db *gorm.DB
}

// NewSemesterRepository constructs the semester repository.
func NewSemesterRepository(db *gorm.DB) SemesterRepository {
	return &semesterRepository{db: db}
}

func (r *semesterRepository) Create(ctx context.Context, semester *models.Semester) error {
	return r.db.WithContext(ctx).Create(semester).Error
}

func (r *semesterRepository) GetByID(ctx context.Context, id uint) (models.Semester, error) {
	var semester models.Semester
	if err := r.db.WithContext(ctx).First(&semester, id).Error; err != nil {
		return models.Semester{}, err
	}
	return semester, nil
}

func (r *semesterRepository) List(ctx context.Context) ([]models.Semester, error) {
	var semesters []models.Semester
	err := r.db.WithContext(ctx).Order("number").Find(&semesters).Error
	return semesters, err
}

func (r *semesterRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Semester, error) {
	tx := r.db.WithContext(ctx).Model(&models.Semester{}).Where("id = ?", id)
	if err := tx.Updates(updates).Error; err != nil {
		return models.Semester{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *semesterRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Semester{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ClassRepository persists school classes.
type ClassRepository interface {
	Create(ctx context.Context, class *models.SchoolClass) error
	GetByID(ctx context.Context, id uint) (models.SchoolClass, error)
	List(ctx context.Context) ([]models.SchoolClass, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.SchoolClass, error)
	Delete(ctx context.Context, id uint) error
}

type classRepository struct {
	db *gorm.DB
}

// NewClassRepository constructs the school class repository.
func NewClassRepository(db *gorm.DB) ClassRepository {
	return &classRepository{db: db}
}

func (r *classRepository) Create(ctx context.Context, class *models.SchoolClass) error {
	return r.db.WithContext(ctx).Create(class).Error
}

func (r *classRepository) GetByID(ctx context.Context, id uint) (models.SchoolClass, error) {
	var class models.SchoolClass
	if err := r.db.WithContext(ctx).Preload("Semester").First(&class, id).Error; err != nil {
		return models.SchoolClass{}, err
	}
	return class, nil
}

func (r *classRepository) List(ctx context.Context) ([]models.SchoolClass, error) {
	var classes []models.SchoolClass
	err := r.db.WithContext(ctx).Preload("Semester").Order("name").Find(&classes).Error
	return classes, err
}

func (r *classRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.SchoolClass, error) {
	tx := r.db.WithContext(ctx).Model(&models.SchoolClass{}).Where("id = ?", id)
	if err := tx.Updates(updates).Error; err != nil {
		return models.SchoolClass{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *classRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.SchoolClass{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SubjectRepository persists taught subjects.
type SubjectRepository interface {
	Create(ctx context.Context, subject *models.Subject) error
	GetByID(ctx context.Context, id uint) (models.Subject, error)
	List(ctx context.Context, semesterID *uint) ([]models.Subject, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Subject, error)
	Delete(ctx context.Context, id uint) error
}

type subjectRepository struct {
	db *gorm.DB
}

// NewSubjectRepository constructs the subject repository.
func NewSubjectRepository(db *gorm.DB) SubjectRepository {
	return &subjectRepository{db: db}
}

func (r *subjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	return r.db.WithContext(ctx).Create(subject).Error
}

func (r *subjectRepository) GetByID(ctx context.Context, id uint) (models.Subject, error) {
	var subject models.Subject
	if err := r.db.WithContext(ctx).Preload("Semester").First(&subject, id).Error; err != nil {
		return models.Subject{}, err
	}
	return subject, nil
}

func (r *subjectRepository) List(ctx context.Context, semesterID *uint) ([]models.Subject, error) {
	query := r.db.WithContext(ctx).Preload("Semester")
	if semesterID != nil {
		query = query.Where("semester_id = ?", *semesterID)
	}

	var subjects []models.Subject
	err := query.Order("semester_id, name").Find(&subjects).Error
	return subjects, err
}

func (r *subjectRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Subject, error) {
	tx := r.db.WithContext(ctx).Model(&models.Subject{}).Where("id = ?", id)
	if err := tx.Updates(updates).Error; err != nil {
		return models.Subject{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *subjectRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Subject{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
