package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/darsa-school/darsa-api/internal/models"
)

// StudentRepository persists student profiles.
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id uint) (models.Student, error)
	GetByUserID(ctx context.Context, userID uint) (models.Student, error)
	List(ctx context.Context, classID *uint) ([]models.Student, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Student, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs the student profile repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("SchoolClass").
		Preload("Semester").
		First(&student, id).Error
	if err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *studentRepository) GetByUserID(ctx context.Context, userID uint) (models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).
		Preload("SchoolClass").
		Preload("Semester").
		Where("user_id = ?", userID).
		First(&student).Error
	if err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *studentRepository) List(ctx context.Context, classID *uint) ([]models.Student, error) {
	query := r.db.WithContext(ctx).Preload("User")
	if classID != nil {
		query = query.Where("school_class_id = ?", *classID)
	}

	var students []models.Student
	err := query.Order("created_at DESC").Find(&students).Error
	return students, err
}

func (r *studentRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Student, error) {
	tx := r.db.WithContext(ctx).Model(&models.Student{}).Where("id = ?", id)
	if err := tx.Updates(updates).Error; err != nil {
		return models.Student{}, err
	}

	return r.GetByID(ctx, id)
}

// TeacherRepository persists teacher profiles and their subject links.
type TeacherRepository interface {
	Create(ctx context.Context, teacher *models.Teacher) error
	GetByID(ctx context.Context, id uint) (models.Teacher, error)
	GetByUserID(ctx context.Context, userID uint) (models.Teacher, error)
	List(ctx context.Context) ([]models.Teacher, error)
	SubjectIDs(ctx context.Context, teacherID uint) ([]uint, error)
	ReplaceSubjects(ctx context.Context, teacherID uint, subjectIDs []uint) error
}

type teacherRepository struct {
	db *gorm.DB
}

// NewTeacherRepository constructs the teacher profile repository.
func NewTeacherRepository(db *gorm.DB) TeacherRepository {
	return &teacherRepository{db: db}
}

func (r *teacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	return r.db.WithContext(ctx).Create(teacher).Error
}

func (r *teacherRepository) GetByID(ctx context.Context, id uint) (models.Teacher, error) {
	var teacher models.Teacher
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Subjects").
		First(&teacher, id).Error
	if err != nil {
		return models.Teacher{}, err
	}

	return teacher, nil
}

func (r *teacherRepository) GetByUserID(ctx context.Context, userID uint) (models.Teacher, error) {
	var teacher models.Teacher
	err := r.db.WithContext(ctx).
		Preload("Subjects").
		Where("user_id = ?", userID).
		First(&teacher).Error
	if err != nil {
		return models.Teacher{}, err
	}

	return teacher, nil
}

func (r *teacherRepository) List(ctx context.Context) ([]models.Teacher, error) {
	var teachers []models.Teacher
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Find(&teachers).Error

	return teachers, err
}

func (r *teacherRepository) SubjectIDs(ctx context.Context, teacherID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Table("teacher_subjects").
		Where("teacher_id = ?", teacherID).
		Pluck("subject_id", &ids).Error

	return ids, err
}

func (r *teacherRepository) ReplaceSubjects(ctx context.Context, teacherID uint, subjectIDs []uint) error {
	subjects := make([]models.Subject, 0, len(subjectIDs))
	for _, id := range subjectIDs {
		subjects = append(subjects, models.Subject{ID: id})
	}

	teacher := models.Teacher{ID: teacherID}
	return r.db.WithContext(ctx).Model(&teacher).Association("Subjects").Replace(subjects)
}
