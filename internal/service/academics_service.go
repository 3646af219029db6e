package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/darsa-school/darsa-api/internal/dto"
	"github.com/darsa-school/darsa-api/internal/models"
	"github.com/darsa-school/darsa-api/internal/repository"
)

// Sentinel errors for the academic taxonomy.
var (
	ErrSemesterNotFound      = errors.New("semester not found")
	ErrClassNotFound         = errors.New("class not found")
	ErrSubjectNotFound       = errors.New("subject not found")
	ErrDuplicateTaxonomyKey  = errors.New("a record with the same unique key already exists")
	ErrClassSemesterMismatch = errors.New("student semester does not match the assigned class semester")
)

// AcademicsService manages semesters, classes and subjects, and enforces the
// class/semester cross-validation on student profiles.
type AcademicsService interface {
	CreateSemester(ctx context.Context, req dto.SemesterRequest) (models.Semester, error)
	ListSemesters(ctx context.Context) ([]models.Semester, error)
	UpdateSemester(ctx context.Context, id uint, req dto.SemesterRequest) (models.Semester, error)
	DeleteSemester(ctx context.Context, id uint) error

	CreateClass(ctx context.Context, req dto.ClassRequest) (models.SchoolClass, error)
	ListClasses(ctx context.Context) ([]models.SchoolClass, error)
	UpdateClass(ctx context.Context, id uint, req dto.ClassRequest) (models.SchoolClass, error)
	DeleteClass(ctx context.Context, id uint) error

	CreateSubject(ctx context.Context, req dto.SubjectRequest) (models.Subject, error)
	ListSubjects(ctx context.Context, semesterID *uint) ([]models.Subject, error)
	UpdateSubject(ctx context.Context, id uint, req dto.SubjectRequest) (models.Subject, error)
	DeleteSubject(ctx context.Context, id uint) error

	AssignStudentClass(ctx context.Context, studentID uint, classID *uint, semesterID *uint) (models.Student, error)
}

type academicsService struct {
	semesters repository.SemesterRepository
	classes   repository.ClassRepository
	subjects  repository.SubjectRepository
	students  repository.StudentRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAcademicsService constructs the academic taxonomy service.
func NewAcademicsService(
	semesters repository.SemesterRepository,
	classes repository.ClassRepository,
	subjects repository.SubjectRepository,
	students repository.StudentRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) AcademicsService {
	return &academicsService{
		semesters: semesters,
		classes:   classes,
		subjects:  subjects,
		students:  students,
		validator: validate,
		logger:    logger.With().Str("component", "academics_service").Logger(),
	}
}

func (s *academicsService) CreateSemester(ctx context.Context, req dto.SemesterRequest) (models.Semester, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Semester{}, err
	}

	semester := models.Semester{
		Number:   req.Number,
		Name:     strings.TrimSpace(req.Name),
		IsActive: boolOrDefault(req.IsActive, true),
	}

	if err := s.semesters.Create(ctx, &semester); err != nil {
		return models.Semester{}, mapDuplicate(err)
	}

	return semester, nil
}

func (s *academicsService) ListSemesters(ctx context.Context) ([]models.Semester, error) {
	return s.semesters.List(ctx)
}

func (s *academicsService) UpdateSemester(ctx context.Context, id uint, req dto.SemesterRequest) (models.Semester, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Semester{}, err
	}

	updates := map[string]interface{}{
		"number": req.Number,
		"name":   strings.TrimSpace(req.Name),
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	semester, err := s.semesters.Update(ctx, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Semester{}, ErrSemesterNotFound
		}
		return models.Semester{}, mapDuplicate(err)
	}

	return semester, nil
}

func (s *academicsService) DeleteSemester(ctx context.Context, id uint) error {
	if err := s.semesters.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSemesterNotFound
		}
		return err
	}
	return nil
}

func (s *academicsService) CreateClass(ctx context.Context, req dto.ClassRequest) (models.SchoolClass, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.SchoolClass{}, err
	}

	if req.SemesterID != nil {
		if _, err := s.semesters.GetByID(ctx, *req.SemesterID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.SchoolClass{}, ErrSemesterNotFound
			}
			return models.SchoolClass{}, err
		}
	}

	class := models.SchoolClass{
		Name:        strings.TrimSpace(req.Name),
		SemesterID:  req.SemesterID,
		Description: req.Description,
		IsActive:    boolOrDefault(req.IsActive, true),
	}

	if err := s.classes.Create(ctx, &class); err != nil {
		return models.SchoolClass{}, mapDuplicate(err)
	}

	return class, nil
}

func (s *academicsService) ListClasses(ctx context.Context) ([]models.SchoolClass, error) {
	return s.classes.List(ctx)
}

func (s *academicsService) UpdateClass(ctx context.Context, id uint, req dto.ClassRequest) (models.SchoolClass, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.SchoolClass{}, err
	}

	updates := map[string]interface{}{
		"name":        strings.TrimSpace(req.Name),
		"description": req.Description,
	}
	if req.SemesterID != nil {
		updates["semester_id"] = *req.SemesterID
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	class, err := s.classes.Update(ctx, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.SchoolClass{}, ErrClassNotFound
		}
		return models.SchoolClass{}, mapDuplicate(err)
	}

	return class, nil
}

func (s *academicsService) DeleteClass(ctx context.Context, id uint) error {
	if err := s.classes.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassNotFound
		}
		return err
	}
	return nil
}

func (s *academicsService) CreateSubject(ctx context.Context, req dto.SubjectRequest) (models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Subject{}, err
	}

	if _, err := s.semesters.GetByID(ctx, req.SemesterID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Subject{}, ErrSemesterNotFound
		}
		return models.Subject{}, err
	}

	credits := req.Credits
	if credits == 0 {
		credits = 3
	}

	subject := models.Subject{
		Name:        strings.TrimSpace(req.Name),
		Code:        normalizeCode(req.Code),
		SemesterID:  req.SemesterID,
		Credits:     credits,
		Description: req.Description,
		IsActive:    boolOrDefault(req.IsActive, true),
	}

	if err := s.subjects.Create(ctx, &subject); err != nil {
		return models.Subject{}, mapDuplicate(err)
	}

	return subject, nil
}

func (s *academicsService) ListSubjects(ctx context.Context, semesterID *uint) ([]models.Subject, error) {
	return s.subjects.List(ctx, semesterID)
}

func (s *academicsService) UpdateSubject(ctx context.Context, id uint, req dto.SubjectRequest) (models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Subject{}, err
	}

	updates := map[string]interface{}{
		"name":        strings.TrimSpace(req.Name),
		"semester_id": req.SemesterID,
		"description": req.Description,
	}
	if code := normalizeCode(req.Code); code != nil {
		updates["code"] = *code
	}
	if req.Credits > 0 {
		updates["credits"] = req.Credits
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	subject, err := s.subjects.Update(ctx, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Subject{}, ErrSubjectNotFound
		}
		return models.Subject{}, mapDuplicate(err)
	}

	return subject, nil
}

func (s *academicsService) DeleteSubject(ctx context.Context, id uint) error {
	if err := s.subjects.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubjectNotFound
		}
		return err
	}
	return nil
}

// AssignStudentClass sets a student's class and semester, enforcing the
// cross-field invariant: when the class itself is bound to a semester, the
// student's declared semester must agree with it.
func (s *academicsService) AssignStudentClass(ctx context.Context, studentID uint, classID *uint, semesterID *uint) (models.Student, error) {
	if classID != nil {
		class, err := s.classes.GetByID(ctx, *classID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.Student{}, ErrClassNotFound
			}
			return models.Student{}, err
		}

		if class.SemesterID != nil && semesterID != nil && *class.SemesterID != *semesterID {
			return models.Student{}, ErrClassSemesterMismatch
		}
		if semesterID == nil {
			semesterID = class.SemesterID
		}
	}

	updates := map[string]interface{}{
		"school_class_id": classID,
		"semester_id":     semesterID,
	}

	student, err := s.students.Update(ctx, studentID, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Student{}, ErrStudentNotFound
		}
		return models.Student{}, err
	}

	return student, nil
}

func boolOrDefault(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

func normalizeCode(code *string) *string {
	if code == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*code)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// mapDuplicate translates store uniqueness violations into the shared
// taxonomy sentinel so handlers can answer 409.
func mapDuplicate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateTaxonomyKey
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate") {
		return ErrDuplicateTaxonomyKey
	}
	return err
}
