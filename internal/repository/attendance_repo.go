package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/darsa-school/darsa-api/internal/models"
)

// AttendanceFilter narrows attendance listings. A non-nil SubjectIDs limits
// student records to those subjects.
type AttendanceFilter struct {
	StudentID  *uint
	TeacherID  *uint
	SubjectID  *uint
	SubjectIDs []uint
	From       *time.Time
	To         *time.Time
}

// AttendanceRepository persists student and teacher attendance, keyed by
// (student, date, subject) and (teacher, date) respectively.
type AttendanceRepository interface {
	UpsertStudent(ctx context.Context, record *models.StudentAttendance) (models.StudentAttendance, error)
	UpsertTeacher(ctx context.Context, record *models.TeacherAttendance) (models.TeacherAttendance, error)
	ListStudent(ctx context.Context, filter AttendanceFilter) ([]models.StudentAttendance, error)
	ListTeacher(ctx context.Context, filter AttendanceFilter) ([]models.TeacherAttendance, error)
	CountStudentByStatus(ctx context.Context, filter AttendanceFilter) (map[models.AttendanceStatus]int64, error)
	CountTeacherByStatus(ctx context.Context, filter AttendanceFilter) (map[models.AttendanceStatus]int64, error)
}

type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository constructs the attendance repository.
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) UpsertStudent(ctx context.Context, record *models.StudentAttendance) (models.StudentAttendance, error) {
	db := r.db.WithContext(ctx)

	// ON CONFLICT does not fire for a NULL subject_id, since SQL treats NULLs
	// as distinct in unique indexes. The day-level key is resolved manually.
	if record.SubjectID == nil {
		var existing models.StudentAttendance
		err := db.Where("student_id = ? AND date = ? AND subject_id IS NULL", record.StudentID, record.Date).
			First(&existing).Error
		switch {
		case err == nil:
			err = db.Model(&existing).Updates(map[string]interface{}{
				"status":          record.Status,
				"school_class_id": record.SchoolClassID,
				"remarks":         record.Remarks,
				"marked_by_id":    record.MarkedByID,
			}).Error
			if err != nil {
				return models.StudentAttendance{}, err
			}
			return existing, nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := db.Create(record).Error; err != nil {
				return models.StudentAttendance{}, err
			}
			return *record, nil
		default:
			return models.StudentAttendance{}, err
		}
	}

	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "student_id"}, {Name: "date"}, {Name: "subject_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "school_class_id", "remarks", "marked_by_id", "updated_at",
		}),
	}).Create(record).Error
	if err != nil {
		return models.StudentAttendance{}, err
	}

	var stored models.StudentAttendance
	err = db.Where("student_id = ? AND date = ? AND subject_id = ?", record.StudentID, record.Date, *record.SubjectID).
		First(&stored).Error
	if err != nil {
		return models.StudentAttendance{}, err
	}

	return stored, nil
}

func (r *attendanceRepository) UpsertTeacher(ctx context.Context, record *models.TeacherAttendance) (models.TeacherAttendance, error) {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "teacher_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "check_in_time", "check_out_time", "remarks", "marked_by_id", "updated_at",
		}),
	}).Create(record).Error
	if err != nil {
		return models.TeacherAttendance{}, err
	}

	var stored models.TeacherAttendance
	err = r.db.WithContext(ctx).
		Where("teacher_id = ? AND date = ?", record.TeacherID, record.Date).
		First(&stored).Error
	if err != nil {
		return models.TeacherAttendance{}, err
	}

	return stored, nil
}

func (r *attendanceRepository) ListStudent(ctx context.Context, filter AttendanceFilter) ([]models.StudentAttendance, error) {
	var records []models.StudentAttendance
	err := r.studentQuery(ctx, filter).Order("date DESC").Find(&records).Error
	return records, err
}

func (r *attendanceRepository) studentQuery(ctx context.Context, filter AttendanceFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.StudentAttendance{})
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.SubjectID != nil {
		query = query.Where("subject_id = ?", *filter.SubjectID)
	}
	if filter.SubjectIDs != nil {
		query = query.Where("subject_id IN ?", filter.SubjectIDs)
	}
	if filter.From != nil {
		query = query.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date <= ?", *filter.To)
	}
	return query
}

type statusCount struct {
	Status models.AttendanceStatus
	Total  int64
}

// CountStudentByStatus groups the matching student records by status.
func (r *attendanceRepository) CountStudentByStatus(ctx context.Context, filter AttendanceFilter) (map[models.AttendanceStatus]int64, error) {
	var rows []statusCount
	err := r.studentQuery(ctx, filter).
		Select("status, count(*) as total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return statusCounts(rows), nil
}

// CountTeacherByStatus groups the matching teacher records by status.
func (r *attendanceRepository) CountTeacherByStatus(ctx context.Context, filter AttendanceFilter) (map[models.AttendanceStatus]int64, error) {
	var rows []statusCount
	err := r.teacherQuery(ctx, filter).
		Select("status, count(*) as total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return statusCounts(rows), nil
}

func statusCounts(rows []statusCount) map[models.AttendanceStatus]int64 {
	counts := make(map[models.AttendanceStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts
}

func (r *attendanceRepository) ListTeacher(ctx context.Context, filter AttendanceFilter) ([]models.TeacherAttendance, error) {
	var records []models.TeacherAttendance
	err := r.teacherQuery(ctx, filter).Order("date DESC").Find(&records).Error
	return records, err
}

func (r *attendanceRepository) teacherQuery(ctx context.Context, filter AttendanceFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.TeacherAttendance{})
	if filter.TeacherID != nil {
		query = query.Where("teacher_id = ?", *filter.TeacherID)
	}
	if filter.From != nil {
		query = query.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date <= ?", *filter.To)
	}
	return query
}
