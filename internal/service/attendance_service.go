package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/darsa-school/darsa-api/internal/authz"
	"github.com/darsa-school/darsa-api/internal/dto"
	"github.com/darsa-school/darsa-api/internal/models"
	"github.com/darsa-school/darsa-api/internal/repository"
)

// Sentinel errors for attendance records.
var (
	ErrTeacherNotFound         = errors.New("teacher not found")
	ErrInvalidAttendanceStatus = errors.New("invalid attendance status")
	ErrAttendanceScopeDenied   = errors.New("not allowed to mark or view attendance outside your subjects")
)

// AttendanceService marks and lists attendance. Marking upserts against the
// natural keys (student, date, subject) and (teacher, date). Teacher actors
// may only mark and read student records within subjects linked to their
// profile.
type AttendanceService interface {
	MarkStudent(ctx context.Context, req dto.StudentAttendanceRequest, actor Actor) (models.StudentAttendance, error)
	BulkMarkStudents(ctx context.Context, req dto.StudentAttendanceBulkRequest, actor Actor) (dto.AttendanceBulkResponse, error)
	MarkTeacher(ctx context.Context, req dto.TeacherAttendanceRequest, actor Actor) (models.TeacherAttendance, error)
	ListStudent(ctx context.Context, req dto.AttendanceListRequest, actor authz.Actor) ([]models.StudentAttendance, error)
	ListTeacher(ctx context.Context, req dto.AttendanceListRequest, actor authz.Actor) ([]models.TeacherAttendance, error)
	StudentStats(ctx context.Context, studentID uint, actor authz.Actor) (dto.AttendanceStatsResponse, error)
	TeacherStats(ctx context.Context, teacherID uint, actor authz.Actor) (dto.AttendanceStatsResponse, error)
}

type attendanceService struct {
	repo      repository.AttendanceRepository
	students  repository.StudentRepository
	teachers  repository.TeacherRepository
	validator *validator.Validate
	activity  ActivityRecorder
	logger    zerolog.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(
	repo repository.AttendanceRepository,
	students repository.StudentRepository,
	teachers repository.TeacherRepository,
	validate *validator.Validate,
	activity ActivityRecorder,
	logger zerolog.Logger,
) AttendanceService {
	return &attendanceService{
		repo:      repo,
		students:  students,
		teachers:  teachers,
		validator: validate,
		activity:  activity,
		logger:    logger.With().Str("component", "attendance_service").Logger(),
	}
}

func (s *attendanceService) MarkStudent(ctx context.Context, req dto.StudentAttendanceRequest, actor Actor) (models.StudentAttendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.StudentAttendance{}, err
	}

	status := models.AttendanceStatus(req.Status)
	if !status.ValidForStudent() {
		return models.StudentAttendance{}, fmt.Errorf("%w: %s", ErrInvalidAttendanceStatus, req.Status)
	}

	if _, err := s.students.GetByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.StudentAttendance{}, ErrStudentNotFound
		}
		return models.StudentAttendance{}, err
	}

	// Teachers mark within their own subjects; day-level marks without a
	// subject are reserved for staff.
	if actor.Role == string(authz.RoleTeacher) {
		if req.SubjectID == nil {
			return models.StudentAttendance{}, ErrAttendanceScopeDenied
		}
		ids, err := s.teacherSubjectIDs(ctx, actor.ID)
		if err != nil {
			return models.StudentAttendance{}, err
		}
		if !containsID(ids, *req.SubjectID) {
			return models.StudentAttendance{}, ErrAttendanceScopeDenied
		}
	}

	markedBy := actor.ID
	record := models.StudentAttendance{
		StudentID:     req.StudentID,
		Date:          truncateToDate(req.Date),
		SubjectID:     req.SubjectID,
		SchoolClassID: req.SchoolClassID,
		Status:        status,
		Remarks:       req.Remarks,
		MarkedByID:    &markedBy,
	}

	stored, err := s.repo.UpsertStudent(ctx, &record)
	if err != nil {
		return models.StudentAttendance{}, err
	}

	return stored, nil
}

// BulkMarkStudents marks several students independently; a failing item lands
// in the per-item error list and never rolls back the others.
func (s *attendanceService) BulkMarkStudents(ctx context.Context, req dto.StudentAttendanceBulkRequest, actor Actor) (dto.AttendanceBulkResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AttendanceBulkResponse{}, err
	}

	response := dto.AttendanceBulkResponse{Errors: make([]dto.AttendanceBulkItemError, 0)}
	for i, item := range req.Records {
		if _, err := s.MarkStudent(ctx, item, actor); err != nil {
			response.Errors = append(response.Errors, dto.AttendanceBulkItemError{Index: i, Error: err.Error()})
			continue
		}
		response.Marked++
	}

	s.logger.Info().
		Int("marked", response.Marked).
		Int("failed", len(response.Errors)).
		Msg("bulk attendance write completed")

	return response, nil
}

func (s *attendanceService) MarkTeacher(ctx context.Context, req dto.TeacherAttendanceRequest, actor Actor) (models.TeacherAttendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.TeacherAttendance{}, err
	}

	status := models.AttendanceStatus(req.Status)
	if !status.ValidForTeacher() {
		return models.TeacherAttendance{}, fmt.Errorf("%w: %s", ErrInvalidAttendanceStatus, req.Status)
	}

	if _, err := s.teachers.GetByID(ctx, req.TeacherID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.TeacherAttendance{}, ErrTeacherNotFound
		}
		return models.TeacherAttendance{}, err
	}

	markedBy := actor.ID
	record := models.TeacherAttendance{
		TeacherID:    req.TeacherID,
		Date:         truncateToDate(req.Date),
		Status:       status,
		CheckInTime:  req.CheckInTime,
		CheckOutTime: req.CheckOutTime,
		Remarks:      req.Remarks,
		MarkedByID:   &markedBy,
	}

	stored, err := s.repo.UpsertTeacher(ctx, &record)
	if err != nil {
		return models.TeacherAttendance{}, err
	}

	return stored, nil
}

// ListStudent scopes reads: a student actor is pinned to their own records
// regardless of the requested filter, and a teacher actor to the subjects
// linked to their profile.
func (s *attendanceService) ListStudent(ctx context.Context, req dto.AttendanceListRequest, actor authz.Actor) ([]models.StudentAttendance, error) {
	filter := repository.AttendanceFilter{
		StudentID: req.StudentID,
		SubjectID: req.SubjectID,
		From:      req.From,
		To:        req.To,
	}

	switch actor.Role {
	case authz.RoleStudent:
		profile, err := s.students.GetByUserID(ctx, actor.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return []models.StudentAttendance{}, nil
			}
			return nil, err
		}
		filter.StudentID = &profile.ID
	case authz.RoleTeacher:
		scoped, ok, err := s.scopeToTeacherSubjects(ctx, actor.ID, &filter)
		if err != nil {
			return nil, err
		}
		if !ok {
			return []models.StudentAttendance{}, nil
		}
		filter = scoped
	}

	return s.repo.ListStudent(ctx, filter)
}

// ListTeacher scopes reads: a teacher actor is pinned to their own records.
func (s *attendanceService) ListTeacher(ctx context.Context, req dto.AttendanceListRequest, actor authz.Actor) ([]models.TeacherAttendance, error) {
	filter := repository.AttendanceFilter{
		TeacherID: req.TeacherID,
		From:      req.From,
		To:        req.To,
	}

	if actor.Role == authz.RoleTeacher {
		profile, err := s.teachers.GetByUserID(ctx, actor.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return []models.TeacherAttendance{}, nil
			}
			return nil, err
		}
		filter.TeacherID = &profile.ID
	}

	return s.repo.ListTeacher(ctx, filter)
}

// StudentStats summarises one student's attendance. Reads are scoped like
// ListStudent: students see only themselves, teachers only their subjects.
func (s *attendanceService) StudentStats(ctx context.Context, studentID uint, actor authz.Actor) (dto.AttendanceStatsResponse, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AttendanceStatsResponse{}, ErrStudentNotFound
		}
		return dto.AttendanceStatsResponse{}, err
	}

	if actor.Role == authz.RoleStudent && !authz.OwnsRecord(actor, student.UserID) {
		return dto.AttendanceStatsResponse{}, ErrStudentNotFound
	}

	filter := repository.AttendanceFilter{StudentID: &studentID}
	if actor.Role == authz.RoleTeacher {
		scoped, ok, err := s.scopeToTeacherSubjects(ctx, actor.ID, &filter)
		if err != nil {
			return dto.AttendanceStatsResponse{}, err
		}
		if !ok {
			return statsFromCounts(nil), nil
		}
		filter = scoped
	}

	counts, err := s.repo.CountStudentByStatus(ctx, filter)
	if err != nil {
		return dto.AttendanceStatsResponse{}, err
	}

	return statsFromCounts(counts), nil
}

// TeacherStats summarises one teacher's attendance; a teacher actor is pinned
// to their own record.
func (s *attendanceService) TeacherStats(ctx context.Context, teacherID uint, actor authz.Actor) (dto.AttendanceStatsResponse, error) {
	teacher, err := s.teachers.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AttendanceStatsResponse{}, ErrTeacherNotFound
		}
		return dto.AttendanceStatsResponse{}, err
	}

	if actor.Role == authz.RoleTeacher && !authz.OwnsRecord(actor, teacher.UserID) {
		return dto.AttendanceStatsResponse{}, ErrTeacherNotFound
	}

	counts, err := s.repo.CountTeacherByStatus(ctx, repository.AttendanceFilter{TeacherID: &teacherID})
	if err != nil {
		return dto.AttendanceStatsResponse{}, err
	}

	return statsFromCounts(counts), nil
}

// scopeToTeacherSubjects narrows the filter to the subjects linked to the
// teacher's profile. ok is false when the scope matches nothing, including a
// requested subject outside the teacher's links.
func (s *attendanceService) scopeToTeacherSubjects(ctx context.Context, userID uint, filter *repository.AttendanceFilter) (repository.AttendanceFilter, bool, error) {
	ids, err := s.teacherSubjectIDs(ctx, userID)
	if err != nil {
		return repository.AttendanceFilter{}, false, err
	}
	if len(ids) == 0 {
		return repository.AttendanceFilter{}, false, nil
	}

	scoped := *filter
	if scoped.SubjectID != nil {
		if !containsID(ids, *scoped.SubjectID) {
			return repository.AttendanceFilter{}, false, nil
		}
		return scoped, true, nil
	}

	scoped.SubjectIDs = ids
	return scoped, true, nil
}

func (s *attendanceService) teacherSubjectIDs(ctx context.Context, userID uint) ([]uint, error) {
	profile, err := s.teachers.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return s.teachers.SubjectIDs(ctx, profile.ID)
}

func statsFromCounts(counts map[models.AttendanceStatus]int64) dto.AttendanceStatsResponse {
	stats := dto.AttendanceStatsResponse{ByStatus: make(map[string]int64, len(counts))}
	for status, count := range counts {
		stats.ByStatus[string(status)] = count
		stats.Total += count
	}
	if stats.Total > 0 {
		attended := counts[models.AttendancePresent] + counts[models.AttendanceLate]
		stats.PresentRate = float64(attended) / float64(stats.Total)
	}
	return stats
}

func containsID(ids []uint, id uint) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// truncateToDate drops the time-of-day component so the natural keys compare
// on calendar dates.
func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
