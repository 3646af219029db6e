package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/darsa-school/darsa-api/internal/authz"
	"github.com/darsa-school/darsa-api/internal/dto"
	"github.com/darsa-school/darsa-api/internal/models"
	"github.com/darsa-school/darsa-api/internal/repository"
)

func newAttendanceService(t *testing.T, db *gorm.DB) AttendanceService {
	t.Helper()
	logger := zerolog.Nop()
	activity := NewActivityService(repository.NewActivityLogRepository(db), logger)
	return NewAttendanceService(
		repository.NewAttendanceRepository(db),
		repository.NewStudentRepository(db),
		repository.NewTeacherRepository(db),
		newTestValidator(),
		activity,
		logger,
	)
}

func TestMarkStudentValidatesStatus(t *testing.T) {
	db := setupTestDB(t)
	svc := newAttendanceService(t, db)
	ctx := context.Background()

	user := seedApprovedUser(t, db, "karim", authz.RoleStudent)
	student := models.Student{UserID: user.ID}
	require.NoError(t, db.Create(&student).Error)

	clerk := seedApprovedUser(t, db, "clerk", authz.RoleAdmin)
	actor := Actor{ID: clerk.ID, Role: string(authz.RoleAdmin)}
	day := time.Date(2026, 3, 9, 10, 30, 0, 0, time.UTC)

	// "leave" is a teacher status, not a student one.
	_, err := svc.MarkStudent(ctx, dto.StudentAttendanceRequest{
		StudentID: student.ID, Date: day, Status: "leave",
	}, actor)
	require.ErrorIs(t, err, ErrInvalidAttendanceStatus)

	record, err := svc.MarkStudent(ctx, dto.StudentAttendanceRequest{
		StudentID: student.ID, Date: day, Status: "excused",
	}, actor)
	require.NoError(t, err)
	require.Equal(t, models.AttendanceExcused, record.Status)
	require.Equal(t, 0, record.Date.Hour(), "time of day is dropped from the key")

	// Marking the same day again overwrites, not duplicates.
	again, err := svc.MarkStudent(ctx, dto.StudentAttendanceRequest{
		StudentID: student.ID, Date: day.Add(2 * time.Hour), Status: "present",
	}, actor)
	require.NoError(t, err)
	require.Equal(t, record.ID, again.ID)
	require.Equal(t, models.AttendancePresent, again.Status)

	_, err = svc.MarkStudent(ctx, dto.StudentAttendanceRequest{
		StudentID: 9999, Date: day, Status: "present",
	}, actor)
	require.ErrorIs(t, err, ErrStudentNotFound)
}

func TestMarkTeacherValidatesStatus(t *testing.T) {
	db := setupTestDB(t)
	svc := newAttendanceService(t, db)
	ctx := context.Background()

	user := seedApprovedUser(t, db, "ostad", authz.RoleTeacher)
	teacher := models.Teacher{UserID: user.ID}
	require.NoError(t, db.Create(&teacher).Error)

	admin := seedApprovedUser(t, db, "clerk", authz.RoleAdmin)
	actor := Actor{ID: admin.ID, Role: string(authz.RoleAdmin)}
	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	// "excused" is a student status, not a teacher one.
	_, err := svc.MarkTeacher(ctx, dto.TeacherAttendanceRequest{
		TeacherID: teacher.ID, Date: day, Status: "excused",
	}, actor)
	require.ErrorIs(t, err, ErrInvalidAttendanceStatus)

	record, err := svc.MarkTeacher(ctx, dto.TeacherAttendanceRequest{
		TeacherID: teacher.ID, Date: day, Status: "leave",
	}, actor)
	require.NoError(t, err)
	require.Equal(t, models.AttendanceLeave, record.Status)
}

func TestListStudentAttendanceScopesStudents(t *testing.T) {
	db := setupTestDB(t)
	svc := newAttendanceService(t, db)
	ctx := context.Background()

	ownerUser := seedApprovedUser(t, db, "karim", authz.RoleStudent)
	owner := models.Student{UserID: ownerUser.ID}
	require.NoError(t, db.Create(&owner).Error)

	otherUser := seedApprovedUser(t, db, "sara", authz.RoleStudent)
	other := models.Student{UserID: otherUser.ID}
	require.NoError(t, db.Create(&other).Error)

	clerk := seedApprovedUser(t, db, "clerk", authz.RoleAdmin)
	actor := Actor{ID: clerk.ID, Role: string(authz.RoleAdmin)}
	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	_, err := svc.MarkStudent(ctx, dto.StudentAttendanceRequest{StudentID: owner.ID, Date: day, Status: "present"}, actor)
	require.NoError(t, err)

	// A student asking for someone else's records is pinned to their own.
	records, err := svc.ListStudent(ctx, dto.AttendanceListRequest{StudentID: &owner.ID}, authz.Actor{ID: otherUser.ID, Role: authz.RoleStudent})
	require.NoError(t, err)
	require.Empty(t, records)

	records, err = svc.ListStudent(ctx, dto.AttendanceListRequest{}, authz.Actor{ID: ownerUser.ID, Role: authz.RoleStudent})
	require.NoError(t, err)
	require.Len(t, records, 1)

	// Staff see the requested student's records directly.
	records, err = svc.ListStudent(ctx, dto.AttendanceListRequest{StudentID: &owner.ID}, authz.Actor{ID: 1, Role: authz.RoleSuperAdmin})
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestTeacherAttendanceScope(t *testing.T) {
	db := setupTestDB(t)
	svc := newAttendanceService(t, db)
	ctx := context.Background()

	student, subject, _ := seedStudentAndSubject(t, db, "karim")
	_, linkedUser := seedTeacherWithSubjects(t, db, "ostad", subject)
	linked := Actor{ID: linkedUser.ID, Role: string(authz.RoleTeacher)}
	_, unlinkedUser := seedTeacherWithSubjects(t, db, "moalem")
	unlinked := Actor{ID: unlinkedUser.ID, Role: string(authz.RoleTeacher)}

	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	// Day-level marks without a subject are a staff operation.
	_, err := svc.MarkStudent(ctx, dto.StudentAttendanceRequest{
		StudentID: student.ID, Date: day, Status: "present",
	}, linked)
	require.ErrorIs(t, err, ErrAttendanceScopeDenied)

	// Marking inside a subject the teacher is not linked to is denied.
	_, err = svc.MarkStudent(ctx, dto.StudentAttendanceRequest{
		StudentID: student.ID, Date: day, Status: "present", SubjectID: &subject.ID,
	}, unlinked)
	require.ErrorIs(t, err, ErrAttendanceScopeDenied)

	record, err := svc.MarkStudent(ctx, dto.StudentAttendanceRequest{
		StudentID: student.ID, Date: day, Status: "present", SubjectID: &subject.ID,
	}, linked)
	require.NoError(t, err)
	require.Equal(t, models.AttendancePresent, record.Status)

	// Reads follow the same scope.
	records, err := svc.ListStudent(ctx, dto.AttendanceListRequest{StudentID: &student.ID}, authz.Actor{ID: linkedUser.ID, Role: authz.RoleTeacher})
	require.NoError(t, err)
	require.Len(t, records, 1)

	records, err = svc.ListStudent(ctx, dto.AttendanceListRequest{StudentID: &student.ID}, authz.Actor{ID: unlinkedUser.ID, Role: authz.RoleTeacher})
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestBulkMarkStudentsReportsPerItem(t *testing.T) {
	db := setupTestDB(t)
	svc := newAttendanceService(t, db)
	ctx := context.Background()

	student, _, _ := seedStudentAndSubject(t, db, "karim")
	other, _, _ := seedStudentAndSubject(t, db, "sara")

	clerk := seedApprovedUser(t, db, "clerk", authz.RoleAdmin)
	actor := Actor{ID: clerk.ID, Role: string(authz.RoleAdmin)}
	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	result, err := svc.BulkMarkStudents(ctx, dto.StudentAttendanceBulkRequest{Records: []dto.StudentAttendanceRequest{
		{StudentID: student.ID, Date: day, Status: "present"},
		{StudentID: 9999, Date: day, Status: "present"},
		{StudentID: other.ID, Date: day, Status: "leave"},
		{StudentID: other.ID, Date: day, Status: "absent"},
	}}, actor)
	require.NoError(t, err)
	require.Equal(t, 2, result.Marked)
	require.Len(t, result.Errors, 2)
	require.Equal(t, 1, result.Errors[0].Index)
	require.Equal(t, 2, result.Errors[1].Index)

	var count int64
	require.NoError(t, db.Model(&models.StudentAttendance{}).Count(&count).Error)
	require.Equal(t, int64(2), count, "valid items persist despite failing neighbours")
}

func TestAttendanceStatsSummarise(t *testing.T) {
	db := setupTestDB(t)
	svc := newAttendanceService(t, db)
	ctx := context.Background()

	student, _, ownerUser := seedStudentAndSubject(t, db, "karim")
	clerk := seedApprovedUser(t, db, "clerk", authz.RoleAdmin)
	actor := Actor{ID: clerk.ID, Role: string(authz.RoleAdmin)}

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for i, status := range []string{"present", "present", "late", "absent"} {
		_, err := svc.MarkStudent(ctx, dto.StudentAttendanceRequest{
			StudentID: student.ID, Date: day.AddDate(0, 0, i), Status: status,
		}, actor)
		require.NoError(t, err)
	}

	stats, err := svc.StudentStats(ctx, student.ID, authz.Actor{ID: ownerUser.ID, Role: authz.RoleStudent})
	require.NoError(t, err)
	require.Equal(t, int64(4), stats.Total)
	require.Equal(t, int64(2), stats.ByStatus["present"])
	require.Equal(t, int64(1), stats.ByStatus["late"])
	require.Equal(t, int64(1), stats.ByStatus["absent"])
	require.InDelta(t, 0.75, stats.PresentRate, 0.001, "late still counts as attended")

	// A student asking about someone else's stats sees "not found".
	otherUser := seedApprovedUser(t, db, "sara", authz.RoleStudent)
	_, err = svc.StudentStats(ctx, student.ID, authz.Actor{ID: otherUser.ID, Role: authz.RoleStudent})
	require.ErrorIs(t, err, ErrStudentNotFound)
}

func TestTeacherStatsPinnedToOwnRecord(t *testing.T) {
	db := setupTestDB(t)
	svc := newAttendanceService(t, db)
	ctx := context.Background()

	teacher, teacherUser := seedTeacherWithSubjects(t, db, "ostad")
	otherTeacher, _ := seedTeacherWithSubjects(t, db, "moalem")

	clerk := seedApprovedUser(t, db, "clerk", authz.RoleAdmin)
	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	_, err := svc.MarkTeacher(ctx, dto.TeacherAttendanceRequest{
		TeacherID: teacher.ID, Date: day, Status: "present",
	}, Actor{ID: clerk.ID, Role: string(authz.RoleAdmin)})
	require.NoError(t, err)

	stats, err := svc.TeacherStats(ctx, teacher.ID, authz.Actor{ID: teacherUser.ID, Role: authz.RoleTeacher})
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.Total)

	_, err = svc.TeacherStats(ctx, otherTeacher.ID, authz.Actor{ID: teacherUser.ID, Role: authz.RoleTeacher})
	require.ErrorIs(t, err, ErrTeacherNotFound)
}
