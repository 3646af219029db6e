package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/darsa-school/darsa-api/internal/authz"
	"github.com/darsa-school/darsa-api/internal/dto"
	"github.com/darsa-school/darsa-api/internal/models"
	"github.com/darsa-school/darsa-api/internal/repository"
)

func newScoreService(t *testing.T, db *gorm.DB) ScoreService {
	t.Helper()
	logger := zerolog.Nop()
	activity := NewActivityService(repository.NewActivityLogRepository(db), logger)
	return NewScoreService(
		repository.NewScoreRepository(db),
		repository.NewStudentRepository(db),
		repository.NewSubjectRepository(db),
		repository.NewTeacherRepository(db),
		newTestValidator(),
		activity,
		logger,
	)
}

// seedTeacherWithSubjects creates a teacher profile linked to the given
// subjects, which is what puts those subjects in the teacher's scope.
func seedTeacherWithSubjects(t *testing.T, db *gorm.DB, username string, subjects ...models.Subject) (models.Teacher, models.User) {
	t.Helper()

	user := seedApprovedUser(t, db, username, authz.RoleTeacher)
	teacher := models.Teacher{UserID: user.ID}
	require.NoError(t, db.Create(&teacher).Error)
	for i := range subjects {
		require.NoError(t, db.Model(&teacher).Association("Subjects").Append(&subjects[i]))
	}

	return teacher, user
}

func seedStudentAndSubject(t *testing.T, db *gorm.DB, username string) (models.Student, models.Subject, models.User) {
	t.Helper()

	user := seedApprovedUser(t, db, username, authz.RoleStudent)
	student := models.Student{UserID: user.ID}
	require.NoError(t, db.Create(&student).Error)

	var semester models.Semester
	if err := db.First(&semester).Error; err != nil {
		semester = models.Semester{Number: 1}
		require.NoError(t, db.Create(&semester).Error)
	}
	subject := models.Subject{Name: "Algebra " + username, SemesterID: semester.ID}
	require.NoError(t, db.Create(&subject).Error)

	return student, subject, user
}

func TestScoreUpsertValidatesRange(t *testing.T) {
	db := setupTestDB(t)
	svc := newScoreService(t, db)
	ctx := context.Background()

	student, subject, _ := seedStudentAndSubject(t, db, "karim")
	_, teacherUser := seedTeacherWithSubjects(t, db, "ostad", subject)
	actor := Actor{ID: teacherUser.ID, Role: string(authz.RoleTeacher)}

	tooHigh := 101
	_, err := svc.Upsert(ctx, dto.ScoreRequest{
		StudentID: student.ID, SubjectID: subject.ID, ExamType: "midterm", Score: &tooHigh,
	}, actor)
	require.ErrorIs(t, err, ErrScoreOutOfRange)

	negative := -1
	_, err = svc.Upsert(ctx, dto.ScoreRequest{
		StudentID: student.ID, SubjectID: subject.ID, ExamType: "midterm", Score: &negative,
	}, actor)
	require.ErrorIs(t, err, ErrScoreOutOfRange)

	_, err = svc.Upsert(ctx, dto.ScoreRequest{
		StudentID: student.ID, SubjectID: subject.ID, ExamType: "oral", Score: nil,
	}, actor)
	require.ErrorIs(t, err, ErrInvalidExamType)

	// Boundary values and the ungraded null are all accepted.
	zero := 0
	hundred := 100
	for _, score := range []*int{&zero, &hundred, nil} {
		resp, err := svc.Upsert(ctx, dto.ScoreRequest{
			StudentID: student.ID, SubjectID: subject.ID, ExamType: "midterm", Score: score,
		}, actor)
		require.NoError(t, err)
		require.Equal(t, score == nil, resp.Score == nil)
	}
}

func TestScoreUpsertOverwritesSameKey(t *testing.T) {
	db := setupTestDB(t)
	svc := newScoreService(t, db)
	ctx := context.Background()

	student, subject, _ := seedStudentAndSubject(t, db, "karim")
	_, teacherUser := seedTeacherWithSubjects(t, db, "ostad", subject)
	actor := Actor{ID: teacherUser.ID, Role: string(authz.RoleTeacher)}

	first := 70
	created, err := svc.Upsert(ctx, dto.ScoreRequest{
		StudentID: student.ID, SubjectID: subject.ID, ExamType: "final", Score: &first,
	}, actor)
	require.NoError(t, err)
	require.Equal(t, "C", created.LetterGrade)

	second := 92
	updated, err := svc.Upsert(ctx, dto.ScoreRequest{
		StudentID: student.ID, SubjectID: subject.ID, ExamType: "final", Score: &second,
	}, actor)
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, "A", updated.LetterGrade)
	require.True(t, updated.IsPassing)

	var count int64
	require.NoError(t, db.Model(&models.StudentScore{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestScoreBulkCreateIsNotAtomic(t *testing.T) {
	db := setupTestDB(t)
	svc := newScoreService(t, db)
	ctx := context.Background()

	student, subject, _ := seedStudentAndSubject(t, db, "karim")
	_, teacherUser := seedTeacherWithSubjects(t, db, "ostad", subject)
	actor := Actor{ID: teacherUser.ID, Role: string(authz.RoleTeacher)}

	good1, good2, good3 := 55, 65, 75
	bad := 150

	result, err := svc.BulkCreate(ctx, dto.ScoreBulkRequest{Scores: []dto.ScoreRequest{
		{StudentID: student.ID, SubjectID: subject.ID, ExamType: "quiz", Score: &good1},
		{StudentID: student.ID, SubjectID: subject.ID, ExamType: "midterm", Score: &bad},
		{StudentID: student.ID, SubjectID: subject.ID, ExamType: "final", Score: &good2},
		{StudentID: 9999, SubjectID: subject.ID, ExamType: "final", Score: &good2},
		{StudentID: student.ID, SubjectID: subject.ID, ExamType: "assignment", Score: &good3},
	}}, actor)
	require.NoError(t, err)
	require.Len(t, result.Created, 3)
	require.Len(t, result.Errors, 2)
	require.Equal(t, 1, result.Errors[0].Index)
	require.Equal(t, 3, result.Errors[1].Index)

	var count int64
	require.NoError(t, db.Model(&models.StudentScore{}).Count(&count).Error)
	require.Equal(t, int64(3), count, "valid items persist despite failing neighbours")
}

func TestListByStudentScopesStudents(t *testing.T) {
	db := setupTestDB(t)
	svc := newScoreService(t, db)
	ctx := context.Background()

	student, subject, owner := seedStudentAndSubject(t, db, "karim")
	other, _, otherUser := seedStudentAndSubject(t, db, "sara")

	_, teacherUser := seedTeacherWithSubjects(t, db, "ostad", subject)
	score := 88
	_, err := svc.Upsert(ctx, dto.ScoreRequest{
		StudentID: student.ID, SubjectID: subject.ID, ExamType: "final", Score: &score,
	}, Actor{ID: teacherUser.ID, Role: string(authz.RoleTeacher)})
	require.NoError(t, err)

	// The owner reads their own scores.
	scores, err := svc.ListByStudent(ctx, student.ID, authz.Actor{ID: owner.ID, Role: authz.RoleStudent})
	require.NoError(t, err)
	require.Len(t, scores, 1)

	// Another student asking for the same records sees "not found".
	_, err = svc.ListByStudent(ctx, student.ID, authz.Actor{ID: otherUser.ID, Role: authz.RoleStudent})
	require.ErrorIs(t, err, ErrStudentNotFound)

	// Staff are not pinned to ownership.
	scores, err = svc.ListByStudent(ctx, other.ID, authz.Actor{ID: 1, Role: authz.RoleSuperAdmin})
	require.NoError(t, err)
	require.Empty(t, scores)
}

func TestTeacherScopeConfinesScoreAccess(t *testing.T) {
	db := setupTestDB(t)
	svc := newScoreService(t, db)
	ctx := context.Background()

	student, subject, _ := seedStudentAndSubject(t, db, "karim")

	_, linkedUser := seedTeacherWithSubjects(t, db, "ostad", subject)
	linked := Actor{ID: linkedUser.ID, Role: string(authz.RoleTeacher)}
	_, unlinkedUser := seedTeacherWithSubjects(t, db, "moalem")
	unlinked := Actor{ID: unlinkedUser.ID, Role: string(authz.RoleTeacher)}

	score := 77
	req := dto.ScoreRequest{StudentID: student.ID, SubjectID: subject.ID, ExamType: "final", Score: &score}

	// A teacher without a link to the subject may neither write nor read it.
	_, err := svc.Upsert(ctx, req, unlinked)
	require.ErrorIs(t, err, ErrScoreScopeDenied)

	_, err = svc.Upsert(ctx, req, linked)
	require.NoError(t, err)

	rows, err := svc.ListByStudent(ctx, student.ID, authz.Actor{ID: unlinkedUser.ID, Role: authz.RoleTeacher})
	require.NoError(t, err)
	require.Empty(t, rows, "an unrelated student's scores stay out of reach")

	rows, err = svc.ListByStudent(ctx, student.ID, authz.Actor{ID: linkedUser.ID, Role: authz.RoleTeacher})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	_, err = svc.ListBySubject(ctx, subject.ID, authz.Actor{ID: unlinkedUser.ID, Role: authz.RoleTeacher})
	require.ErrorIs(t, err, ErrSubjectNotFound)

	rows, err = svc.ListBySubject(ctx, subject.ID, authz.Actor{ID: linkedUser.ID, Role: authz.RoleTeacher})
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestReportCardAggregatesPerSubject(t *testing.T) {
	db := setupTestDB(t)
	svc := newScoreService(t, db)
	ctx := context.Background()

	student, algebra, owner := seedStudentAndSubject(t, db, "karim")
	var semester models.Semester
	require.NoError(t, db.First(&semester).Error)
	history := models.Subject{Name: "History", SemesterID: semester.ID}
	require.NoError(t, db.Create(&history).Error)

	_, teacherUser := seedTeacherWithSubjects(t, db, "ostad", algebra, history)
	actor := Actor{ID: teacherUser.ID, Role: string(authz.RoleTeacher)}

	eighty, ninety := 80, 90
	for _, req := range []dto.ScoreRequest{
		{StudentID: student.ID, SubjectID: algebra.ID, ExamType: "midterm", Score: &eighty},
		{StudentID: student.ID, SubjectID: algebra.ID, ExamType: "final", Score: &ninety},
		{StudentID: student.ID, SubjectID: history.ID, ExamType: "quiz", Score: nil},
	} {
		_, err := svc.Upsert(ctx, req, actor)
		require.NoError(t, err)
	}

	report, err := svc.ReportCard(ctx, student.ID, authz.Actor{ID: owner.ID, Role: authz.RoleStudent})
	require.NoError(t, err)
	require.Equal(t, student.ID, report.StudentID)
	require.Len(t, report.Subjects, 2)

	require.NotNil(t, report.Average)
	require.InDelta(t, 85.0, *report.Average, 0.001, "ungraded rows stay out of the average")
	require.Equal(t, "B", report.LetterGrade)
	require.True(t, report.IsPassing)

	for _, subject := range report.Subjects {
		if subject.SubjectID == history.ID {
			require.Nil(t, subject.Average)
		} else {
			require.NotNil(t, subject.Average)
			require.InDelta(t, 85.0, *subject.Average, 0.001)
		}
	}
}
