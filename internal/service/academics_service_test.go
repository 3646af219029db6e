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

func newAcademicsService(t *testing.T, db *gorm.DB) AcademicsService {
	t.Helper()
	return NewAcademicsService(
		repository.NewSemesterRepository(db),
		repository.NewClassRepository(db),
		repository.NewSubjectRepository(db),
		repository.NewStudentRepository(db),
		newTestValidator(),
		zerolog.Nop(),
	)
}

func TestSemesterUniqueNumber(t *testing.T) {
	db := setupTestDB(t)
	svc := newAcademicsService(t, db)
	ctx := context.Background()

	_, err := svc.CreateSemester(ctx, dto.SemesterRequest{Number: 1, Name: "First"})
	require.NoError(t, err)

	_, err = svc.CreateSemester(ctx, dto.SemesterRequest{Number: 1, Name: "Duplicate"})
	require.ErrorIs(t, err, ErrDuplicateTaxonomyKey)
}

func TestSubjectRequiresExistingSemester(t *testing.T) {
	db := setupTestDB(t)
	svc := newAcademicsService(t, db)
	ctx := context.Background()

	_, err := svc.CreateSubject(ctx, dto.SubjectRequest{Name: "Algebra", SemesterID: 99})
	require.ErrorIs(t, err, ErrSemesterNotFound)

	semester, err := svc.CreateSemester(ctx, dto.SemesterRequest{Number: 1})
	require.NoError(t, err)

	subject, err := svc.CreateSubject(ctx, dto.SubjectRequest{Name: "Algebra", SemesterID: semester.ID})
	require.NoError(t, err)
	require.Equal(t, uint(3), subject.Credits, "credits default to 3")
}

func TestAssignStudentClassCrossValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := newAcademicsService(t, db)
	ctx := context.Background()

	semester1, err := svc.CreateSemester(ctx, dto.SemesterRequest{Number: 1})
	require.NoError(t, err)
	semester2, err := svc.CreateSemester(ctx, dto.SemesterRequest{Number: 2})
	require.NoError(t, err)

	class, err := svc.CreateClass(ctx, dto.ClassRequest{Name: "1-A", SemesterID: &semester1.ID})
	require.NoError(t, err)

	user := seedApprovedUser(t, db, "karim", authz.RoleStudent)
	student := models.Student{UserID: user.ID}
	require.NoError(t, db.Create(&student).Error)

	// A semester that disagrees with the class's own semester is rejected.
	_, err = svc.AssignStudentClass(ctx, student.ID, &class.ID, &semester2.ID)
	require.ErrorIs(t, err, ErrClassSemesterMismatch)

	// Omitting the semester inherits it from the class.
	assigned, err := svc.AssignStudentClass(ctx, student.ID, &class.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, assigned.SchoolClassID)
	require.Equal(t, class.ID, *assigned.SchoolClassID)
	require.NotNil(t, assigned.SemesterID)
	require.Equal(t, semester1.ID, *assigned.SemesterID)

	// Clearing the assignment is allowed.
	cleared, err := svc.AssignStudentClass(ctx, student.ID, nil, nil)
	require.NoError(t, err)
	require.Nil(t, cleared.SchoolClassID)
	require.Nil(t, cleared.SemesterID)

	_, err = svc.AssignStudentClass(ctx, 9999, &class.ID, nil)
	require.ErrorIs(t, err, ErrStudentNotFound)
}
