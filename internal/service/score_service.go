package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/darsa-school/darsa-api/internal/authz"
	"github.com/darsa-school/darsa-api/internal/dto"
	"github.com/darsa-school/darsa-api/internal/models"
	"github.com/darsa-school/darsa-api/internal/repository"
)

// Sentinel errors for grade records.
var (
	ErrStudentNotFound  = errors.New("student not found")
	ErrScoreNotFound    = errors.New("score not found")
	ErrScoreOutOfRange  = errors.New("score must be between 0 and 100")
	ErrInvalidExamType  = errors.New("invalid exam type")
	ErrScoreScopeDenied = errors.New("not allowed to access these scores")
)

// ScoreService writes and reads grade records. Writes upsert against the
// (student, subject, exam_type) natural key, so repeated writes update the
// existing row instead of duplicating it. Teacher actors are confined to the
// subjects linked to their profile, for reads and writes alike.
type ScoreService interface {
	Upsert(ctx context.Context, req dto.ScoreRequest, actor Actor) (dto.ScoreResponse, error)
	BulkCreate(ctx context.Context, req dto.ScoreBulkRequest, actor Actor) (dto.ScoreBulkResponse, error)
	ListByStudent(ctx context.Context, studentID uint, actor authz.Actor) ([]dto.ScoreResponse, error)
	ListBySubject(ctx context.Context, subjectID uint, actor authz.Actor) ([]dto.ScoreResponse, error)
	ReportCard(ctx context.Context, studentID uint, actor authz.Actor) (dto.ReportCardResponse, error)
	Delete(ctx context.Context, id uint, actor Actor) error
}

type scoreService struct {
	repo      repository.ScoreRepository
	students  repository.StudentRepository
	subjects  repository.SubjectRepository
	teachers  repository.TeacherRepository
	validator *validator.Validate
	activity  ActivityRecorder
	logger    zerolog.Logger
}

// NewScoreService constructs the score service.
func NewScoreService(
	repo repository.ScoreRepository,
	students repository.StudentRepository,
	subjects repository.SubjectRepository,
	teachers repository.TeacherRepository,
	validate *validator.Validate,
	activity ActivityRecorder,
	logger zerolog.Logger,
) ScoreService {
	return &scoreService{
		repo:      repo,
		students:  students,
		subjects:  subjects,
		teachers:  teachers,
		validator: validate,
		activity:  activity,
		logger:    logger.With().Str("component", "score_service").Logger(),
	}
}

func (s *scoreService) Upsert(ctx context.Context, req dto.ScoreRequest, actor Actor) (dto.ScoreResponse, error) {
	score, err := s.validateAndBuild(ctx, req, actor)
	if err != nil {
		return dto.ScoreResponse{}, err
	}

	stored, err := s.repo.Upsert(ctx, &score)
	if err != nil {
		return dto.ScoreResponse{}, err
	}

	s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     "score.written",
		EntityType: "student_score",
		EntityID:   &stored.ID,
		Metadata: map[string]interface{}{
			"student_id": stored.StudentID,
			"subject_id": stored.SubjectID,
			"exam_type":  string(stored.ExamType),
		},
	})

	return dto.NewScoreResponse(stored), nil
}

// BulkCreate validates and commits each entry independently. A failing item
// is reported in the per-item error list and never rolls back the others.
func (s *scoreService) BulkCreate(ctx context.Context, req dto.ScoreBulkRequest, actor Actor) (dto.ScoreBulkResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ScoreBulkResponse{}, err
	}

	response := dto.ScoreBulkResponse{
		Created: make([]dto.ScoreResponse, 0, len(req.Scores)),
		Errors:  make([]dto.ScoreBulkItemError, 0),
	}

	for i, item := range req.Scores {
		score, err := s.validateAndBuild(ctx, item, actor)
		if err != nil {
			response.Errors = append(response.Errors, dto.ScoreBulkItemError{Index: i, Error: err.Error()})
			continue
		}

		stored, err := s.repo.Upsert(ctx, &score)
		if err != nil {
			response.Errors = append(response.Errors, dto.ScoreBulkItemError{Index: i, Error: err.Error()})
			continue
		}

		response.Created = append(response.Created, dto.NewScoreResponse(stored))
	}

	s.logger.Info().
		Int("created", len(response.Created)).
		Int("failed", len(response.Errors)).
		Msg("bulk score write completed")

	return response, nil
}

// ListByStudent scopes reads: students only see their own scores, teachers
// only the rows in subjects they teach; an out-of-scope student id is
// reported as not found.
func (s *scoreService) ListByStudent(ctx context.Context, studentID uint, actor authz.Actor) ([]dto.ScoreResponse, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	if actor.Role == authz.RoleStudent && !authz.OwnsRecord(actor, student.UserID) {
		return nil, ErrStudentNotFound
	}

	subjectScope, err := s.subjectScopeFor(ctx, actor)
	if err != nil {
		return nil, err
	}

	scores, err := s.repo.ListByStudent(ctx, studentID, subjectScope)
	if err != nil {
		return nil, err
	}

	return scoreResponses(scores), nil
}

// ListBySubject hides subjects a teacher is not linked to, indistinguishably
// from absent ones.
func (s *scoreService) ListBySubject(ctx context.Context, subjectID uint, actor authz.Actor) ([]dto.ScoreResponse, error) {
	if actor.Role == authz.RoleTeacher {
		taught, err := s.teacherTeaches(ctx, actor.ID, subjectID)
		if err != nil {
			return nil, err
		}
		if !taught {
			return nil, ErrSubjectNotFound
		}
	}

	scores, err := s.repo.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	return scoreResponses(scores), nil
}

// ReportCard aggregates a student's scores per subject, with the overall
// average graded on the same scale as individual scores. It applies the same
// read scoping as ListByStudent.
func (s *scoreService) ReportCard(ctx context.Context, studentID uint, actor authz.Actor) (dto.ReportCardResponse, error) {
	scores, err := s.ListByStudent(ctx, studentID, actor)
	if err != nil {
		return dto.ReportCardResponse{}, err
	}

	return dto.NewReportCardResponse(studentID, scores), nil
}

func (s *scoreService) Delete(ctx context.Context, id uint, actor Actor) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrScoreNotFound
		}
		return err
	}

	s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     "score.deleted",
		EntityType: "student_score",
		EntityID:   &id,
	})

	return nil
}

func (s *scoreService) validateAndBuild(ctx context.Context, req dto.ScoreRequest, actor Actor) (models.StudentScore, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.StudentScore{}, err
	}

	examType := models.ExamType(req.ExamType)
	if !examType.IsValid() {
		return models.StudentScore{}, fmt.Errorf("%w: %s", ErrInvalidExamType, req.ExamType)
	}

	// A nil score is valid ("not yet graded"); a present one must be in range.
	if req.Score != nil && (*req.Score < 0 || *req.Score > 100) {
		return models.StudentScore{}, ErrScoreOutOfRange
	}

	if _, err := s.students.GetByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.StudentScore{}, ErrStudentNotFound
		}
		return models.StudentScore{}, err
	}

	if _, err := s.subjects.GetByID(ctx, req.SubjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.StudentScore{}, ErrSubjectNotFound
		}
		return models.StudentScore{}, err
	}

	if actor.Role == string(authz.RoleTeacher) {
		taught, err := s.teacherTeaches(ctx, actor.ID, req.SubjectID)
		if err != nil {
			return models.StudentScore{}, err
		}
		if !taught {
			return models.StudentScore{}, ErrScoreScopeDenied
		}
	}

	enteredBy := actor.ID
	return models.StudentScore{
		StudentID:   req.StudentID,
		SubjectID:   req.SubjectID,
		ExamType:    examType,
		Score:       req.Score,
		ExamDate:    req.ExamDate,
		Remarks:     req.Remarks,
		EnteredByID: &enteredBy,
	}, nil
}

// subjectScopeFor returns the subject ids a teacher actor may read, or nil
// when no restriction applies. A teacher with no subject links gets an empty
// non-nil scope that matches nothing.
func (s *scoreService) subjectScopeFor(ctx context.Context, actor authz.Actor) ([]uint, error) {
	if actor.Role != authz.RoleTeacher {
		return nil, nil
	}

	ids, err := s.teacherSubjectIDs(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []uint{}
	}
	return ids, nil
}

func (s *scoreService) teacherTeaches(ctx context.Context, userID, subjectID uint) (bool, error) {
	ids, err := s.teacherSubjectIDs(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == subjectID {
			return true, nil
		}
	}
	return false, nil
}

func (s *scoreService) teacherSubjectIDs(ctx context.Context, userID uint) ([]uint, error) {
	profile, err := s.teachers.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return s.teachers.SubjectIDs(ctx, profile.ID)
}

func scoreResponses(scores []models.StudentScore) []dto.ScoreResponse {
	responses := make([]dto.ScoreResponse, 0, len(scores))
	for _, score := range scores {
		responses = append(responses, dto.NewScoreResponse(score))
	}
	return responses
}
