package service

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/darsa-school/darsa-api/internal/models"
	"github.com/darsa-school/darsa-api/internal/repository"
)

// Actor identifies the authenticated caller of a workflow operation. It is
// passed explicitly; services never read an ambient request-context user.
type Actor struct {
	ID   uint
	Role string
}

// ActivityEntry captures the details required to persist an audit entry.
type ActivityEntry struct {
	ActorID    uint
	ActorRole  string
	Action     string
	EntityType string
	EntityID   *uint
	Metadata   map[string]interface{}
}

// ActivityRecorder records audit-trail entries. Recording failures are logged
// but never fail the operation being audited.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry)
}

// ActivityService records and lists the administrative audit trail.
type ActivityService interface {
	ActivityRecorder
	List(ctx context.Context, action string, limit int) ([]models.ActivityLog, error)
}

type activityService struct {
	repo   repository.ActivityLogRepository
	logger zerolog.Logger
}

// NewActivityService constructs the activity log service.
func NewActivityService(repo repository.ActivityLogRepository, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:   repo,
		logger: logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) {
	metadata := datatypes.JSONMap{}
	for key, value := range entry.Metadata {
		metadata[key] = value
	}

	row := models.ActivityLog{
		ActorID:    entry.ActorID,
		ActorRole:  entry.ActorRole,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Metadata:   metadata,
	}

	if err := s.repo.Create(ctx, &row); err != nil {
		s.logger.Error().Err(err).Str("action", entry.Action).Msg("failed to record activity")
	}
}

func (s *activityService) List(ctx context.Context, action string, limit int) ([]models.ActivityLog, error) {
	return s.repo.List(ctx, action, limit)
}
