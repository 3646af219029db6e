package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/darsa-school/darsa-api/internal/authz"
	"github.com/darsa-school/darsa-api/internal/dto"
	"github.com/darsa-school/darsa-api/internal/models"
	"github.com/darsa-school/darsa-api/internal/repository"
)

// Sentinel errors for permission grid operations.
var (
	ErrPermissionAdminNotFound = errors.New("permission target admin not found")
	ErrPermissionNotAdmin      = errors.New("permissions can only be granted to admin accounts")
	ErrUnknownPermission       = errors.New("unknown permission type")
)

// PermissionService manages the per-admin capability grid and answers
// capability checks for the authorization gate.
type PermissionService interface {
	HasPermission(ctx context.Context, userID uint, role authz.Role, perm authz.Permission) (bool, error)
	ActorFor(ctx context.Context, userID uint, role authz.Role) (authz.Actor, error)
	Grant(ctx context.Context, req dto.PermissionGrantRequest, actor Actor) (dto.PermissionResponse, error)
	BulkSet(ctx context.Context, req dto.PermissionBulkRequest, actor Actor) (dto.PermissionBulkResponse, error)
	ListByAdmin(ctx context.Context, adminID uint) ([]dto.PermissionResponse, error)
	List(ctx context.Context) ([]dto.PermissionResponse, error)
}

type permissionService struct {
	repo     repository.PermissionRepository
	users    repository.UserRepository
	activity ActivityRecorder
	logger   zerolog.Logger
}

// NewPermissionService constructs the permission grid service.
func NewPermissionService(repo repository.PermissionRepository, users repository.UserRepository, activity ActivityRecorder, logger zerolog.Logger) PermissionService {
	return &permissionService{
		repo:     repo,
		users:    users,
		activity: activity,
		logger:   logger.With().Str("component", "permission_service").Logger(),
	}
}

// HasPermission answers the grid lookup behind the gate: super admins always
// pass, admins need a granted row, every other role fails.
func (s *permissionService) HasPermission(ctx context.Context, userID uint, role authz.Role, perm authz.Permission) (bool, error) {
	switch role {
	case authz.RoleSuperAdmin:
		return true, nil
	case authz.RoleAdmin:
		return s.repo.Has(ctx, userID, perm)
	default:
		return false, nil
	}
}

// ActorFor loads the actor's grid grants so the gate can decide without
// further I/O. Non-admin roles carry no grants.
func (s *permissionService) ActorFor(ctx context.Context, userID uint, role authz.Role) (authz.Actor, error) {
	actor := authz.Actor{ID: userID, Role: role}
	if role != authz.RoleAdmin {
		return actor, nil
	}

	grants, err := s.repo.GrantsFor(ctx, userID)
	if err != nil {
		return authz.Actor{}, err
	}
	actor.Grants = grants

	return actor, nil
}

func (s *permissionService) Grant(ctx context.Context, req dto.PermissionGrantRequest, actor Actor) (dto.PermissionResponse, error) {
	perm, err := authz.ParsePermission(req.PermissionType)
	if err != nil {
		return dto.PermissionResponse{}, fmt.Errorf("%w: %s", ErrUnknownPermission, req.PermissionType)
	}

	if err := s.requireAdminTarget(ctx, req.AdminID); err != nil {
		return dto.PermissionResponse{}, err
	}

	row, err := s.repo.Upsert(ctx, req.AdminID, perm, req.IsGranted, actor.ID)
	if err != nil {
		return dto.PermissionResponse{}, err
	}

	s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     "permission.set",
		EntityType: "admin_permission",
		EntityID:   &row.ID,
		Metadata: map[string]interface{}{
			"admin_id":        req.AdminID,
			"permission_type": string(perm),
			"is_granted":      req.IsGranted,
		},
	})

	return dto.NewPermissionResponse(row), nil
}

// BulkSet applies each item through the same upsert. Items fail independently
// and the batch never aborts: callers inspect the per-item error list.
func (s *permissionService) BulkSet(ctx context.Context, req dto.PermissionBulkRequest, actor Actor) (dto.PermissionBulkResponse, error) {
	if err := s.requireAdminTarget(ctx, req.AdminID); err != nil {
		return dto.PermissionBulkResponse{}, err
	}

	response := dto.PermissionBulkResponse{
		Updated: make([]dto.PermissionResponse, 0, len(req.Permissions)),
		Errors:  make([]dto.PermissionBulkItemError, 0),
	}

	for i, item := range req.Permissions {
		perm, err := authz.ParsePermission(item.PermissionType)
		if err != nil {
			response.Errors = append(response.Errors, dto.PermissionBulkItemError{
				Index:          i,
				PermissionType: item.PermissionType,
				Error:          err.Error(),
			})
			continue
		}

		row, err := s.repo.Upsert(ctx, req.AdminID, perm, item.IsGranted, actor.ID)
		if err != nil {
			response.Errors = append(response.Errors, dto.PermissionBulkItemError{
				Index:          i,
				PermissionType: item.PermissionType,
				Error:          err.Error(),
			})
			continue
		}

		response.Updated = append(response.Updated, dto.NewPermissionResponse(row))
	}

	s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     "permission.bulk_set",
		EntityType: "admin_permission",
		Metadata: map[string]interface{}{
			"admin_id": req.AdminID,
			"updated":  len(response.Updated),
			"failed":   len(response.Errors),
		},
	})

	return response, nil
}

func (s *permissionService) ListByAdmin(ctx context.Context, adminID uint) ([]dto.PermissionResponse, error) {
	rows, err := s.repo.ListByAdmin(ctx, adminID)
	if err != nil {
		return nil, err
	}

	return permissionResponses(rows), nil
}

func (s *permissionService) List(ctx context.Context) ([]dto.PermissionResponse, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	return permissionResponses(rows), nil
}

func (s *permissionService) requireAdminTarget(ctx context.Context, adminID uint) error {
	target, err := s.users.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPermissionAdminNotFound
		}
		return err
	}

	if target.Role != authz.RoleAdmin {
		return ErrPermissionNotAdmin
	}

	return nil
}

func permissionResponses(rows []models.AdminPermission) []dto.PermissionResponse {
	responses := make([]dto.PermissionResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, dto.NewPermissionResponse(row))
	}
	return responses
}
