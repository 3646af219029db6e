package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/darsa-school/darsa-api/internal/authz"
	"github.com/darsa-school/darsa-api/internal/dto"
	"github.com/darsa-school/darsa-api/internal/models"
	"github.com/darsa-school/darsa-api/internal/repository"
)

// Sentinel errors for identity and approval workflow operations.
var (
	ErrUserNotFound            = errors.New("user not found")
	ErrUsernameTaken           = errors.New("username already exists")
	ErrPasswordConfirmMismatch = errors.New("password confirmation does not match")
	ErrRejectionReasonRequired = errors.New("rejection reason must not be empty")
	ErrApprovalDenied          = errors.New("not allowed to approve or reject students")
	ErrAdminCreationDenied     = errors.New("only a super admin may create admin accounts")
	ErrUserCreationDenied      = errors.New("not allowed to create accounts with this role")
	ErrUserManagementDenied    = errors.New("not allowed to manage this account")
	ErrInvalidRole             = errors.New("invalid role")
)

// UserService implements identity management and the student approval
// workflow: pending at self-registration, approved or rejected by an
// authorized actor, with rejected accounts re-approvable.
type UserService interface {
	RegisterStudent(ctx context.Context, req dto.StudentRegistrationRequest) (dto.UserResponse, error)
	Create(ctx context.Context, req dto.UserCreateRequest, actor authz.Actor) (dto.UserResponse, error)
	Get(ctx context.Context, id uint, actor authz.Actor) (dto.UserResponse, error)
	List(ctx context.Context, req dto.UserListRequest, actor authz.Actor) (dto.UserListResponse, error)
	PendingStudents(ctx context.Context, actor authz.Actor) ([]dto.UserResponse, error)
	ApproveReject(ctx context.Context, id uint, req dto.ApprovalRequest, actor authz.Actor) (dto.UserResponse, error)
	ToggleActive(ctx context.Context, id uint, actor authz.Actor) (dto.UserResponse, error)
	Delete(ctx context.Context, id uint, actor authz.Actor) error
	UpdateProfile(ctx context.Context, userID uint, req dto.ProfileUpdateRequest) (dto.UserResponse, error)
	ChangePassword(ctx context.Context, userID uint, req dto.ChangePasswordRequest) error
	ExpirePending(ctx context.Context, cutoff time.Duration) (int64, error)
}

type userService struct {
	repo      repository.UserRepository
	students  repository.StudentRepository
	teachers  repository.TeacherRepository
	validator *validator.Validate
	activity  ActivityRecorder
	logger    zerolog.Logger
}

// NewUserService constructs the user service.
func NewUserService(repo repository.UserRepository, students repository.StudentRepository, teachers repository.TeacherRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) UserService {
	return &userService{
		repo:      repo,
		students:  students,
		teachers:  teachers,
		validator: validate,
		activity:  activity,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

// RegisterStudent creates a pending STUDENT account. The account cannot log
// in until an authorized actor approves it.
func (s *userService) RegisterStudent(ctx context.Context, req dto.StudentRegistrationRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	if req.Password != req.PasswordConfirm {
		return dto.UserResponse{}, ErrPasswordConfirmMismatch
	}

	username := strings.TrimSpace(req.Username)
	taken, err := s.repo.UsernameExists(ctx, username)
	if err != nil {
		return dto.UserResponse{}, err
	}
	if taken {
		return dto.UserResponse{}, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.UserResponse{}, err
	}

	user := models.User{
		Username:       username,
		PasswordHash:   string(hash),
		Name:           strings.TrimSpace(req.Name),
		FatherName:     strings.TrimSpace(req.FatherName),
		Email:          strings.TrimSpace(req.Email),
		PhoneNumber:    strings.TrimSpace(req.PhoneNumber),
		Gender:         genderOrDefault(req.Gender),
		Role:           authz.RoleStudent,
		IsActive:       true,
		IsApproved:     false,
		ApprovalStatus: models.ApprovalPending,
	}

	if err := s.repo.Create(ctx, &user); err != nil {
		return dto.UserResponse{}, mapUsernameConflict(err)
	}

	profile := models.Student{UserID: user.ID}
	if err := s.students.Create(ctx, &profile); err != nil {
		s.logger.Error().Err(err).Uint("user_id", user.ID).Msg("failed to create student profile")
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("student registered, awaiting approval")

	return dto.NewUserResponse(user), nil
}

// Create adds an administrator-created account. Non-student roles are
// approved immediately; only super admins may create admin accounts.
func (s *userService) Create(ctx context.Context, req dto.UserCreateRequest, actor authz.Actor) (dto.UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	role, err := authz.ParseRole(req.Role)
	if err != nil {
		return dto.UserResponse{}, ErrInvalidRole
	}

	if role == authz.RoleAdmin || role == authz.RoleSuperAdmin {
		if actor.Role != authz.RoleSuperAdmin {
			return dto.UserResponse{}, ErrAdminCreationDenied
		}
	} else if !authz.Allowed(actor, createPermFor(role)) {
		return dto.UserResponse{}, ErrUserCreationDenied
	}

	username := strings.TrimSpace(req.Username)
	taken, err := s.repo.UsernameExists(ctx, username)
	if err != nil {
		return dto.UserResponse{}, err
	}
	if taken {
		return dto.UserResponse{}, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.UserResponse{}, err
	}

	now := time.Now()
	user := models.User{
		Username:     username,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(req.Name),
		FatherName:   strings.TrimSpace(req.FatherName),
		Email:        strings.TrimSpace(req.Email),
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		Gender:       genderOrDefault(req.Gender),
		Role:         role,
		IsActive:     true,
	}

	if role.RequiresApproval() {
		// Admin-created students skip the pending queue: the creating
		// actor vouches for them.
		user.IsApproved = true
		user.ApprovalStatus = models.ApprovalApproved
		user.ApprovedByID = &actor.ID
		user.ApprovedAt = &now
	} else {
		user.IsApproved = true
		user.ApprovalStatus = models.ApprovalApproved
	}

	if err := s.repo.Create(ctx, &user); err != nil {
		return dto.UserResponse{}, mapUsernameConflict(err)
	}

	switch role {
	case authz.RoleStudent:
		profile := models.Student{UserID: user.ID}
		if err := s.students.Create(ctx, &profile); err != nil {
			s.logger.Error().Err(err).Uint("user_id", user.ID).Msg("failed to create student profile")
		}
	case authz.RoleTeacher:
		profile := models.Teacher{UserID: user.ID}
		if err := s.teachers.Create(ctx, &profile); err != nil {
			s.logger.Error().Err(err).Uint("user_id", user.ID).Msg("failed to create teacher profile")
		}
	}

	s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  string(actor.Role),
		Action:     "user.created",
		EntityType: "user",
		EntityID:   &user.ID,
		Metadata:   map[string]interface{}{"role": string(role)},
	})

	return dto.NewUserResponse(user), nil
}

// Get returns a user if the actor may see them. An out-of-scope identity is
// reported as not found, indistinguishable from an absent one.
func (s *userService) Get(ctx context.Context, id uint, actor authz.Actor) (dto.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	if !authz.CanViewUser(actor, user.ID, user.Role) {
		return dto.UserResponse{}, ErrUserNotFound
	}

	return dto.NewUserResponse(user), nil
}

// List returns the users visible to the actor. Admin actors never receive
// ADMIN or SUPER_ADMIN rows; actors with no list scope get an empty page.
func (s *userService) List(ctx context.Context, req dto.UserListRequest, actor authz.Actor) (dto.UserListResponse, error) {
	page := maxInt(req.Page, 1)
	empty := dto.UserListResponse{
		Items:      []dto.UserResponse{},
		Pagination: dto.PaginationMeta{Page: page, PageSize: req.PageSize, TotalPages: 1},
	}

	visible, ok := authz.VisibleRoles(actor)
	if !ok {
		return empty, nil
	}

	roles := visible
	if req.Role != "" {
		requested, err := authz.ParseRole(req.Role)
		if err != nil {
			return dto.UserListResponse{}, ErrInvalidRole
		}
		if !roleVisible(visible, requested) {
			return empty, nil
		}
		roles = []authz.Role{requested}
	}

	// Admin listings are additionally narrowed by the grid: each role needs
	// its own view grant.
	if actor.Role == authz.RoleAdmin {
		granted := make([]authz.Role, 0, len(roles))
		for _, role := range roles {
			if authz.Allowed(actor, viewPermFor(role)) {
				granted = append(granted, role)
			}
		}
		if len(granted) == 0 {
			return empty, nil
		}
		roles = granted
	}

	filter := repository.UserFilter{
		Roles:          roles,
		ApprovalStatus: models.ApprovalStatus(req.ApprovalStatus),
		Search:         strings.TrimSpace(req.Search),
		Page:           page,
		PageSize:       req.PageSize,
	}

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.UserListResponse{}, err
	}

	items := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, dto.NewUserResponse(user))
	}

	pagination := dto.PaginationMeta{Page: page, PageSize: req.PageSize, TotalItems: total}
	if req.PageSize > 0 {
		pagination.TotalPages = int(math.Ceil(float64(total) / float64(req.PageSize)))
	} else {
		pagination.TotalPages = 1
	}

	return dto.UserListResponse{Items: items, Pagination: pagination}, nil
}

func (s *userService) PendingStudents(ctx context.Context, actor authz.Actor) ([]dto.UserResponse, error) {
	if _, ok := authz.VisibleRoles(actor); !ok {
		return []dto.UserResponse{}, nil
	}

	users, _, err := s.repo.List(ctx, repository.UserFilter{
		Roles:          []authz.Role{authz.RoleStudent},
		ApprovalStatus: models.ApprovalPending,
	})
	if err != nil {
		return nil, err
	}

	items := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, dto.NewUserResponse(user))
	}

	return items, nil
}

// ApproveReject drives the approval state machine. Approval requires the
// can_approve_students capability (implicit for super admins). Rejected
// accounts may be re-approved; approved accounts may be re-rejected.
func (s *userService) ApproveReject(ctx context.Context, id uint, req dto.ApprovalRequest, actor authz.Actor) (dto.UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	if !authz.Allowed(actor, authz.PermApproveStudents) {
		return dto.UserResponse{}, ErrApprovalDenied
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	if !authz.CanViewUser(actor, user.ID, user.Role) {
		return dto.UserResponse{}, ErrUserNotFound
	}

	var updates map[string]interface{}
	var action string

	if req.Action == "approve" {
		now := time.Now()
		updates = map[string]interface{}{
			"approval_status":  models.ApprovalApproved,
			"is_approved":      true,
			"approved_by_id":   actor.ID,
			"approved_at":      now,
			"rejection_reason": "",
		}
		action = "user.approved"
	} else {
		reason := strings.TrimSpace(req.RejectionReason)
		if reason == "" {
			return dto.UserResponse{}, ErrRejectionReasonRequired
		}
		updates = map[string]interface{}{
			"approval_status":  models.ApprovalRejected,
			"is_approved":      false,
			"rejection_reason": reason,
		}
		action = "user.rejected"
	}

	updated, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return dto.UserResponse{}, err
	}

	s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  string(actor.Role),
		Action:     action,
		EntityType: "user",
		EntityID:   &id,
		Metadata: map[string]interface{}{
			"previous_status": string(user.ApprovalStatus),
			"new_status":      string(updated.ApprovalStatus),
		},
	})

	return dto.NewUserResponse(updated), nil
}

func (s *userService) ToggleActive(ctx context.Context, id uint, actor authz.Actor) (dto.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	if !authz.CanViewUser(actor, user.ID, user.Role) {
		return dto.UserResponse{}, ErrUserNotFound
	}

	if !authz.Allowed(actor, editPermFor(user.Role)) {
		return dto.UserResponse{}, ErrUserManagementDenied
	}

	updated, err := s.repo.Update(ctx, id, map[string]interface{}{"is_active": !user.IsActive})
	if err != nil {
		return dto.UserResponse{}, err
	}

	s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  string(actor.Role),
		Action:     "user.toggled_active",
		EntityType: "user",
		EntityID:   &id,
		Metadata:   map[string]interface{}{"is_active": updated.IsActive},
	})

	return dto.NewUserResponse(updated), nil
}

func (s *userService) Delete(ctx context.Context, id uint, actor authz.Actor) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !authz.CanViewUser(actor, user.ID, user.Role) {
		return ErrUserNotFound
	}

	if !authz.Allowed(actor, deletePermFor(user.Role)) {
		return ErrUserManagementDenied
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.activity.Record(ctx, ActivityEntry{
		ActorID:    actor.ID,
		ActorRole:  string(actor.Role),
		Action:     "user.deleted",
		EntityType: "user",
		EntityID:   &id,
		Metadata:   map[string]interface{}{"role": string(user.Role)},
	})

	return nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint, req dto.ProfileUpdateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.FatherName != nil {
		updates["father_name"] = strings.TrimSpace(*req.FatherName)
	}
	if req.Email != nil {
		updates["email"] = strings.TrimSpace(*req.Email)
	}
	if req.PhoneNumber != nil {
		updates["phone_number"] = strings.TrimSpace(*req.PhoneNumber)
	}
	if req.Gender != nil {
		updates["gender"] = *req.Gender
	}

	if len(updates) == 0 {
		user, err := s.repo.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.UserResponse{}, ErrUserNotFound
			}
			return dto.UserResponse{}, err
		}
		return dto.NewUserResponse(user), nil
	}

	user, err := s.repo.Update(ctx, userID, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	return dto.NewUserResponse(user), nil
}

func (s *userService) ChangePassword(ctx context.Context, userID uint, req dto.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return err
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)) != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = s.repo.Update(ctx, userID, map[string]interface{}{"password_hash": string(hash)})
	return err
}

// ExpirePending sweeps stale pending student registrations older than the
// cutoff. Safe to run concurrently with interactive approvals: the delete
// predicate re-checks the pending state inside the store.
func (s *userService) ExpirePending(ctx context.Context, cutoff time.Duration) (int64, error) {
	deleted, err := s.repo.DeleteExpiredPending(ctx, time.Now().Add(-cutoff))
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		s.logger.Info().Int64("deleted", deleted).Msg("expired pending student accounts removed")
	}

	return deleted, nil
}

// The grid distinguishes student and teacher management; the per-target-role
// permission decides which grant applies.
func createPermFor(role authz.Role) authz.Permission {
	if role == authz.RoleTeacher {
		return authz.PermCreateTeachers
	}
	return authz.PermCreateStudents
}

func viewPermFor(role authz.Role) authz.Permission {
	if role == authz.RoleTeacher {
		return authz.PermViewTeachers
	}
	return authz.PermViewStudents
}

func editPermFor(role authz.Role) authz.Permission {
	if role == authz.RoleTeacher {
		return authz.PermEditTeachers
	}
	return authz.PermEditStudents
}

func deletePermFor(role authz.Role) authz.Permission {
	if role == authz.RoleTeacher {
		return authz.PermDeleteTeachers
	}
	return authz.PermDeleteStudents
}

// mapUsernameConflict translates a store uniqueness violation on the username
// column into the shared sentinel. The pre-insert existence check races with
// concurrent registrations; the unique index is the authority.
func mapUsernameConflict(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrUsernameTaken
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate") {
		return ErrUsernameTaken
	}
	return err
}

func genderOrDefault(gender string) string {
	if gender == "" {
		return models.GenderMale
	}
	return gender
}

func roleVisible(visible []authz.Role, role authz.Role) bool {
	if visible == nil {
		return true
	}
	for _, r := range visible {
		if r == role {
			return true
		}
	}
	return false
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
