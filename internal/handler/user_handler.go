package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/darsa-school/darsa-api/internal/dto"
	"github.com/darsa-school/darsa-api/internal/observability"
	"github.com/darsa-school/darsa-api/internal/service"
	"github.com/darsa-school/darsa-api/internal/utils"
)

// UserHandler exposes identity management and the approval workflow.
type UserHandler struct {
	users         service.UserService
	permissions   service.PermissionService
	pendingExpiry time.Duration
	logger        zerolog.Logger
}

// NewUserHandler constructs the user handler.
func NewUserHandler(users service.UserService, permissions service.PermissionService, pendingExpiry time.Duration, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		users:         users,
		permissions:   permissions,
		pendingExpiry: pendingExpiry,
		logger:        logger.With().Str("handler", "user").Logger(),
	}
}

// List returns the users visible to the caller.
func (h *UserHandler) List(c *fiber.Ctx) error {
	actor, err := resolveActor(c, h.permissions)
	if err != nil {
		return sendServiceError(c, err)
	}

	req := dto.UserListRequest{
		Role:           c.Query("role"),
		ApprovalStatus: c.Query("approval_status"),
		Search:         c.Query("search"),
		Page:           c.QueryInt("page", 1),
		PageSize:       c.QueryInt("page_size", 20),
	}

	page, err := h.users.List(c.UserContext(), req, actor)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "", page)
}

// Get returns one user if visible to the caller.
func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	actor, err := resolveActor(c, h.permissions)
	if err != nil {
		return sendServiceError(c, err)
	}

	user, err := h.users.Get(c.UserContext(), id, actor)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "", user)
}

// Create adds an administrator-created account.
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var req dto.UserCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	actor, err := resolveActor(c, h.permissions)
	if err != nil {
		return sendServiceError(c, err)
	}

	user, err := h.users.Create(c.UserContext(), req, actor)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "user created", user)
}

// PendingStudents lists students awaiting an approval decision.
func (h *UserHandler) PendingStudents(c *fiber.Ctx) error {
	actor, err := resolveActor(c, h.permissions)
	if err != nil {
		return sendServiceError(c, err)
	}

	students, err := h.users.PendingStudents(c.UserContext(), actor)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "", students)
}

// ApproveReject applies an approval decision to a pending or previously
// decided student account.
func (h *UserHandler) ApproveReject(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var req dto.ApprovalRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	actor, err := resolveActor(c, h.permissions)
	if err != nil {
		return sendServiceError(c, err)
	}

	user, err := h.users.ApproveReject(c.UserContext(), id, req, actor)
	if err != nil {
		return sendServiceError(c, err)
	}

	observability.ObserveApprovalDecision(req.Action)

	return utils.SendSuccess(c, "decision recorded", user)
}

// ToggleActive flips the active flag on an account.
func (h *UserHandler) ToggleActive(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	actor, err := resolveActor(c, h.permissions)
	if err != nil {
		return sendServiceError(c, err)
	}

	user, err := h.users.ToggleActive(c.UserContext(), id, actor)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "user updated", user)
}

// ExpirePending runs the stale pending-account sweep on demand, using the
// same cutoff as the scheduled job.
func (h *UserHandler) ExpirePending(c *fiber.Ctx) error {
	deleted, err := h.users.ExpirePending(c.UserContext(), h.pendingExpiry)
	if err != nil {
		return sendServiceError(c, err)
	}

	observability.ObserveExpiredPending(deleted)
	h.logger.Info().Int64("deleted", deleted).Msg("manual pending account sweep")

	return utils.SendSuccess(c, "sweep completed", fiber.Map{"deleted": deleted})
}

// Delete removes an account visible to the caller.
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	actor, err := resolveActor(c, h.permissions)
	if err != nil {
		return sendServiceError(c, err)
	}

	if err := h.users.Delete(c.UserContext(), id, actor); err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "user deleted", nil)
}
