package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/darsa-school/darsa-api/internal/dto"
	"github.com/darsa-school/darsa-api/internal/service"
	"github.com/darsa-school/darsa-api/internal/utils"
)

// ScoreHandler exposes grade record operations.
type ScoreHandler struct {
	scores      service.ScoreService
	permissions service.PermissionService
	logger      zerolog.Logger
}

// NewScoreHandler constructs the score handler.
func NewScoreHandler(scores service.ScoreService, permissions service.PermissionService, logger zerolog.Logger) *ScoreHandler {
	return &ScoreHandler{
		scores:      scores,
		permissions: permissions,
		logger:      logger.With().Str("handler", "score").Logger(),
	}
}

// Upsert writes one score; an existing (student, subject, exam_type) row is
// updated in place.
func (h *ScoreHandler) Upsert(c *fiber.Ctx) error {
	var req dto.ScoreRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	score, err := h.scores.Upsert(c.UserContext(), req, serviceActor(c))
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "score recorded", score)
}

// BulkCreate writes several scores; items fail independently.
func (h *ScoreHandler) BulkCreate(c *fiber.Ctx) error {
	var req dto.ScoreBulkRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.scores.BulkCreate(c.UserContext(), req, serviceActor(c))
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "bulk score write processed", result)
}

// ByStudent lists a student's scores, scoped to the caller.
func (h *ScoreHandler) ByStudent(c *fiber.Ctx) error {
	studentID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	actor, err := resolveActor(c, h.permissions)
	if err != nil {
		return sendServiceError(c, err)
	}

	scores, err := h.scores.ListByStudent(c.UserContext(), studentID, actor)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "", scores)
}

// BySubject lists every score of one subject, scoped to the caller.
func (h *ScoreHandler) BySubject(c *fiber.Ctx) error {
	subjectID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	actor, err := resolveActor(c, h.permissions)
	if err != nil {
		return sendServiceError(c, err)
	}

	scores, err := h.scores.ListBySubject(c.UserContext(), subjectID, actor)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "", scores)
}

// ReportCard returns a student's aggregated grade report.
func (h *ScoreHandler) ReportCard(c *fiber.Ctx) error {
	studentID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	actor, err := resolveActor(c, h.permissions)
	if err != nil {
		return sendServiceError(c, err)
	}

	report, err := h.scores.ReportCard(c.UserContext(), studentID, actor)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "", report)
}

// Delete removes one score row.
func (h *ScoreHandler) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.scores.Delete(c.UserContext(), id, serviceActor(c)); err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "score deleted", nil)
}
