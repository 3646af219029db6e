package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/darsa-school/darsa-api/internal/dto"
	"github.com/darsa-school/darsa-api/internal/service"
	"github.com/darsa-school/darsa-api/internal/utils"
)

// AcademicsHandler exposes semesters, classes, subjects and class assignment.
type AcademicsHandler struct {
	academics service.AcademicsService
	logger    zerolog.Logger
}

// NewAcademicsHandler constructs the academics handler.
func NewAcademicsHandler(academics service.AcademicsService, logger zerolog.Logger) *AcademicsHandler {
	return &AcademicsHandler{
		academics: academics,
		logger:    logger.With().Str("handler", "academics").Logger(),
	}
}

func (h *AcademicsHandler) CreateSemester(c *fiber.Ctx) error {
	var req dto.SemesterRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	semester, err := h.academics.CreateSemester(c.UserContext(), req)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "semester created", semester)
}

func (h *AcademicsHandler) ListSemesters(c *fiber.Ctx) error {
	semesters, err := h.academics.ListSemesters(c.UserContext())
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "", semesters)
}

func (h *AcademicsHandler) UpdateSemester(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var req dto.SemesterRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	semester, err := h.academics.UpdateSemester(c.UserContext(), id, req)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "semester updated", semester)
}

func (h *AcademicsHandler) DeleteSemester(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.academics.DeleteSemester(c.UserContext(), id); err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "semester deleted", nil)
}

func (h *AcademicsHandler) CreateClass(c *fiber.Ctx) error {
	var req dto.ClassRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	class, err := h.academics.CreateClass(c.UserContext(), req)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "class created", class)
}

func (h *AcademicsHandler) ListClasses(c *fiber.Ctx) error {
	classes, err := h.academics.ListClasses(c.UserContext())
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "", classes)
}

func (h *AcademicsHandler) UpdateClass(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var req dto.ClassRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	class, err := h.academics.UpdateClass(c.UserContext(), id, req)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "class updated", class)
}

func (h *AcademicsHandler) DeleteClass(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.academics.DeleteClass(c.UserContext(), id); err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "class deleted", nil)
}

func (h *AcademicsHandler) CreateSubject(c *fiber.Ctx) error {
	var req dto.SubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	subject, err := h.academics.CreateSubject(c.UserContext(), req)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "subject created", subject)
}

func (h *AcademicsHandler) ListSubjects(c *fiber.Ctx) error {
	subjects, err := h.academics.ListSubjects(c.UserContext(), queryUintPtr(c, "semester_id"))
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "", subjects)
}

func (h *AcademicsHandler) UpdateSubject(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var req dto.SubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	subject, err := h.academics.UpdateSubject(c.UserContext(), id, req)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "subject updated", subject)
}

func (h *AcademicsHandler) DeleteSubject(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.academics.DeleteSubject(c.UserContext(), id); err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "subject deleted", nil)
}

// AssignStudentClass binds a student to a class and semester, enforcing the
// class/semester consistency rule.
func (h *AcademicsHandler) AssignStudentClass(c *fiber.Ctx) error {
	studentID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var req struct {
		SchoolClassID *uint `json:"school_class_id"`
		SemesterID    *uint `json:"semester_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	student, err := h.academics.AssignStudentClass(c.UserContext(), studentID, req.SchoolClassID, req.SemesterID)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "student assignment updated", student)
}
