package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/darsa-school/darsa-api/internal/dto"
	"github.com/darsa-school/darsa-api/internal/service"
	"github.com/darsa-school/darsa-api/internal/utils"
)

// AttendanceHandler exposes attendance marking and listing.
type AttendanceHandler struct {
	attendance  service.AttendanceService
	permissions service.PermissionService
	logger      zerolog.Logger
}

// NewAttendanceHandler constructs the attendance handler.
func NewAttendanceHandler(attendance service.AttendanceService, permissions service.PermissionService, logger zerolog.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		attendance:  attendance,
		permissions: permissions,
		logger:      logger.With().Str("handler", "attendance").Logger(),
	}
}

// MarkStudent records or overwrites one student's attendance for a date.
func (h *AttendanceHandler) MarkStudent(c *fiber.Ctx) error {
	var req dto.StudentAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	record, err := h.attendance.MarkStudent(c.UserContext(), req, serviceActor(c))
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "attendance recorded", record)
}

// BulkMarkStudents records several students' attendance; items fail
// independently.
func (h *AttendanceHandler) BulkMarkStudents(c *fiber.Ctx) error {
	var req dto.StudentAttendanceBulkRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.attendance.BulkMarkStudents(c.UserContext(), req, serviceActor(c))
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "bulk attendance processed", result)
}

// MarkTeacher records or overwrites one teacher's attendance for a date.
func (h *AttendanceHandler) MarkTeacher(c *fiber.Ctx) error {
	var req dto.TeacherAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	record, err := h.attendance.MarkTeacher(c.UserContext(), req, serviceActor(c))
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "attendance recorded", record)
}

// ListStudent lists student attendance, scoped to the caller.
func (h *AttendanceHandler) ListStudent(c *fiber.Ctx) error {
	actor, err := resolveActor(c, h.permissions)
	if err != nil {
		return sendServiceError(c, err)
	}

	req := dto.AttendanceListRequest{
		StudentID: queryUintPtr(c, "student_id"),
		SubjectID: queryUintPtr(c, "subject_id"),
		From:      queryDate(c, "from"),
		To:        queryDate(c, "to"),
	}

	records, err := h.attendance.ListStudent(c.UserContext(), req, actor)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "", records)
}

// ListTeacher lists teacher attendance, scoped to the caller.
func (h *AttendanceHandler) ListTeacher(c *fiber.Ctx) error {
	actor, err := resolveActor(c, h.permissions)
	if err != nil {
		return sendServiceError(c, err)
	}

	req := dto.AttendanceListRequest{
		TeacherID: queryUintPtr(c, "teacher_id"),
		From:      queryDate(c, "from"),
		To:        queryDate(c, "to"),
	}

	records, err := h.attendance.ListTeacher(c.UserContext(), req, actor)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "", records)
}

// StudentStats summarises one student's attendance, scoped to the caller.
func (h *AttendanceHandler) StudentStats(c *fiber.Ctx) error {
	studentID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	actor, err := resolveActor(c, h.permissions)
	if err != nil {
		return sendServiceError(c, err)
	}

	stats, err := h.attendance.StudentStats(c.UserContext(), studentID, actor)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "", stats)
}

// TeacherStats summarises one teacher's attendance, scoped to the caller.
func (h *AttendanceHandler) TeacherStats(c *fiber.Ctx) error {
	teacherID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	actor, err := resolveActor(c, h.permissions)
	if err != nil {
		return sendServiceError(c, err)
	}

	stats, err := h.attendance.TeacherStats(c.UserContext(), teacherID, actor)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "", stats)
}

func queryDate(c *fiber.Ctx, name string) *time.Time {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &parsed
}
