package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/darsa-school/darsa-api/internal/dto"
	"github.com/darsa-school/darsa-api/internal/service"
	"github.com/darsa-school/darsa-api/internal/utils"
)

// PermissionHandler exposes the per-admin capability grid.
type PermissionHandler struct {
	permissions service.PermissionService
	logger      zerolog.Logger
}

// NewPermissionHandler constructs the permission handler.
func NewPermissionHandler(permissions service.PermissionService, logger zerolog.Logger) *PermissionHandler {
	return &PermissionHandler{
		permissions: permissions,
		logger:      logger.With().Str("handler", "permission").Logger(),
	}
}

// Grant sets or revokes one capability for an admin.
func (h *PermissionHandler) Grant(c *fiber.Ctx) error {
	var req dto.PermissionGrantRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	row, err := h.permissions.Grant(c.UserContext(), req, serviceActor(c))
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "permission updated", row)
}

// BulkUpdate applies several grid entries for one admin. Items fail
// independently; the response carries per-item errors.
func (h *PermissionHandler) BulkUpdate(c *fiber.Ctx) error {
	var req dto.PermissionBulkRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.permissions.BulkSet(c.UserContext(), req, serviceActor(c))
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "bulk update processed", result)
}

// ByAdmin lists the grid rows of one admin.
func (h *PermissionHandler) ByAdmin(c *fiber.Ctx) error {
	adminID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	rows, err := h.permissions.ListByAdmin(c.UserContext(), adminID)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "", rows)
}

// List returns every grid row.
func (h *PermissionHandler) List(c *fiber.Ctx) error {
	rows, err := h.permissions.List(c.UserContext())
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "", rows)
}
