package handler

import (
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/darsa-school/darsa-api/internal/dto"
	"github.com/darsa-school/darsa-api/internal/models"
	"github.com/darsa-school/darsa-api/internal/repository"
	"github.com/darsa-school/darsa-api/internal/service"
	"github.com/darsa-school/darsa-api/internal/utils"
)

// DocumentHandler exposes file upload, listing, verification and deletion.
type DocumentHandler struct {
	documents   service.DocumentService
	permissions service.PermissionService
	logger      zerolog.Logger
}

// NewDocumentHandler constructs the document handler.
func NewDocumentHandler(documents service.DocumentService, permissions service.PermissionService, logger zerolog.Logger) *DocumentHandler {
	return &DocumentHandler{
		documents:   documents,
		permissions: permissions,
		logger:      logger.With().Str("handler", "document").Logger(),
	}
}

// Upload accepts a multipart form with a "file" part plus metadata fields.
func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	req := dto.DocumentUploadRequest{
		Title:        c.FormValue("title"),
		Description:  c.FormValue("description"),
		DocumentType: c.FormValue("document_type"),
		StudentID:    formUintPtr(c, "student_id"),
		TeacherID:    formUintPtr(c, "teacher_id"),
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "failed to read file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "failed to read file")
	}

	doc, err := h.documents.Upload(c.UserContext(), req, fileHeader.Filename, data, serviceActor(c))
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "document uploaded", doc)
}

// Get returns one document if visible to the caller.
func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	actor, err := resolveActor(c, h.permissions)
	if err != nil {
		return sendServiceError(c, err)
	}

	doc, err := h.documents.Get(c.UserContext(), id, actor)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "", doc)
}

// List returns the documents visible to the caller.
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	actor, err := resolveActor(c, h.permissions)
	if err != nil {
		return sendServiceError(c, err)
	}

	filter := repository.DocumentFilter{
		StudentID:    queryUintPtr(c, "student_id"),
		TeacherID:    queryUintPtr(c, "teacher_id"),
		DocumentType: models.DocumentType(c.Query("document_type")),
		GeneralOnly:  c.QueryBool("general_only", false),
	}

	docs, err := h.documents.List(c.UserContext(), filter, actor)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "", docs)
}

// Unverified lists documents still awaiting verification.
func (h *DocumentHandler) Unverified(c *fiber.Ctx) error {
	actor, err := resolveActor(c, h.permissions)
	if err != nil {
		return sendServiceError(c, err)
	}

	docs, err := h.documents.List(c.UserContext(), repository.DocumentFilter{
		DocumentType:   models.DocumentType(c.Query("document_type")),
		UnverifiedOnly: true,
	}, actor)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "", docs)
}

// Verify toggles verification on a document.
func (h *DocumentHandler) Verify(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var req dto.DocumentVerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	doc, err := h.documents.Verify(c.UserContext(), id, req.IsVerified, serviceActor(c))
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "document updated", doc)
}

// Delete removes a document and its stored file.
func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.documents.Delete(c.UserContext(), id, serviceActor(c)); err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "document deleted", nil)
}

func formUintPtr(c *fiber.Ctx, name string) *uint {
	raw := strings.TrimSpace(c.FormValue(name))
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil
	}
	converted := uint(value)
	return &converted
}
