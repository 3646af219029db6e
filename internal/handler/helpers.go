package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/darsa-school/darsa-api/internal/authz"
	"github.com/darsa-school/darsa-api/internal/middleware"
	"github.com/darsa-school/darsa-api/internal/service"
	"github.com/darsa-school/darsa-api/internal/utils"
)

func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(value), nil
}

func queryUintPtr(c *fiber.Ctx, name string) *uint {
	raw := strings.TrimSpace(c.Query(name))
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

func serviceActor(c *fiber.Ctx) service.Actor {
	return service.Actor{
		ID:   middleware.UserIDFromContext(c),
		Role: string(middleware.RoleFromContext(c)),
	}
}

// resolveActor builds the gate actor for the request, loading an admin's
// permission grid when needed.
func resolveActor(c *fiber.Ctx, permissions service.PermissionService) (authz.Actor, error) {
	if value := c.Locals("actor"); value != nil {
		if actor, ok := value.(authz.Actor); ok {
			return actor, nil
		}
	}

	actor, err := permissions.ActorFor(
		c.UserContext(),
		middleware.UserIDFromContext(c),
		middleware.RoleFromContext(c),
	)
	if err != nil {
		return authz.Actor{}, err
	}

	c.Locals("actor", actor)
	return actor, nil
}

// sendServiceError translates validator and sentinel errors into HTTP
// responses. Unrecognised errors become an opaque 500.
func sendServiceError(c *fiber.Ctx, err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make(map[string]string, len(validationErrs))
		for _, fieldErr := range validationErrs {
			fields[strings.ToLower(fieldErr.Field())] = "failed on the '" + fieldErr.Tag() + "' rule"
		}
		return utils.SendValidationError(c, "validation failed", fields)
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())

	case errors.Is(err, service.ErrAccountInactive),
		errors.Is(err, service.ErrAccountPending),
		errors.Is(err, service.ErrAccountRejected),
		errors.Is(err, service.ErrApprovalDenied),
		errors.Is(err, service.ErrAdminCreationDenied),
		errors.Is(err, service.ErrUserCreationDenied),
		errors.Is(err, service.ErrUserManagementDenied),
		errors.Is(err, service.ErrScoreScopeDenied),
		errors.Is(err, service.ErrAttendanceScopeDenied),
		errors.Is(err, service.ErrDocumentScopeDenied):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())

	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrStudentNotFound),
		errors.Is(err, service.ErrTeacherNotFound),
		errors.Is(err, service.ErrScoreNotFound),
		errors.Is(err, service.ErrSemesterNotFound),
		errors.Is(err, service.ErrClassNotFound),
		errors.Is(err, service.ErrSubjectNotFound),
		errors.Is(err, service.ErrDocumentNotFound),
		errors.Is(err, service.ErrPermissionAdminNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())

	case errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrDuplicateTaxonomyKey):
		return utils.SendError(c, fiber.StatusConflict, err.Error())

	case errors.Is(err, service.ErrPasswordConfirmMismatch),
		errors.Is(err, service.ErrRejectionReasonRequired),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrPermissionNotAdmin),
		errors.Is(err, service.ErrUnknownPermission),
		errors.Is(err, service.ErrScoreOutOfRange),
		errors.Is(err, service.ErrInvalidExamType),
		errors.Is(err, service.ErrInvalidAttendanceStatus),
		errors.Is(err, service.ErrClassSemesterMismatch),
		errors.Is(err, service.ErrDocumentOwnerConflict),
		errors.Is(err, service.ErrInvalidDocumentType):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())

	case errors.Is(err, service.ErrDocumentTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
	}

	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
