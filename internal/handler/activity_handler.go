package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/darsa-school/darsa-api/internal/service"
	"github.com/darsa-school/darsa-api/internal/utils"
)

// ActivityHandler exposes the administrative audit trail.
type ActivityHandler struct {
	activity service.ActivityService
	logger   zerolog.Logger
}

// NewActivityHandler constructs the activity handler.
func NewActivityHandler(activity service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		activity: activity,
		logger:   logger.With().Str("handler", "activity").Logger(),
	}
}

// List returns recent audit entries, optionally filtered by action.
func (h *ActivityHandler) List(c *fiber.Ctx) error {
	entries, err := h.activity.List(c.UserContext(), c.Query("action"), c.QueryInt("limit", 100))
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "", entries)
}
