package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/darsa-school/darsa-api/internal/dto"
	"github.com/darsa-school/darsa-api/internal/middleware"
	"github.com/darsa-school/darsa-api/internal/service"
	"github.com/darsa-school/darsa-api/internal/utils"
)

// AuthHandler exposes registration, login and session management.
type AuthHandler struct {
	auth   service.AuthService
	users  service.UserService
	logger zerolog.Logger
}

// NewAuthHandler constructs the auth handler.
func NewAuthHandler(auth service.AuthService, users service.UserService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		users:  users,
		logger: logger.With().Str("handler", "auth").Logger(),
	}
}

// Register handles student self-registration. The created account stays
// pending until approved.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.StudentRegistrationRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.users.RegisterStudent(c.UserContext(), req)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "registration submitted, awaiting approval", user)
}

// Login authenticates credentials and issues a token pair.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	pair, err := h.auth.Login(c.UserContext(), req)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "login successful", pair)
}

// Refresh rotates a refresh token into a fresh pair.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	pair, err := h.auth.Refresh(c.UserContext(), req)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "token refreshed", pair)
}

// Logout revokes the presented refresh token.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.auth.Logout(c.UserContext(), req); err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "logged out", nil)
}

// Me returns the authenticated user's own record.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.auth.Me(c.UserContext(), middleware.UserIDFromContext(c))
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "", user)
}

// UpdateProfile applies self-service profile edits.
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var req dto.ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.users.UpdateProfile(c.UserContext(), middleware.UserIDFromContext(c), req)
	if err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "profile updated", user)
}

// ChangePassword rotates the caller's own password.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.users.ChangePassword(c.UserContext(), middleware.UserIDFromContext(c), req); err != nil {
		return sendServiceError(c, err)
	}

	return utils.SendSuccess(c, "password changed", nil)
}
