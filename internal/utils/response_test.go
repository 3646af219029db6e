package utils

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func performRequest(t *testing.T, handler fiber.Handler) (*http.Response, APIResponse) {
	t.Helper()

	app := fiber.New()
	app.Get("/", handler)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed APIResponse
	require.NoError(t, json.Unmarshal(body, &parsed))

	return resp, parsed
}

func TestSendSuccess(t *testing.T) {
	resp, parsed := performRequest(t, func(c *fiber.Ctx) error {
		return SendSuccess(c, "done", fiber.Map{"id": 1})
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, parsed.Success)
	require.Equal(t, "done", parsed.Message)
	require.NotNil(t, parsed.Data)
}

func TestSendSuccessDefaultsMessage(t *testing.T) {
	_, parsed := performRequest(t, func(c *fiber.Ctx) error {
		return SendSuccess(c, "", nil)
	})

	require.Equal(t, "success", parsed.Message)
}

func TestSendError(t *testing.T) {
	resp, parsed := performRequest(t, func(c *fiber.Ctx) error {
		return SendError(c, fiber.StatusNotFound, "user not found")
	})

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.False(t, parsed.Success)
	require.Equal(t, "user not found", parsed.Message)
	require.Nil(t, parsed.Data)
}

func TestSendValidationError(t *testing.T) {
	resp, parsed := performRequest(t, func(c *fiber.Ctx) error {
		return SendValidationError(c, "", map[string]string{"username": "failed on the 'required' rule"})
	})

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.False(t, parsed.Success)
	require.Equal(t, "validation failed", parsed.Message)
	require.Equal(t, "failed on the 'required' rule", parsed.Errors["username"])
}
