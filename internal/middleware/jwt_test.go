package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/darsa-school/darsa-api/internal/authz"
)

const testSecret = "test-secret"

func signedToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newProtectedApp(extra ...fiber.Handler) *fiber.App {
	app := fiber.New()
	handlers := append([]fiber.Handler{JWTProtected(testSecret)}, extra...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": UserIDFromContext(c),
			"role":    string(RoleFromContext(c)),
		})
	})
	app.Get("/protected", handlers...)
	return app
}

func doRequest(t *testing.T, app *fiber.App, authorization string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestJWTProtectedAcceptsValidToken(t *testing.T) {
	app := newProtectedApp()

	token := signedToken(t, jwt.MapClaims{
		"sub":  "42",
		"role": "ADMIN",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	resp := doRequest(t, app, "Bearer "+token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `"user_id":42`)
	require.Contains(t, string(body), `"role":"ADMIN"`)
}

func TestJWTProtectedRejectsBadTokens(t *testing.T) {
	app := newProtectedApp()

	cases := []struct {
		name          string
		authorization string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not.a.token"},
		{"wrong secret", "Bearer " + signedToken(t, jwt.MapClaims{
			"sub": "42", "role": "ADMIN", "exp": time.Now().Add(time.Hour).Unix(),
		}, "other-secret")},
		{"expired", "Bearer " + signedToken(t, jwt.MapClaims{
			"sub": "42", "role": "ADMIN", "exp": time.Now().Add(-time.Hour).Unix(),
		}, testSecret)},
		{"unknown role", "Bearer " + signedToken(t, jwt.MapClaims{
			"sub": "42", "role": "WIZARD", "exp": time.Now().Add(time.Hour).Unix(),
		}, testSecret)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doRequest(t, app, tc.authorization)
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestRequireRole(t *testing.T) {
	app := newProtectedApp(RequireRole(authz.RoleSuperAdmin, authz.RoleAdmin))

	adminToken := signedToken(t, jwt.MapClaims{
		"sub": "1", "role": "ADMIN", "exp": time.Now().Add(time.Hour).Unix(),
	}, testSecret)
	resp := doRequest(t, app, "Bearer "+adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	studentToken := signedToken(t, jwt.MapClaims{
		"sub": "2", "role": "STUDENT", "exp": time.Now().Add(time.Hour).Unix(),
	}, testSecret)
	resp = doRequest(t, app, "Bearer "+studentToken)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}
