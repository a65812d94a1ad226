package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-inventario/internal/application/dto"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	apphttp "github.com/jhoicas/pos-inventario/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/pos-inventario/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "pos-inventario-test"
	testExpMin    = 60
)

// guardApp monta las mismas guardas de rol que usa el router para correcciones.
func guardApp() *fiber.App {
	app := fiber.New()
	ok := func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": apphttp.GetUserID(c), "role": apphttp.GetRole(c)})
	}
	g := app.Group("/", apphttp.AuthMiddleware(testJWTSecret))
	g.Post("/adjustments", apphttp.RequireRole(entity.RoleAdmin, entity.RoleBodeguero), ok)
	g.Post("/reconcile", apphttp.RequireRole(entity.RoleAdmin), ok)
	g.Get("/me", ok)
	return app
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func call(t *testing.T, app *fiber.App, method, path, auth string) (int, dto.ErrorResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body dto.ErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body
}

// ──────────────────────────────────────────────────────────────────────────────
// RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_MatrizDeCorrecciones(t *testing.T) {
	cases := []struct {
		path string
		role string
		want int
	}{
		{"/adjustments", entity.RoleAdmin, http.StatusOK},
		{"/adjustments", entity.RoleBodeguero, http.StatusOK},
		{"/adjustments", entity.RoleVendedor, http.StatusForbidden},
		{"/reconcile", entity.RoleAdmin, http.StatusOK},
		{"/reconcile", entity.RoleBodeguero, http.StatusForbidden},
		{"/reconcile", entity.RoleVendedor, http.StatusForbidden},
	}
	app := guardApp()
	for _, tc := range cases {
		t.Run(tc.path+"_"+tc.role, func(t *testing.T) {
			status, body := call(t, app, http.MethodPost, tc.path, bearer(t, tc.role))
			assert.Equal(t, tc.want, status)
			if tc.want == http.StatusForbidden {
				assert.Equal(t, "FORBIDDEN", body.Code)
				assert.Contains(t, body.Message, tc.role)
			}
		})
	}
}

func TestRequireRole_TokenSinRol_Retorna401(t *testing.T) {
	status, body := call(t, guardApp(), http.MethodPost, "/adjustments", bearer(t, ""))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_ROLE", body.Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_CargaUsuarioQueOpera(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", bearer(t, entity.RoleVendedor))
	resp, err := guardApp().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, entity.RoleVendedor, body["role"])
}

func TestAuthMiddleware_CabecerasRechazadas(t *testing.T) {
	otherSecret, err := pkgjwt.Generate("otro-secreto", testUserID, entity.RoleAdmin, testIssuer, testExpMin)
	require.NoError(t, err)

	cases := map[string]struct {
		header string
		code   string
	}{
		"sin cabecera":      {"", "MISSING_TOKEN"},
		"esquema basic":     {"Basic dXNlcjpwYXNz", "INVALID_TOKEN"},
		"token malformado":  {"Bearer token.invalido.aqui", "INVALID_TOKEN"},
		"firma de otro env": {"Bearer " + otherSecret, "INVALID_TOKEN"},
	}
	app := guardApp()
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			status, body := call(t, app, http.MethodGet, "/me", tc.header)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, tc.code, body.Code)
		})
	}
}
