package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pharmaops-api/internal/domain/entity"
	apphttp "github.com/jhoicas/pharmaops-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/pharmaops-api/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testTenantID  = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "pharmaops-test"
)

func testSigner(t *testing.T) *pkgjwt.Signer {
	t.Helper()
	s, err := pkgjwt.NewSigner(testJWTSecret, testIssuer, 60)
	require.NoError(t, err)
	return s
}

// buildProtectedApp: AuthMiddleware + RequireRole delante de un handler que responde 200.
func buildProtectedApp(t *testing.T, allowedRoles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testSigner(t)),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"ok": true, "role": apphttp.GetRole(c)})
		},
	)
	return app
}

func bearerFor(t *testing.T, role string) string {
	t.Helper()
	tok, err := testSigner(t).Sign(pkgjwt.Identity{UserID: testUserID, TenantID: testTenantID, Role: role})
	require.NoError(t, err)
	return "Bearer " + tok
}

func doGet(t *testing.T, app *fiber.App, path, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		allowed  []string
		header   func(t *testing.T) string
		wantCode int
		wantBody string
	}{
		{
			name:     "admin entra al área admin",
			allowed:  []string{entity.RoleAdmin, entity.RoleSuperAdmin},
			header:   func(t *testing.T) string { return bearerFor(t, entity.RoleAdmin) },
			wantCode: http.StatusOK,
		},
		{
			name:     "super admin también",
			allowed:  []string{entity.RoleAdmin, entity.RoleSuperAdmin},
			header:   func(t *testing.T) string { return bearerFor(t, entity.RoleSuperAdmin) },
			wantCode: http.StatusOK,
		},
		{
			name:     "farmacéutico bloqueado",
			allowed:  []string{entity.RoleAdmin, entity.RoleSuperAdmin},
			header:   func(t *testing.T) string { return bearerFor(t, entity.RolePharmacist) },
			wantCode: http.StatusForbidden,
			wantBody: "FORBIDDEN",
		},
		{
			name:     "admin de tenant no es admin de plataforma",
			allowed:  []string{entity.RoleAdmin},
			header:   func(t *testing.T) string { return bearerFor(t, entity.RoleTenantAdmin) },
			wantCode: http.StatusForbidden,
		},
		{
			name:     "token sin rol",
			allowed:  []string{entity.RoleAdmin},
			header:   func(t *testing.T) string { return bearerFor(t, "") },
			wantCode: http.StatusUnauthorized,
			wantBody: "MISSING_ROLE",
		},
		{
			name:     "sin header",
			allowed:  []string{entity.RoleAdmin},
			header:   func(*testing.T) string { return "" },
			wantCode: http.StatusUnauthorized,
			wantBody: "MISSING_TOKEN",
		},
		{
			name:     "token malformado",
			allowed:  []string{entity.RoleAdmin},
			header:   func(*testing.T) string { return "Bearer token.invalido.aqui" },
			wantCode: http.StatusUnauthorized,
			wantBody: "INVALID_TOKEN",
		},
		{
			name:     "esquema distinto de Bearer",
			allowed:  []string{entity.RoleAdmin},
			header:   func(*testing.T) string { return "Basic dXNlcjpwYXNz" },
			wantCode: http.StatusUnauthorized,
			wantBody: "INVALID_TOKEN",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doGet(t, buildProtectedApp(t, tt.allowed...), "/protected", tt.header(t))
			defer resp.Body.Close()

			assert.Equal(t, tt.wantCode, resp.StatusCode)
			if tt.wantBody != "" {
				body, _ := io.ReadAll(resp.Body)
				assert.Contains(t, string(body), tt.wantBody)
			}
		})
	}
}

func TestAuthMiddleware_CopiaClaims(t *testing.T) {
	app := fiber.New()
	app.Get("/whoami", apphttp.AuthMiddleware(testSigner(t)), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":   apphttp.GetUserID(c),
			"tenant_id": apphttp.GetTenantID(c),
			"role":      apphttp.GetRole(c),
		})
	})

	resp := doGet(t, app, "/whoami", bearerFor(t, entity.RolePharmacist))
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testTenantID, body["tenant_id"])
	assert.Equal(t, entity.RolePharmacist, body["role"])
}

func TestAuthMiddleware_OtroSecretoRechazado(t *testing.T) {
	other, err := pkgjwt.NewSigner("otro-secret-completamente-distinto", testIssuer, 60)
	require.NoError(t, err)
	tok, err := other.Sign(pkgjwt.Identity{UserID: testUserID, TenantID: testTenantID, Role: entity.RoleAdmin})
	require.NoError(t, err)

	resp := doGet(t, buildProtectedApp(t, entity.RoleAdmin), "/protected", "Bearer "+tok)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
