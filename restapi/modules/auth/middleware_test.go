package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/qed-utility/portal-backend/model"
)

func gatedApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New()
	gate := DefaultGate()
	app.Post("/delete", RequireAuth, RequireOperation(gate, OpBulkDelete), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	return app
}

func deleteRequest(t *testing.T, groups []string) *http.Request {
	t.Helper()
	req := httptest.NewRequest("POST", "/delete", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	if groups != nil {
		token, err := GenerateJWT("vik", groups)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
	}
	return req
}

func TestRequireAuthRejectsMissingCookie(t *testing.T) {
	app := gatedApp(t)

	resp, err := app.Test(deleteRequest(t, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAuthRejectsGarbageToken(t *testing.T) {
	app := gatedApp(t)

	req := httptest.NewRequest("POST", "/delete", strings.NewReader("{}"))
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: "garbage"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

// A well-formed request body makes no difference: denial is decided on
// group membership alone.
func TestRequireOperationDeniesUnauthorizedGroup(t *testing.T) {
	app := gatedApp(t)

	resp, err := app.Test(deleteRequest(t, []string{model.GroupViewer, model.GroupCircleHead}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequireOperationAllowsPermittedGroup(t *testing.T) {
	app := gatedApp(t)

	resp, err := app.Test(deleteRequest(t, []string{model.GroupDesignCoordinator}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
