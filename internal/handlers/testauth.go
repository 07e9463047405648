package handlers

import (
	"html"
	"strings"

	"github.com/gofiber/fiber/v3"

	"teampages/internal/extauth"
)

// TestAuthHandler backs the fixture auth service's /_testing/auth routes
// in development. Each action is bound explicitly; anything else is a
// client error rather than a panic.
type TestAuthHandler struct {
	fixture *extauth.Fixture
}

// NewTestAuthHandler creates a new fixture auth handler.
func NewTestAuthHandler(fixture *extauth.Fixture) *TestAuthHandler {
	return &TestAuthHandler{fixture: fixture}
}

// Get handles logout and renders the fake login form.
func (h *TestAuthHandler) Get(c fiber.Ctx) error {
	switch c.Query("action") {
	case "logout":
		h.fixture.Logout()
		return c.Redirect().To(safeReturnTo(c.Query("return_to")))
	case "login":
		provider := html.EscapeString(c.Query("provider"))
		c.Set("Content-Type", "text/html; charset=utf-8")
		return c.SendString(`
			<form method="post">
			Log in to fake ` + provider + `<br/>
			Name: <input type="text" name="user_name" /><br/>
			<input type="submit" />
			</form>
		`)
	default:
		return fiber.NewError(fiber.StatusBadRequest, "unknown action")
	}
}

// Post completes the fake login.
func (h *TestAuthHandler) Post(c fiber.Ctx) error {
	if c.Query("action") != "login" {
		return fiber.NewError(fiber.StatusBadRequest, "unknown action")
	}
	h.fixture.Login(c.FormValue("user_name"), c.Query("provider"))
	return c.Redirect().To(safeReturnTo(c.Query("return_to")))
}

// safeReturnTo keeps fixture redirects on-site.
func safeReturnTo(returnTo string) string {
	if !strings.HasPrefix(returnTo, "/") || strings.HasPrefix(returnTo, "//") {
		return "/"
	}
	return returnTo
}
