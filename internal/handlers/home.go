package handlers

import (
	"github.com/gofiber/fiber/v3"

	"teampages/internal/config"
)

// HomeHandler handles the landing page, login, and the 404 catch-all.
type HomeHandler struct {
	cfg *config.Config
}

// NewHomeHandler creates a new home handler.
func NewHomeHandler(cfg *config.Config) *HomeHandler {
	return &HomeHandler{cfg: cfg}
}

// Index sends authenticated users to their dashboard and everyone else to
// the landing page with the auth service's login links.
func (h *HomeHandler) Index(c fiber.Ctx) error {
	if SessionFrom(c).LoggedIn {
		return c.Redirect().To("/dashboard")
	}
	return c.Render("landing", viewData(c, h.cfg, nil))
}

// LoginForm renders the provider chooser.
func (h *HomeHandler) LoginForm(c fiber.Ctx) error {
	if SessionFrom(c).LoggedIn {
		return c.Redirect().To("/dashboard")
	}
	return c.Render("login", viewData(c, h.cfg, nil))
}

// LoginSubmit redirects the browser to the chosen provider's login link.
// The links are minted by the auth service; an unknown provider is a
// client error, not a crash.
func (h *HomeHandler) LoginSubmit(c fiber.Ctx) error {
	session := SessionFrom(c)
	if session.LoggedIn {
		return c.Redirect().To("/dashboard")
	}

	provider := c.FormValue("provider")
	link, ok := session.LoginLinks[provider]
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "unknown login provider")
	}
	return c.Redirect().To(link)
}

// NotFound renders the 404 page for unmatched routes.
func (h *HomeHandler) NotFound(c fiber.Ctx) error {
	return renderNotFound(c, h.cfg)
}
