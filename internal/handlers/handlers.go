package handlers

import (
	"bytes"
	"html/template"

	"github.com/gofiber/fiber/v3"
	"github.com/yuin/goldmark"

	"teampages/internal/config"
	"teampages/internal/middleware"
	"teampages/internal/models"
)

// SessionFrom returns the session resolved by the auth middleware.
// Never nil; an unresolved session reads as logged out.
func SessionFrom(c fiber.Ctx) *models.Session {
	session, _ := c.Locals(middleware.SessionKey).(*models.Session)
	if session == nil {
		return models.LoggedOut()
	}
	return session
}

// CurrentUser returns the authenticated user, or nil when logged out.
func CurrentUser(c fiber.Ctx) *models.User {
	session := SessionFrom(c)
	if !session.LoggedIn {
		return nil
	}
	return session.User
}

// viewData assembles the template data every page needs: branding plus the
// session state (login links when logged out, user and logout link when
// logged in).
func viewData(c fiber.Ctx, cfg *config.Config, data fiber.Map) fiber.Map {
	if data == nil {
		data = fiber.Map{}
	}
	data["SiteTitle"] = cfg.SiteTitle
	data["SiteTagline"] = cfg.SiteTagline
	data["SiteFooter"] = cfg.SiteFooter

	session := SessionFrom(c)
	data["LoggedIn"] = session.LoggedIn
	if session.LoggedIn {
		data["CurrentUser"] = session.User
		data["LogoutLink"] = session.LogoutLink
	} else {
		data["LoginLinks"] = session.LoginLinks
	}
	return data
}

// renderNotFound renders the 404 page.
func renderNotFound(c fiber.Ctx, cfg *config.Config) error {
	return c.Status(fiber.StatusNotFound).Render("404", viewData(c, cfg, nil))
}

// renderMarkdown converts a team description to HTML. Raw HTML in the
// source is escaped by goldmark's default renderer.
func renderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}
