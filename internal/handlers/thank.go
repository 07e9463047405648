package handlers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// ThankForm renders the thank-you composer for a team's admins.
func (h *TeamHandler) ThankForm(c fiber.Ctx) error {
	slugName := c.Params("slug")

	team, primary, isAdmin, err := h.resolveSlug(c, slugName)
	if team == nil || err != nil {
		return err
	}
	if !primary {
		return c.Redirect().Status(fiber.StatusMovedPermanently).To(team.URL() + "/thank")
	}
	if !isAdmin {
		return c.Redirect().To(team.URL())
	}

	return c.Render("thank", viewData(c, h.cfg, fiber.Map{
		"Team": team,
	}))
}

// ThankSubmit sends a thank-you message to the team's pledgers via the
// pledge service. Delivery failure re-renders the composer; it is never a
// server error.
func (h *TeamHandler) ThankSubmit(c fiber.Ctx) error {
	slugName := c.Params("slug")

	team, _, isAdmin, err := h.resolveSlug(c, slugName)
	if team == nil || err != nil {
		return err
	}
	if !isAdmin {
		return c.Redirect().To(team.URL())
	}

	subject := strings.TrimSpace(c.FormValue("subject"))
	body := strings.TrimSpace(c.FormValue("body"))
	if subject == "" || body == "" {
		return c.Render("thank", viewData(c, h.cfg, fiber.Map{
			"Team":    team,
			"Subject": subject,
			"Body":    body,
			"Error":   "Subject and message are both required",
		}))
	}

	ctx, cancel := context.WithTimeout(c.Context(), h.cfg.ExternalTimeout)
	defer cancel()
	if err := h.pledge.SendThankYou(ctx, team, subject, body); err != nil {
		slog.Warn("thank-you delivery failed", "team", team.ID, "error", err)
		return c.Render("thank", viewData(c, h.cfg, fiber.Map{
			"Team":    team,
			"Subject": subject,
			"Body":    body,
			"Error":   "Sending failed, please try again",
		}))
	}

	return c.Render("thank", viewData(c, h.cfg, fiber.Map{
		"Team": team,
		"Sent": true,
	}))
}
