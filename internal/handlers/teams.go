package handlers

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"teampages/internal/authz"
	"teampages/internal/config"
	"teampages/internal/db"
	"teampages/internal/metrics"
	"teampages/internal/models"
	"teampages/internal/pledge"
	"teampages/internal/slug"
)

// TeamHandler handles team page view and edit operations.
type TeamHandler struct {
	db     *db.DB
	cfg    *config.Config
	authz  *authz.Authorizer
	pledge pledge.Service
	alloc  *slug.Allocator
}

// NewTeamHandler creates a new team handler.
func NewTeamHandler(database *db.DB, cfg *config.Config, authorizer *authz.Authorizer, pledgeSvc pledge.Service, alloc *slug.Allocator) *TeamHandler {
	return &TeamHandler{db: database, cfg: cfg, authz: authorizer, pledge: pledgeSvc, alloc: alloc}
}

// resolveSlug resolves a slug to its team and the requester's standing.
// A nil team means the 404 page has already been rendered. isAdmin is
// fail-closed: an authorization backend error reads as non-admin.
func (h *TeamHandler) resolveSlug(c fiber.Ctx, slugName string) (team *models.Team, primary, isAdmin bool, err error) {
	entry, err := h.db.GetSlug(c.Context(), slugName)
	if err != nil {
		if errors.Is(err, db.ErrSlugNotFound) {
			metrics.RecordPageView(slugName, models.ViewMissing)
			return nil, false, false, renderNotFound(c, h.cfg)
		}
		return nil, false, false, err
	}

	team, err = h.db.GetTeamByID(c.Context(), entry.TeamID)
	if err != nil {
		if errors.Is(err, db.ErrTeamNotFound) {
			return nil, false, false, renderNotFound(c, h.cfg)
		}
		return nil, false, false, err
	}

	primary = true
	if team.PrimarySlug != nil && *team.PrimarySlug != slugName {
		primary = false
	}

	if user := CurrentUser(c); user != nil {
		admin, authErr := h.authz.IsAdmin(c.Context(), user.UserID, team.ID)
		if authErr != nil {
			slog.Warn("admin check failed, treating as non-admin", "team", team.ID, "error", authErr)
		} else {
			isAdmin = admin
		}
	}

	return team, primary, isAdmin, nil
}

// Show renders a team page. Historical slugs permanently redirect to the
// current primary slug.
func (h *TeamHandler) Show(c fiber.Ctx) error {
	slugName := c.Params("slug")

	team, primary, isAdmin, err := h.resolveSlug(c, slugName)
	if team == nil || err != nil {
		return err
	}
	if !primary {
		metrics.RecordPageView(slugName, models.ViewRedirect)
		return c.Redirect().Status(fiber.StatusMovedPermanently).To(team.URL())
	}
	metrics.RecordPageView(slugName, models.ViewPrimary)

	data := viewData(c, h.cfg, fiber.Map{
		"Team":                team,
		"DescriptionRendered": renderMarkdown(team.Description),
		"IsAdmin":             isAdmin,
	})
	if isAdmin {
		data["EditURL"] = team.URL() + "/edit"
		data["ThankURL"] = team.URL() + "/thank"
	}

	ctx, cancel := context.WithTimeout(c.Context(), h.cfg.ExternalTimeout)
	defer cancel()
	if cents, count, err := h.pledge.TeamTotal(ctx, team.ID); err != nil {
		slog.Warn("failed to load team total", "team", team.ID, "error", err)
	} else {
		data["TotalDollars"] = cents / 100
		data["NumPledges"] = count
		if team.GoalDollars != nil && *team.GoalDollars > 0 {
			percent := cents / 100 * 100 / int64(*team.GoalDollars)
			if percent > 100 {
				percent = 100
			}
			data["GoalPercent"] = percent
		}
	}

	return c.Render("show_team", data)
}

// EditForm renders the edit form for a team's admins.
func (h *TeamHandler) EditForm(c fiber.Ctx) error {
	slugName := c.Params("slug")

	team, primary, isAdmin, err := h.resolveSlug(c, slugName)
	if team == nil || err != nil {
		return err
	}
	if !primary {
		return c.Redirect().Status(fiber.StatusMovedPermanently).To(team.URL() + "/edit")
	}
	if !isAdmin {
		return c.Redirect().To(team.URL())
	}

	return c.Render("edit_team", viewData(c, h.cfg, fiber.Map{
		"Team": team,
		"Form": teamFormFromTeam(team),
	}))
}

// EditSubmit updates a team. Every successful edit mints a fresh primary
// slug, even when the title is unchanged; the old slug keeps redirecting.
func (h *TeamHandler) EditSubmit(c fiber.Ctx) error {
	slugName := c.Params("slug")

	team, _, isAdmin, err := h.resolveSlug(c, slugName)
	if team == nil || err != nil {
		return err
	}
	if !isAdmin {
		return c.Redirect().To(team.URL())
	}

	form := parseTeamForm(c)
	if errs := form.validate(); len(errs) > 0 {
		return c.Render("edit_team", viewData(c, h.cfg, fiber.Map{
			"Team":   team,
			"Form":   form,
			"Errors": errs,
		}))
	}

	form.apply(team)
	if err := h.db.UpdateTeam(c.Context(), team); err != nil {
		return err
	}

	newSlug, err := h.alloc.Allocate(c.Context(), team.ID, team.Title)
	if err != nil {
		return err
	}
	if err := h.db.SetPrimarySlug(c.Context(), team.ID, newSlug); err != nil {
		return err
	}

	return c.Redirect().To("/t/" + newSlug)
}

// teamFormFromTeam prefills the edit form from a stored team.
func teamFormFromTeam(team *models.Team) teamForm {
	form := teamForm{
		Title:       team.Title,
		Description: team.Description,
	}
	if team.GoalDollars != nil {
		form.GoalDollars = strconv.Itoa(*team.GoalDollars)
	}
	if team.YouTubeID != nil {
		form.YouTubeID = *team.YouTubeID
	}
	if team.ZipCode != nil {
		form.ZipCode = *team.ZipCode
	}
	return form
}
