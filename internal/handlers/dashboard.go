package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"teampages/internal/authz"
	"teampages/internal/config"
	"teampages/internal/db"
	"teampages/internal/models"
	"teampages/internal/pledge"
	"teampages/internal/slug"
)

// DashboardHandler handles the dashboard and team creation flows.
type DashboardHandler struct {
	db     *db.DB
	cfg    *config.Config
	authz  *authz.Authorizer
	pledge pledge.Service
	alloc  *slug.Allocator
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(database *db.DB, cfg *config.Config, authorizer *authz.Authorizer, pledgeSvc pledge.Service, alloc *slug.Allocator) *DashboardHandler {
	return &DashboardHandler{db: database, cfg: cfg, authz: authorizer, pledge: pledgeSvc, alloc: alloc}
}

// Dashboard lists the teams the user administers. Teams still waiting on
// their first slug allocation render without a link.
func (h *DashboardHandler) Dashboard(c fiber.Ctx) error {
	user := CurrentUser(c)

	teams, err := h.db.GetTeamsForAdmin(c.Context(), user.UserID)
	if err != nil {
		return err
	}

	return c.Render("dashboard", viewData(c, h.cfg, fiber.Map{
		"Teams": teams,
	}))
}

// NewForm renders the create-team form.
func (h *DashboardHandler) NewForm(c fiber.Ctx) error {
	return c.Render("new_team", viewData(c, h.cfg, fiber.Map{
		"Action": "/dashboard/new",
		"Form":   teamForm{},
	}))
}

// Create persists a new team, grants the creator admin rights, and mints
// the first slug. The team row lands before the slug does; nothing outside
// this request observes the slugless window except listings, which
// tolerate it.
func (h *DashboardHandler) Create(c fiber.Ctx) error {
	form := parseTeamForm(c)
	if errs := form.validate(); len(errs) > 0 {
		return c.Render("new_team", viewData(c, h.cfg, fiber.Map{
			"Action": "/dashboard/new",
			"Form":   form,
			"Errors": errs,
		}))
	}

	team := &models.Team{}
	form.apply(team)

	slugName, err := h.createTeam(c, team, CurrentUser(c))
	if err != nil {
		return err
	}
	return c.Redirect().To("/t/" + slugName)
}

// createTeam runs the shared create orchestration: persist, grant, allocate,
// point primary_slug at the new reservation.
func (h *DashboardHandler) createTeam(c fiber.Ctx, team *models.Team, creator *models.User) (string, error) {
	if err := h.db.CreateTeam(c.Context(), team); err != nil {
		return "", err
	}

	if creator != nil {
		if err := h.authz.Grant(c.Context(), creator.UserID, team.ID); err != nil {
			return "", err
		}
	}

	slugName, err := h.alloc.Allocate(c.Context(), team.ID, team.Title)
	if err != nil {
		return "", err
	}
	if err := h.db.SetPrimarySlug(c.Context(), team.ID, slugName); err != nil {
		return "", err
	}
	primary := slugName
	team.PrimarySlug = &primary
	return slugName, nil
}

// NewFromPledge renders the create form prefilled from an external pledge
// record. If a team already owns the token the visitor is sent to it.
func (h *DashboardHandler) NewFromPledge(c fiber.Ctx) error {
	token := c.Params("token")

	if team, err := h.db.GetTeamByUserToken(c.Context(), token); err == nil {
		return c.Redirect().To(teamOrDashboard(team))
	} else if !errors.Is(err, db.ErrTeamNotFound) {
		return err
	}

	info, err := h.loadPledgeInfo(c, token)
	if info == nil || err != nil {
		return err
	}

	return c.Render("new_team", viewData(c, h.cfg, fiber.Map{
		"Action": "/dashboard/new_from_pledge/" + token,
		"Form": teamForm{
			Title:   info.Name + "'s Team Page",
			ZipCode: info.ZipCode,
		},
		"PledgeInfo": info,
	}))
}

// CreateFromPledge creates the team carrying the pledge token. A logged-in
// creator is granted admin immediately; an anonymous creator claims the
// team later via the add-admin link. The mailing-list sync is best effort.
func (h *DashboardHandler) CreateFromPledge(c fiber.Ctx) error {
	token := c.Params("token")

	if team, err := h.db.GetTeamByUserToken(c.Context(), token); err == nil {
		return c.Redirect().To(teamOrDashboard(team))
	} else if !errors.Is(err, db.ErrTeamNotFound) {
		return err
	}

	info, err := h.loadPledgeInfo(c, token)
	if info == nil || err != nil {
		return err
	}

	form := parseTeamForm(c)
	if errs := form.validate(); len(errs) > 0 {
		return c.Render("new_team", viewData(c, h.cfg, fiber.Map{
			"Action":     "/dashboard/new_from_pledge/" + token,
			"Form":       form,
			"Errors":     errs,
			"PledgeInfo": info,
		}))
	}

	team := &models.Team{UserToken: &token}
	form.apply(team)

	slugName, err := h.createTeam(c, team, CurrentUser(c))
	if err != nil {
		// Two imports racing on one token: the loser follows the winner.
		if errors.Is(err, db.ErrDuplicateUserToken) {
			if existing, lookupErr := h.db.GetTeamByUserToken(c.Context(), token); lookupErr == nil {
				return c.Redirect().To(teamOrDashboard(existing))
			}
		}
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context(), h.cfg.ExternalTimeout)
	defer cancel()
	if err := h.pledge.SyncMailingList(ctx, team); err != nil {
		slog.Warn("mailing list sync failed", "team", team.ID, "error", err)
	}

	return c.Redirect().To("/t/" + slugName)
}

// AddAdminFromPledge grants the logged-in user admin rights on the team
// imported from the given pledge token.
func (h *DashboardHandler) AddAdminFromPledge(c fiber.Ctx) error {
	token := c.Params("token")

	team, err := h.db.GetTeamByUserToken(c.Context(), token)
	if err != nil {
		if errors.Is(err, db.ErrTeamNotFound) {
			return renderNotFound(c, h.cfg)
		}
		return err
	}

	user := CurrentUser(c)
	if err := h.authz.Grant(c.Context(), user.UserID, team.ID); err != nil {
		return err
	}

	return c.Redirect().To(teamOrDashboard(team))
}

// teamOrDashboard returns the team page path, falling back to the
// dashboard while the team has no slug yet.
func teamOrDashboard(team *models.Team) string {
	if url := team.URL(); url != "" {
		return url
	}
	return "/dashboard"
}

// loadPledgeInfo fetches the pledge record, rendering the 404 page for an
// unknown token. A nil result with nil error means the response is done.
func (h *DashboardHandler) loadPledgeInfo(c fiber.Ctx, token string) (*models.PledgeInfo, error) {
	ctx, cancel := context.WithTimeout(c.Context(), h.cfg.ExternalTimeout)
	defer cancel()

	info, err := h.pledge.LoadPledgeInfo(ctx, token)
	if err != nil {
		if errors.Is(err, pledge.ErrNotFound) {
			return nil, renderNotFound(c, h.cfg)
		}
		return nil, err
	}
	return info, nil
}
