package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"teampages/internal/config"
	"teampages/internal/db"
	"teampages/internal/models"
	"teampages/internal/pledge"
)

const (
	leaderboardDefaultLimit = 25
	leaderboardMaxLimit     = 100
)

// LeaderboardHandler renders the site-wide leaderboard sourced from the
// pledge service.
type LeaderboardHandler struct {
	db     *db.DB
	cfg    *config.Config
	pledge pledge.Service
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(database *db.DB, cfg *config.Config, pledgeSvc pledge.Service) *LeaderboardHandler {
	return &LeaderboardHandler{db: database, cfg: cfg, pledge: pledgeSvc}
}

// leaderboardRow pairs a pledge-service entry with its local team record.
type leaderboardRow struct {
	Team         *models.Team
	URL          string
	TotalDollars int64
	NumPledges   int
}

// Leaderboard renders ranked teams. Entries whose team record is missing
// locally, or whose team has no slug yet, still render without a link.
func (h *LeaderboardHandler) Leaderboard(c fiber.Ctx) error {
	offset := queryInt(c, "offset", 0)
	limit := queryInt(c, "limit", leaderboardDefaultLimit)
	orderBy := c.Query("orderBy", "total")
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > leaderboardMaxLimit {
		limit = leaderboardDefaultLimit
	}

	ctx, cancel := context.WithTimeout(c.Context(), h.cfg.ExternalTimeout)
	defer cancel()
	entries, err := h.pledge.Leaderboard(ctx, offset, limit, orderBy)
	if err != nil {
		return err
	}

	rows := make([]leaderboardRow, 0, len(entries))
	for _, entry := range entries {
		row := leaderboardRow{
			TotalDollars: entry.TotalCents / 100,
			NumPledges:   entry.NumPledges,
		}
		team, err := h.db.GetTeamByID(c.Context(), entry.TeamID)
		if err != nil && !errors.Is(err, db.ErrTeamNotFound) {
			return err
		}
		if team != nil {
			row.Team = team
			row.URL = team.URL()
		}
		rows = append(rows, row)
	}

	return c.Render("leaderboard", viewData(c, h.cfg, fiber.Map{
		"Rows":       rows,
		"Offset":     offset,
		"Limit":      limit,
		"OrderBy":    orderBy,
		"NextOffset": offset + limit,
		"PrevOffset": max(0, offset-limit),
		"HasPrev":    offset > 0,
		"HasNext":    len(rows) == limit,
	}))
}

func queryInt(c fiber.Ctx, key string, fallback int) int {
	raw := c.Query(key, "")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
