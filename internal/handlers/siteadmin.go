package handlers

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"teampages/internal/config"
	"teampages/internal/db"
)

// SiteAdminHandler handles the operator-only export of all teams.
type SiteAdminHandler struct {
	db  *db.DB
	cfg *config.Config
}

// NewSiteAdminHandler creates a new site-admin handler.
func NewSiteAdminHandler(database *db.DB, cfg *config.Config) *SiteAdminHandler {
	return &SiteAdminHandler{db: database, cfg: cfg}
}

// Export dumps every team as CSV (default) or JSON. Operators are listed
// in SITE_ADMIN_IDS; everyone else gets the 404 page. Teams that are still
// slugless export with an empty URL.
func (h *SiteAdminHandler) Export(c fiber.Ctx) error {
	user := CurrentUser(c)
	if user == nil || !h.cfg.IsSiteAdmin(user.UserID) {
		return renderNotFound(c, h.cfg)
	}

	teams, err := h.db.GetAllTeams(c.Context())
	if err != nil {
		return err
	}

	if c.Query("format", "csv") == "json" {
		return c.JSON(fiber.Map{
			"status": "ok",
			"data":   teams,
		})
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"id", "url", "title", "goal_dollars", "youtube_id", "zip_code", "user_token", "created_at"})
	for i := range teams {
		team := &teams[i]
		w.Write([]string{
			team.ID.String(),
			team.URL(),
			team.Title,
			formatOptionalInt(team.GoalDollars),
			formatOptional(team.YouTubeID),
			formatOptional(team.ZipCode),
			formatOptional(team.UserToken),
			team.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	c.Set("Content-Type", "text/csv; charset=utf-8")
	c.Set("Content-Disposition", `attachment; filename="teams.csv"`)
	return c.Send(buf.Bytes())
}

func formatOptional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatOptionalInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
