package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"teampages/internal/models"
	"teampages/internal/validation"
)

// teamForm carries the raw create/edit form fields.
type teamForm struct {
	Title       string
	Description string
	GoalDollars string
	YouTubeID   string
	ZipCode     string
}

func parseTeamForm(c fiber.Ctx) teamForm {
	return teamForm{
		Title:       strings.TrimSpace(c.FormValue("title")),
		Description: c.FormValue("description"),
		GoalDollars: strings.TrimSpace(c.FormValue("goal_dollars")),
		YouTubeID:   strings.TrimSpace(c.FormValue("youtube_id")),
		ZipCode:     strings.TrimSpace(c.FormValue("zip_code")),
	}
}

// validate checks the form and returns field-level error messages.
// An empty map means the form is valid.
func (f teamForm) validate() map[string]string {
	errs := map[string]string{}
	if f.Title == "" {
		errs["title"] = "Title is required"
	}
	if f.Description == "" {
		errs["description"] = "Description is required"
	}
	if _, ok := validation.ParseGoalDollars(f.GoalDollars); !ok {
		errs["goal_dollars"] = "Goal must be a whole non-negative dollar amount"
	}
	if f.YouTubeID != "" && !validation.ValidateYouTubeID(f.YouTubeID) {
		errs["youtube_id"] = "Invalid YouTube video id"
	}
	if f.ZipCode != "" && !validation.ValidateZipCode(f.ZipCode) {
		errs["zip_code"] = "Zip code must be digits only"
	}
	return errs
}

// apply copies the validated form fields onto the team. Must only be
// called after validate returned no errors.
func (f teamForm) apply(team *models.Team) {
	team.Title = f.Title
	team.Description = f.Description
	goal, _ := validation.ParseGoalDollars(f.GoalDollars)
	team.GoalDollars = goal
	team.YouTubeID = optional(f.YouTubeID)
	team.ZipCode = optional(f.ZipCode)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
