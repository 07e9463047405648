package models

import (
	"time"

	"github.com/google/uuid"
)

// Team represents a fundraising team page.
//
// PrimarySlug is nil between the initial insert and the first successful
// slug allocation. Readers that build URLs must tolerate that window.
type Team struct {
	ID          uuid.UUID  `json:"id"`
	PrimarySlug *string    `json:"primary_slug"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	GoalDollars *int       `json:"goal_dollars"`
	YouTubeID   *string    `json:"youtube_id"`
	ZipCode     *string    `json:"zip_code"`
	UserToken   *string    `json:"user_token"` // external pledge-service correlation id
	Version     int        `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// URL returns the team page path, or "" while the team has no slug yet.
func (t *Team) URL() string {
	if t.PrimarySlug == nil || *t.PrimarySlug == "" {
		return ""
	}
	return "/t/" + *t.PrimarySlug
}

// SlugEntry is a durable slug reservation pointing at its owning team.
type SlugEntry struct {
	Slug      string    `json:"slug"`
	TeamID    uuid.UUID `json:"team_id"`
	CreatedAt time.Time `json:"created_at"`
}
