package models

import "time"

// Page view outcomes.
const (
	ViewPrimary  = "primary"
	ViewRedirect = "redirect"
	ViewMissing  = "missing"
)

// PageView is an aggregated slug lookup count by outcome, exported
// through the Prometheus collector.
type PageView struct {
	Slug       string    `json:"slug"`
	Outcome    string    `json:"outcome"`
	Count      int64     `json:"count"`
	LastSeenAt time.Time `json:"last_seen_at"`
}
