package models

import "github.com/google/uuid"

// PledgeInfo is the pledge-service record for a user token.
type PledgeInfo struct {
	ZipCode           string `json:"zip_code"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	PledgeAmountCents int    `json:"pledge_amount_cents"`
}

// LeaderboardEntry is one row of the pledge-service leaderboard.
type LeaderboardEntry struct {
	TeamID     uuid.UUID `json:"team"`
	TotalCents int64     `json:"total_cents"`
	NumPledges int       `json:"num_pledges"`
}
