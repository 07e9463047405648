package pledge

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"teampages/internal/models"
)

// Fixture is an in-memory pledge service for development and tests.
// Tokens beginning with "valid" resolve to a canned pledge record.
type Fixture struct {
	mu sync.Mutex

	// Entries seeds the leaderboard.
	Entries []models.LeaderboardEntry

	// FailSync makes SyncMailingList return an error, for exercising the
	// log-and-continue path.
	FailSync bool

	thanked []string
	synced  []uuid.UUID
}

// NewFixture creates a fixture pledge service.
func NewFixture() *Fixture {
	return &Fixture{}
}

// LoadPledgeInfo returns canned data for tokens prefixed "valid".
func (f *Fixture) LoadPledgeInfo(_ context.Context, token string) (*models.PledgeInfo, error) {
	if strings.HasPrefix(token, "valid") {
		return &models.PledgeInfo{
			ZipCode:           "55555",
			Name:              "Test User",
			Email:             "testuser@example.com",
			PledgeAmountCents: 10000,
		}, nil
	}
	return nil, ErrNotFound
}

// TeamTotal returns a fixed total.
func (f *Fixture) TeamTotal(context.Context, uuid.UUID) (int64, int, error) {
	return 51800, 7, nil
}

// Leaderboard returns the seeded entries honoring offset/limit.
func (f *Fixture) Leaderboard(_ context.Context, offset, limit int, _ string) ([]models.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if offset >= len(f.Entries) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.Entries) {
		end = len(f.Entries)
	}
	out := make([]models.LeaderboardEntry, end-offset)
	copy(out, f.Entries[offset:end])
	return out, nil
}

// SyncMailingList records the call, or fails when FailSync is set.
func (f *Fixture) SyncMailingList(_ context.Context, team *models.Team) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailSync {
		return errors.New("mailing list sync unavailable")
	}
	f.synced = append(f.synced, team.ID)
	return nil
}

// SendThankYou records the message.
func (f *Fixture) SendThankYou(_ context.Context, team *models.Team, subject, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.thanked = append(f.thanked, team.ID.String()+":"+subject)
	return nil
}

// Synced returns the teams passed to SyncMailingList.
func (f *Fixture) Synced() []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uuid.UUID(nil), f.synced...)
}

// Thanked returns the recorded thank-you sends as "teamID:subject".
func (f *Fixture) Thanked() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.thanked...)
}
