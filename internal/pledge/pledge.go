// Package pledge talks to the external pledge-tracking service: pledge
// record lookup, per-team totals, the leaderboard, mailing-list sync, and
// thank-you delivery.
package pledge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"teampages/internal/models"
)

// ErrNotFound is returned when no pledge record exists for a token.
var ErrNotFound = errors.New("pledge info not found")

// Service is the pledge-service boundary.
type Service interface {
	// LoadPledgeInfo fetches the pledge record for a user token.
	// Returns ErrNotFound when the token is unknown.
	LoadPledgeInfo(ctx context.Context, token string) (*models.PledgeInfo, error)

	// TeamTotal returns the pledged total in cents and the pledge count.
	TeamTotal(ctx context.Context, teamID uuid.UUID) (int64, int, error)

	// Leaderboard returns ranked teams for the given window.
	Leaderboard(ctx context.Context, offset, limit int, orderBy string) ([]models.LeaderboardEntry, error)

	// SyncMailingList pushes the team to the mailing-list provider.
	// Callers treat failures as log-only.
	SyncMailingList(ctx context.Context, team *models.Team) error

	// SendThankYou delivers a thank-you message to the team's pledgers.
	SendThankYou(ctx context.Context, team *models.Team, subject, body string) error
}

// HTTPService talks to a real pledge service.
type HTTPService struct {
	baseURL string
	client  *http.Client
}

// NewHTTP creates an HTTP-backed pledge service client.
func NewHTTP(baseURL string, timeout time.Duration) *HTTPService {
	return &HTTPService{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// LoadPledgeInfo calls GET {base}/user-info/{token}. A 404 means the token
// is unknown; anything else non-200 is an error.
func (s *HTTPService) LoadPledgeInfo(ctx context.Context, token string) (*models.PledgeInfo, error) {
	resp, err := s.get(ctx, s.baseURL+"/user-info/"+url.PathEscape(token))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pledge service returned status %d", resp.StatusCode)
	}

	var payload struct {
		User models.PledgeInfo `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("pledge service returned invalid JSON: %w", err)
	}
	return &payload.User, nil
}

// TeamTotal calls GET {base}/total?team=. The service answers with a bare
// "(cents, count)" tuple string.
func (s *HTTPService) TeamTotal(ctx context.Context, teamID uuid.UUID) (int64, int, error) {
	resp, err := s.get(ctx, s.baseURL+"/total?"+url.Values{"team": {teamID.String()}}.Encode())
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("pledge service returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, 0, err
	}
	return parseTotal(string(raw))
}

// parseTotal parses the service's "(cents, count)" tuple format.
func parseTotal(raw string) (int64, int, error) {
	trimmed := strings.Trim(strings.TrimSpace(raw), "()")
	parts := strings.Split(trimmed, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("unexpected total response %q", raw)
	}
	cents, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("unexpected total response %q: %w", raw, err)
	}
	count, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("unexpected total response %q: %w", raw, err)
	}
	return cents, count, nil
}

// Leaderboard calls GET {base}/leaderboard with paging parameters.
func (s *HTTPService) Leaderboard(ctx context.Context, offset, limit int, orderBy string) ([]models.LeaderboardEntry, error) {
	query := url.Values{
		"offset":  {strconv.Itoa(offset)},
		"limit":   {strconv.Itoa(limit)},
		"orderBy": {orderBy},
	}
	resp, err := s.get(ctx, s.baseURL+"/leaderboard?"+query.Encode())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pledge service returned status %d", resp.StatusCode)
	}

	var entries []models.LeaderboardEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("pledge service returned invalid JSON: %w", err)
	}
	return entries, nil
}

// SyncMailingList calls POST {base}/mailchimp for the team.
func (s *HTTPService) SyncMailingList(ctx context.Context, team *models.Team) error {
	resp, err := s.post(ctx, s.baseURL+"/mailchimp", map[string]any{"team": team.ID.String()})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pledge service returned status %d", resp.StatusCode)
	}
	return nil
}

// SendThankYou calls POST {base}/thank with the message.
func (s *HTTPService) SendThankYou(ctx context.Context, team *models.Team, subject, body string) error {
	resp, err := s.post(ctx, s.baseURL+"/thank", map[string]any{
		"team":    team.ID.String(),
		"subject": subject,
		"body":    body,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pledge service returned status %d", resp.StatusCode)
	}
	return nil
}

func (s *HTTPService) get(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	return s.client.Do(req)
}

func (s *HTTPService) post(ctx context.Context, reqURL string, payload map[string]any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return s.client.Do(req)
}
