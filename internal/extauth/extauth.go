// Package extauth resolves sessions against the delegated auth service.
//
// The service is the system of record for identity: the app forwards the
// browser's auth cookie and gets back a logged_in/user/login_links JSON
// document. It is treated as untrusted and unreliable; callers degrade any
// failure to a logged-out session.
package extauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"teampages/internal/models"
)

// Service resolves the current session and builds logout links.
type Service interface {
	// CurrentUser resolves the session behind the auth cookie. returnTo is
	// the absolute URL the auth service should send the browser back to.
	CurrentUser(ctx context.Context, authCookie, returnTo string) (*models.Session, error)

	// LogoutLink returns the URL that terminates the session.
	LogoutLink(returnTo string) string
}

// HTTPService talks to a real auth service over HTTPS.
type HTTPService struct {
	baseURL   string
	publicURL string
	client    *http.Client
}

// NewHTTP creates an HTTP-backed auth service client. baseURL is used for
// server-to-server requests, publicURL for links handed to browsers (the
// two differ when the service is reached over an internal address).
func NewHTTP(baseURL, publicURL string, timeout time.Duration) *HTTPService {
	if publicURL == "" {
		publicURL = baseURL
	}
	return &HTTPService{
		baseURL:   baseURL,
		publicURL: publicURL,
		client:    &http.Client{Timeout: timeout},
	}
}

// CurrentUser calls GET {base}/v1/current_user with the auth cookie.
// Any transport error or non-200 status is returned as an error; the
// middleware maps that to a logged-out session.
func (s *HTTPService) CurrentUser(ctx context.Context, authCookie, returnTo string) (*models.Session, error) {
	reqURL := s.baseURL + "/v1/current_user?" + url.Values{"return_to": {returnTo}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.AddCookie(&http.Cookie{Name: "auth", Value: authCookie})

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth service returned status %d", resp.StatusCode)
	}

	var session models.Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("auth service returned invalid JSON: %w", err)
	}
	if session.LoginLinks == nil {
		session.LoginLinks = map[string]string{}
	}
	session.LogoutLink = s.LogoutLink(returnTo)
	return &session, nil
}

// LogoutLink builds the public logout URL.
func (s *HTTPService) LogoutLink(returnTo string) string {
	return s.publicURL + "/v1/logout?" + url.Values{"return_to": {returnTo}}.Encode()
}
