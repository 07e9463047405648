package extauth

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"sync"

	"teampages/internal/models"
)

// FixtureProviders are the login providers the fixture service offers.
var FixtureProviders = []string{"google", "facebook", "twitter", "yahoo"}

// Fixture is an in-memory auth service for development and tests. Login
// state lives in the process; the /_testing/auth routes mutate it.
type Fixture struct {
	mu       sync.Mutex
	loggedIn bool
	user     *models.User
}

// NewFixture creates a logged-out fixture auth service.
func NewFixture() *Fixture {
	return &Fixture{}
}

// Login marks the fixture as logged in with a deterministic user ID.
func (f *Fixture) Login(name, provider string) {
	sum := md5.Sum([]byte(provider + ":" + name))
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedIn = true
	f.user = &models.User{
		UserID:   hex.EncodeToString(sum[:]),
		Name:     name,
		Provider: provider,
	}
}

// Logout marks the fixture as logged out.
func (f *Fixture) Logout() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedIn = false
	f.user = nil
}

// CurrentUser returns the fixture's in-memory session state.
func (f *Fixture) CurrentUser(_ context.Context, _, returnTo string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.loggedIn {
		links := make(map[string]string, len(FixtureProviders))
		for _, provider := range FixtureProviders {
			links[provider] = loginLink(provider, returnTo)
		}
		return &models.Session{LoggedIn: false, LoginLinks: links}, nil
	}

	user := *f.user
	return &models.Session{
		LoggedIn:   true,
		User:       &user,
		LoginLinks: map[string]string{},
		LogoutLink: f.LogoutLink(returnTo),
	}, nil
}

// LogoutLink returns the fixture logout URL.
func (f *Fixture) LogoutLink(returnTo string) string {
	return "/_testing/auth?" + url.Values{
		"action":    {"logout"},
		"return_to": {returnTo},
	}.Encode()
}

func loginLink(provider, returnTo string) string {
	return "/_testing/auth?" + url.Values{
		"action":    {"login"},
		"provider":  {provider},
		"return_to": {returnTo},
	}.Encode()
}
