package models

// User is the identity resolved by the external auth service.
type User struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

// Session is the per-request authentication state. A failed or timed-out
// auth-service call collapses to the zero value (logged out).
type Session struct {
	LoggedIn   bool              `json:"logged_in"`
	User       *User             `json:"user,omitempty"`
	LoginLinks map[string]string `json:"login_links,omitempty"`
	LogoutLink string            `json:"-"`
}

// LoggedOut returns a session representing an unauthenticated request.
func LoggedOut() *Session {
	return &Session{LoggedIn: false, LoginLinks: map[string]string{}}
}
