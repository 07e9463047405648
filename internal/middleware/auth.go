package middleware

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"teampages/internal/config"
	"teampages/internal/extauth"
	"teampages/internal/models"
)

// SessionKey is the Locals key the resolved session is stored under.
const SessionKey = "session"

// AuthMiddleware resolves the delegated auth session for every request.
type AuthMiddleware struct {
	auth extauth.Service
	cfg  *config.Config
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(auth extauth.Service, cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{auth: auth, cfg: cfg}
}

// Resolve calls the auth service with the request's auth cookie and stores
// the session in Locals. A failed or timed-out call degrades to logged out
// rather than failing the request.
func (m *AuthMiddleware) Resolve(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), m.cfg.ExternalTimeout)
	defer cancel()

	returnTo := m.cfg.BaseURL + c.OriginalURL()
	session, err := m.auth.CurrentUser(ctx, c.Cookies("auth"), returnTo)
	if err != nil {
		slog.Warn("failed getting current user, assuming logged out", "error", err)
		session = models.LoggedOut()
	}

	c.Locals(SessionKey, session)
	return c.Next()
}

// RequireLogin redirects unauthenticated requests to the landing page.
// Must run after Resolve.
func (m *AuthMiddleware) RequireLogin(c fiber.Ctx) error {
	session, _ := c.Locals(SessionKey).(*models.Session)
	if session == nil || !session.LoggedIn {
		return c.Redirect().To("/")
	}
	return c.Next()
}
