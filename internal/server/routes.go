package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"teampages/internal/authz"
	"teampages/internal/db"
	"teampages/internal/extauth"
	"teampages/internal/handlers"
	"teampages/internal/middleware"
	"teampages/internal/pledge"
	"teampages/internal/slug"
)

// Deps carries the constructed application components into route
// registration. Everything is built once in main and injected; handlers
// hold no ambient globals.
type Deps struct {
	DB          *db.DB
	Auth        extauth.Service
	AuthFixture *extauth.Fixture // non-nil only in fixture mode
	Pledge      pledge.Service
	Authorizer  *authz.Authorizer
	Allocator   *slug.Allocator
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(deps Deps) {
	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(deps.Auth, s.Cfg)

	// Initialize handlers
	homeHandler := handlers.NewHomeHandler(s.Cfg)
	teamHandler := handlers.NewTeamHandler(deps.DB, s.Cfg, deps.Authorizer, deps.Pledge, deps.Allocator)
	dashboardHandler := handlers.NewDashboardHandler(deps.DB, s.Cfg, deps.Authorizer, deps.Pledge, deps.Allocator)
	leaderboardHandler := handlers.NewLeaderboardHandler(deps.DB, s.Cfg, deps.Pledge)
	siteAdminHandler := handlers.NewSiteAdminHandler(deps.DB, s.Cfg)
	healthHandler := handlers.NewHealthHandler(deps.DB)

	// Every page resolves the delegated session; failures degrade to
	// logged-out rather than failing the request.
	s.App.Use(authMiddleware.Resolve)

	// Landing and login
	s.App.Get("/", homeHandler.Index)
	s.App.Get("/login", homeHandler.LoginForm)
	s.App.Post("/login", homeHandler.LoginSubmit)

	// Dashboard routes (login required)
	s.App.Get("/dashboard", authMiddleware.RequireLogin, dashboardHandler.Dashboard)
	s.App.Get("/dashboard/new", authMiddleware.RequireLogin, dashboardHandler.NewForm)
	s.App.Post("/dashboard/new", authMiddleware.RequireLogin, dashboardHandler.Create)
	s.App.Get("/dashboard/add_admin_from_pledge/:token", authMiddleware.RequireLogin, dashboardHandler.AddAdminFromPledge)

	// Pledge import works for anonymous visitors too; an anonymous
	// creator claims admin rights later via the add-admin link.
	s.App.Get("/dashboard/new_from_pledge/:token", dashboardHandler.NewFromPledge)
	s.App.Post("/dashboard/new_from_pledge/:token", dashboardHandler.CreateFromPledge)

	// Team pages; admin checks happen inside the handlers so non-admins
	// are redirected to the view rather than walled off.
	s.App.Get("/t/:slug", teamHandler.Show)
	s.App.Get("/t/:slug/edit", teamHandler.EditForm)
	s.App.Post("/t/:slug/edit", teamHandler.EditSubmit)
	s.App.Get("/t/:slug/thank", teamHandler.ThankForm)
	s.App.Post("/t/:slug/thank", teamHandler.ThankSubmit)

	// Leaderboard
	s.App.Get("/leaderboard", leaderboardHandler.Leaderboard)

	// Operator export
	s.App.Get("/site-admin", siteAdminHandler.Export)

	// Ops endpoints
	s.App.Get("/healthz", healthHandler.Healthz)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Fixture auth routes, development only
	if deps.AuthFixture != nil {
		testAuthHandler := handlers.NewTestAuthHandler(deps.AuthFixture)
		s.App.Get("/_testing/auth", testAuthHandler.Get)
		s.App.Post("/_testing/auth", testAuthHandler.Post)
	}

	// Catch-all 404
	s.App.Use(homeHandler.NotFound)
}
