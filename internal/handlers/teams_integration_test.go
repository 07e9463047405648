package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/storage/memory/v2"

	"teampages/internal/authz"
	"teampages/internal/config"
	"teampages/internal/db"
	"teampages/internal/middleware"
	"teampages/internal/models"
	"teampages/internal/pledge"
	"teampages/internal/slug"
	"teampages/internal/testutil"
)

// newTeamTestApp wires a team handler behind a stub session middleware.
// Routes that render templates are left unregistered; these tests cover
// the redirect and mutation paths.
func newTeamTestApp(database *db.DB, session *models.Session) (*fiber.App, *TeamHandler, *authz.Authorizer) {
	cfg := &config.Config{
		BaseURL:         "http://app.example",
		ExternalTimeout: time.Second,
	}
	authorizer := authz.New(database, memory.New())
	h := NewTeamHandler(database, cfg, authorizer, pledge.NewFixture(), slug.New(database))

	app := fiber.New()
	app.Use(func(c fiber.Ctx) error {
		c.Locals(middleware.SessionKey, session)
		return c.Next()
	})
	app.Get("/t/:slug", h.Show)
	app.Post("/t/:slug/edit", h.EditSubmit)
	return app, h, authorizer
}

func createTeamWithSlug(t *testing.T, database *db.DB, title string) *models.Team {
	t.Helper()
	ctx := context.Background()

	team := &models.Team{Title: title, Description: "A team."}
	if err := database.CreateTeam(ctx, team); err != nil {
		t.Fatalf("CreateTeam() error = %v", err)
	}

	allocated, err := slug.New(database).Allocate(ctx, team.ID, title)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if err := database.SetPrimarySlug(ctx, team.ID, allocated); err != nil {
		t.Fatalf("SetPrimarySlug() error = %v", err)
	}
	team.PrimarySlug = &allocated
	return team
}

func postForm(t *testing.T, app *fiber.App, path string, form url.Values) *http.Response {
	t.Helper()
	req, _ := http.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func TestHistoricalSlugRedirects(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	team := createTeamWithSlug(t, database, "Original Title")
	oldSlug := *team.PrimarySlug

	// Mint a new primary slug; the old one becomes historical.
	newSlug, err := slug.New(database).Allocate(ctx, team.ID, "Renamed")
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if err := database.SetPrimarySlug(ctx, team.ID, newSlug); err != nil {
		t.Fatalf("SetPrimarySlug() error = %v", err)
	}

	app, _, _ := newTeamTestApp(database, models.LoggedOut())

	req, _ := http.NewRequest("GET", "/t/"+oldSlug, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusMovedPermanently {
		t.Fatalf("status = %d, want 301", resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != "/t/"+newSlug {
		t.Errorf("Location = %q, want %q", got, "/t/"+newSlug)
	}
}

func TestEditSubmitMintsNewSlug(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	team := createTeamWithSlug(t, database, "My Pledge Page")
	oldSlug := *team.PrimarySlug

	admin := &models.Session{
		LoggedIn: true,
		User:     &models.User{UserID: "admin-1", Name: "Admin"},
	}
	app, _, authorizer := newTeamTestApp(database, admin)
	if err := authorizer.Grant(ctx, "admin-1", team.ID); err != nil {
		t.Fatalf("Grant() error = %v", err)
	}

	resp := postForm(t, app, "/t/"+oldSlug+"/edit", url.Values{
		"title":       {"Renamed Page"},
		"description": {"Updated."},
	})
	if resp.StatusCode != fiber.StatusFound && resp.StatusCode != fiber.StatusSeeOther {
		t.Fatalf("status = %d, want redirect", resp.StatusCode)
	}

	location := resp.Header.Get("Location")
	if !strings.HasPrefix(location, "/t/") {
		t.Fatalf("Location = %q, want a team page", location)
	}
	newSlug := strings.TrimPrefix(location, "/t/")
	if newSlug == oldSlug {
		t.Error("edit did not mint a new slug")
	}
	if !strings.HasSuffix(newSlug, "-Renamed-Page") {
		t.Errorf("new slug = %q, want suffix -Renamed-Page", newSlug)
	}

	// The update landed and the new slug is primary.
	got, err := database.GetTeamByID(ctx, team.ID)
	if err != nil {
		t.Fatalf("GetTeamByID() error = %v", err)
	}
	if got.Title != "Renamed Page" {
		t.Errorf("Title = %q, want Renamed Page", got.Title)
	}
	if got.PrimarySlug == nil || *got.PrimarySlug != newSlug {
		t.Errorf("PrimarySlug = %v, want %q", got.PrimarySlug, newSlug)
	}

	// Both slugs still resolve to the team; the old one redirects.
	req, _ := http.NewRequest("GET", "/t/"+oldSlug, nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusMovedPermanently {
		t.Errorf("old slug status = %d, want 301", resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != "/t/"+newSlug {
		t.Errorf("old slug Location = %q, want %q", got, "/t/"+newSlug)
	}
}

func TestEditSubmitNonAdminRedirectsToView(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	team := createTeamWithSlug(t, database, "Locked Page")

	visitor := &models.Session{
		LoggedIn: true,
		User:     &models.User{UserID: "stranger", Name: "Stranger"},
	}
	app, _, _ := newTeamTestApp(database, visitor)

	resp := postForm(t, app, "/t/"+*team.PrimarySlug+"/edit", url.Values{
		"title":       {"Hijacked"},
		"description": {"x"},
	})
	if resp.StatusCode != fiber.StatusFound && resp.StatusCode != fiber.StatusSeeOther {
		t.Fatalf("status = %d, want redirect", resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != "/t/"+*team.PrimarySlug {
		t.Errorf("Location = %q, want the team page", got)
	}

	got, err := database.GetTeamByID(ctx, team.ID)
	if err != nil {
		t.Fatalf("GetTeamByID() error = %v", err)
	}
	if got.Title != "Locked Page" {
		t.Errorf("Title = %q, non-admin edit went through", got.Title)
	}
}
