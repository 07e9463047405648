package config

import (
	"os"
	"strings"
	"time"
)

// Config holds all application configuration loaded from environment variables.
// Constructed once at startup and passed into every component; there is no
// ambient global configuration.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string

	// Database
	DatabaseURL string

	// Cache backend for the authorization cache. Empty selects the
	// in-memory storage (development/tests).
	RedisURL string

	// External services. Empty URLs select the in-process fixture
	// implementations (development/tests).
	AuthServiceURL       string // used for server-to-server requests
	AuthServicePublicURL string // used when building links shown to browsers
	PledgeServiceURL     string

	// ExternalTimeout bounds every individual external-service call.
	ExternalTimeout time.Duration

	// SiteAdminIDs lists user IDs allowed on /site-admin, comma-separated.
	SiteAdminIDs string

	// Site Branding
	SiteTitle   string // env: SITE_TITLE, default: "Team Pages"
	SiteTagline string // env: SITE_TAGLINE
	SiteFooter  string // env: SITE_FOOTER
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	authURL := getEnv("AUTH_SERVICE_URL", "")
	return &Config{
		Env:                  getEnv("ENV", "development"),
		ServerAddr:           getEnv("SERVER_ADDR", ":3000"),
		BaseURL:              getEnv("BASE_URL", "http://localhost:3000"),
		DatabaseURL:          getEnv("DATABASE_URL", "postgres://localhost:5432/teampages?sslmode=disable"),
		RedisURL:             getEnv("REDIS_URL", ""),
		AuthServiceURL:       authURL,
		AuthServicePublicURL: getEnv("AUTH_SERVICE_PUBLIC_URL", authURL),
		PledgeServiceURL:     getEnv("PLEDGE_SERVICE_URL", ""),
		ExternalTimeout:      getDurationEnv("EXTERNAL_TIMEOUT", 5*time.Second),
		SiteAdminIDs:         getEnv("SITE_ADMIN_IDS", ""),

		SiteTitle:   getEnv("SITE_TITLE", "Team Pages"),
		SiteTagline: getEnv("SITE_TAGLINE", "Start a pledge page for your team"),
		SiteFooter:  getEnv("SITE_FOOTER", "Team Pages"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// UseFixtureAuth reports whether the in-process fixture auth service is active.
func (c *Config) UseFixtureAuth() bool {
	return c.AuthServiceURL == ""
}

// UseFixturePledge reports whether the in-process fixture pledge service is active.
func (c *Config) UseFixturePledge() bool {
	return c.PledgeServiceURL == ""
}

// IsSiteAdmin reports whether the user ID is an operator.
func (c *Config) IsSiteAdmin(userID string) bool {
	if userID == "" {
		return false
	}
	for _, id := range strings.Split(c.SiteAdminIDs, ",") {
		if strings.TrimSpace(id) == userID {
			return true
		}
	}
	return false
}
