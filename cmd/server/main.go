package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/storage/memory/v2"
	"github.com/gofiber/storage/redis/v3"

	"teampages/internal/authz"
	"teampages/internal/config"
	"teampages/internal/db"
	"teampages/internal/extauth"
	"teampages/internal/metrics"
	"teampages/internal/pledge"
	"teampages/internal/server"
	"teampages/internal/slug"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	// Initialize database
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")

	// Register metrics
	metrics.Init(database)

	// Authorization cache backend
	var cache authz.Cache
	if cfg.RedisURL != "" {
		cache = redis.New(redis.Config{URL: cfg.RedisURL})
		log.Println("Authorization cache backed by Redis")
	} else {
		cache = memory.New()
		log.Println("REDIS_URL not set, authorization cache is in-memory")
	}

	// External services - fixtures when no URLs are configured
	var authSvc extauth.Service
	var authFixture *extauth.Fixture
	if cfg.UseFixtureAuth() {
		authFixture = extauth.NewFixture()
		authSvc = authFixture
		log.Println("AUTH_SERVICE_URL not set, using fixture auth service")
	} else {
		authSvc = extauth.NewHTTP(cfg.AuthServiceURL, cfg.AuthServicePublicURL, cfg.ExternalTimeout)
	}

	var pledgeSvc pledge.Service
	if cfg.UseFixturePledge() {
		pledgeSvc = pledge.NewFixture()
		log.Println("PLEDGE_SERVICE_URL not set, using fixture pledge service")
	} else {
		pledgeSvc = pledge.NewHTTP(cfg.PledgeServiceURL, cfg.ExternalTimeout)
	}

	// Initialize server and routes
	srv := server.New(cfg)
	srv.RegisterRoutes(server.Deps{
		DB:          database,
		Auth:        authSvc,
		AuthFixture: authFixture,
		Pledge:      pledgeSvc,
		Authorizer:  authz.New(database, cache),
		Allocator:   slug.New(database),
	})

	// Graceful shutdown
	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("Server started on %s", cfg.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := srv.Shutdown(); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
