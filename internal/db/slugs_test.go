package db

import (
	"context"
	"errors"
	"sync"
	"testing"

	"teampages/internal/models"
)

func TestReserveSlugWinnerAndLoser(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	teamA := &models.Team{Title: "A", Description: "d"}
	teamB := &models.Team{Title: "B", Description: "d"}
	for _, team := range []*models.Team{teamA, teamB} {
		if err := db.CreateTeam(ctx, team); err != nil {
			t.Fatalf("CreateTeam() error = %v", err)
		}
	}

	won, err := db.ReserveSlug(ctx, "abcd-Shared", teamA.ID)
	if err != nil {
		t.Fatalf("ReserveSlug() error = %v", err)
	}
	if !won {
		t.Fatal("first ReserveSlug() = false, want true")
	}

	won, err = db.ReserveSlug(ctx, "abcd-Shared", teamB.ID)
	if err != nil {
		t.Fatalf("ReserveSlug() error = %v", err)
	}
	if won {
		t.Error("second ReserveSlug() = true, want false")
	}

	// The reservation still belongs to the winner.
	entry, err := db.GetSlug(ctx, "abcd-Shared")
	if err != nil {
		t.Fatalf("GetSlug() error = %v", err)
	}
	if entry.TeamID != teamA.ID {
		t.Errorf("GetSlug().TeamID = %v, want %v", entry.TeamID, teamA.ID)
	}
}

func TestReserveSlugConcurrentSingleWinner(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	team := &models.Team{Title: "T", Description: "d"}
	if err := db.CreateTeam(ctx, team); err != nil {
		t.Fatalf("CreateTeam() error = %v", err)
	}

	const racers = 10
	wins := make(chan bool, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			won, err := db.ReserveSlug(ctx, "ffff-Contested", team.ID)
			if err != nil {
				t.Errorf("ReserveSlug() error = %v", err)
				return
			}
			wins <- won
		}()
	}
	wg.Wait()
	close(wins)

	winners := 0
	for won := range wins {
		if won {
			winners++
		}
	}
	if winners != 1 {
		t.Errorf("winners = %d, want exactly 1", winners)
	}
}

func TestGetSlugNotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	if _, err := db.GetSlug(context.Background(), "never-reserved"); !errors.Is(err, ErrSlugNotFound) {
		t.Errorf("GetSlug() error = %v, want ErrSlugNotFound", err)
	}
}

func TestGetSlugsForTeam(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	team := &models.Team{Title: "T", Description: "d"}
	if err := db.CreateTeam(ctx, team); err != nil {
		t.Fatalf("CreateTeam() error = %v", err)
	}

	for _, slug := range []string{"aa-T", "bbcc-T"} {
		if won, err := db.ReserveSlug(ctx, slug, team.ID); err != nil || !won {
			t.Fatalf("ReserveSlug(%q) = %v, %v", slug, won, err)
		}
	}

	entries, err := db.GetSlugsForTeam(ctx, team.ID)
	if err != nil {
		t.Fatalf("GetSlugsForTeam() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("GetSlugsForTeam() returned %d entries, want 2", len(entries))
	}
	for _, entry := range entries {
		if entry.TeamID != team.ID {
			t.Errorf("entry %q TeamID = %v, want %v", entry.Slug, entry.TeamID, team.ID)
		}
	}
}
