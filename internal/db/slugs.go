package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"teampages/internal/models"
)

// ReserveSlug atomically reserves a slug for a team. Returns true if this
// call won the reservation, false if the slug was already taken. The
// insert-if-absent is the only atomicity the allocator relies on: two
// racers on the same candidate produce exactly one winner.
func (d *DB) ReserveSlug(ctx context.Context, slug string, teamID uuid.UUID) (bool, error) {
	query := `
		INSERT INTO slugs (slug, team_id)
		VALUES ($1, $2)
		ON CONFLICT (slug) DO NOTHING
	`
	result, err := d.Pool.Exec(ctx, query, slug, teamID)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

// GetSlug resolves a slug to its reservation record.
func (d *DB) GetSlug(ctx context.Context, slug string) (*models.SlugEntry, error) {
	query := `SELECT slug, team_id, created_at FROM slugs WHERE slug = $1`

	var entry models.SlugEntry
	err := d.Pool.QueryRow(ctx, query, slug).Scan(&entry.Slug, &entry.TeamID, &entry.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSlugNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetSlugsForTeam returns every slug ever allocated to a team, oldest first.
func (d *DB) GetSlugsForTeam(ctx context.Context, teamID uuid.UUID) ([]models.SlugEntry, error) {
	query := `SELECT slug, team_id, created_at FROM slugs WHERE team_id = $1 ORDER BY created_at ASC`

	rows, err := d.Pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.SlugEntry
	for rows.Next() {
		var entry models.SlugEntry
		if err := rows.Scan(&entry.Slug, &entry.TeamID, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
