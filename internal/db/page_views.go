package db

import (
	"context"

	"teampages/internal/models"
)

// IncrementPageView upserts a slug lookup count by outcome.
func (d *DB) IncrementPageView(ctx context.Context, slug, outcome string) error {
	_, err := d.Pool.Exec(ctx, `
		INSERT INTO page_views (slug, outcome, count, last_seen_at)
		VALUES ($1, $2, 1, NOW())
		ON CONFLICT (slug, outcome) DO UPDATE
		SET count = page_views.count + 1, last_seen_at = NOW()
	`, slug, outcome)
	return err
}

// GetAllPageViews returns all page view rows for metrics export.
func (d *DB) GetAllPageViews(ctx context.Context) ([]models.PageView, error) {
	rows, err := d.Pool.Query(ctx, `SELECT slug, outcome, count, last_seen_at FROM page_views`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []models.PageView
	for rows.Next() {
		var v models.PageView
		if err := rows.Scan(&v.Slug, &v.Outcome, &v.Count, &v.LastSeenAt); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}
