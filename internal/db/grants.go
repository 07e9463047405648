package db

import (
	"context"

	"github.com/google/uuid"
)

// InsertAdminGrant records that a user may administer a team. The relation
// is intentionally non-unique; calling this twice for the same pair leaves
// two rows, which the existence check tolerates.
func (d *DB) InsertAdminGrant(ctx context.Context, userID string, teamID uuid.UUID) error {
	query := `INSERT INTO team_admins (user_id, team_id) VALUES ($1, $2)`
	_, err := d.Pool.Exec(ctx, query, userID, teamID)
	return err
}

// HasAdminGrant reports whether at least one grant row exists for the pair.
// This is the durable source of truth behind the authorization cache.
func (d *DB) HasAdminGrant(ctx context.Context, userID string, teamID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM team_admins WHERE user_id = $1 AND team_id = $2)`

	var exists bool
	if err := d.Pool.QueryRow(ctx, query, userID, teamID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
