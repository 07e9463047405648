package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"teampages/internal/models"
)

// teamColumns is the standard column list for team queries.
const teamColumns = `id, primary_slug, title, description, goal_dollars,
	youtube_id, zip_code, user_token, version, created_at, updated_at`

// scanTeam scans a row into a Team struct.
func scanTeam(row pgx.Row) (*models.Team, error) {
	var team models.Team
	err := row.Scan(
		&team.ID,
		&team.PrimarySlug,
		&team.Title,
		&team.Description,
		&team.GoalDollars,
		&team.YouTubeID,
		&team.ZipCode,
		&team.UserToken,
		&team.Version,
		&team.CreatedAt,
		&team.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// scanTeams scans multiple rows into a slice of Teams.
func scanTeams(rows pgx.Rows) ([]models.Team, error) {
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		var team models.Team
		if err := rows.Scan(
			&team.ID,
			&team.PrimarySlug,
			&team.Title,
			&team.Description,
			&team.GoalDollars,
			&team.YouTubeID,
			&team.ZipCode,
			&team.UserToken,
			&team.Version,
			&team.CreatedAt,
			&team.UpdatedAt,
		); err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}

	return teams, rows.Err()
}

// CreateTeam inserts a new team. The team is persisted before its slug is
// allocated, so PrimarySlug is NULL until SetPrimarySlug runs.
func (d *DB) CreateTeam(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (title, description, goal_dollars, youtube_id, zip_code, user_token)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, version, created_at, updated_at
	`

	err := d.Pool.QueryRow(ctx, query,
		team.Title,
		team.Description,
		team.GoalDollars,
		team.YouTubeID,
		team.ZipCode,
		team.UserToken,
	).Scan(&team.ID, &team.Version, &team.CreatedAt, &team.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateUserToken
		}
		return err
	}

	return nil
}

// UpdateTeam updates a team's editable fields and bumps its version.
func (d *DB) UpdateTeam(ctx context.Context, team *models.Team) error {
	query := `
		UPDATE teams
		SET title = $1, description = $2, goal_dollars = $3, youtube_id = $4,
			zip_code = $5, version = version + 1, updated_at = NOW()
		WHERE id = $6
		RETURNING version, updated_at
	`
	err := d.Pool.QueryRow(ctx, query,
		team.Title,
		team.Description,
		team.GoalDollars,
		team.YouTubeID,
		team.ZipCode,
		team.ID,
	).Scan(&team.Version, &team.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrTeamNotFound
	}
	return err
}

// SetPrimarySlug points the team at its current slug. The slug row itself
// must already be reserved; the two writes are deliberately separate.
func (d *DB) SetPrimarySlug(ctx context.Context, teamID uuid.UUID, slug string) error {
	query := `UPDATE teams SET primary_slug = $1, updated_at = NOW() WHERE id = $2`
	result, err := d.Pool.Exec(ctx, query, slug, teamID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrTeamNotFound
	}
	return nil
}

// GetTeamByID retrieves a team by its ID.
func (d *DB) GetTeamByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`
	return scanTeam(d.Pool.QueryRow(ctx, query, id))
}

// GetTeamByUserToken retrieves the team imported from the given pledge token.
func (d *DB) GetTeamByUserToken(ctx context.Context, token string) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE user_token = $1`
	return scanTeam(d.Pool.QueryRow(ctx, query, token))
}

// GetTeamsForAdmin retrieves all teams the user administers, newest first.
func (d *DB) GetTeamsForAdmin(ctx context.Context, userID string) ([]models.Team, error) {
	query := `
		SELECT ` + teamColumns + `
		FROM teams
		WHERE id IN (SELECT team_id FROM team_admins WHERE user_id = $1)
		ORDER BY created_at DESC
	`
	rows, err := d.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return scanTeams(rows)
}

// GetAllTeams retrieves every team for the operator export, oldest first.
// Rows may carry a NULL primary_slug (persist-before-allocate window).
func (d *DB) GetAllTeams(ctx context.Context) ([]models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams ORDER BY created_at ASC`
	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return scanTeams(rows)
}

// CountTeams returns the total number of teams.
func (d *DB) CountTeams(ctx context.Context) (int64, error) {
	var count int64
	err := d.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM teams`).Scan(&count)
	return count, err
}
