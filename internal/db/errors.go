package db

import "errors"

// Domain-level database error sentinels.
var (
	// Team errors
	ErrTeamNotFound       = errors.New("team not found")
	ErrDuplicateUserToken = errors.New("a team already exists for this pledge token")

	// Slug errors
	ErrSlugNotFound = errors.New("slug not found")
)
