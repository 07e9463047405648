package validation

import (
	"regexp"
	"strconv"
)

// YouTubeIDPattern defines the valid video id format: alphanumeric,
// underscores, hyphens.
var YouTubeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ZipCodePattern defines the valid zip code format: digits only.
var ZipCodePattern = regexp.MustCompile(`^[0-9]+$`)

// ValidateYouTubeID checks if a video id matches the allowed pattern.
func ValidateYouTubeID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	return YouTubeIDPattern.MatchString(id)
}

// ValidateZipCode checks if a zip code is an integer string.
func ValidateZipCode(zip string) bool {
	if zip == "" || len(zip) > 10 {
		return false
	}
	return ZipCodePattern.MatchString(zip)
}

// ParseGoalDollars parses an optional non-negative dollar amount.
// Returns (nil, true) for an empty value.
func ParseGoalDollars(raw string) (*int, bool) {
	if raw == "" {
		return nil, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return nil, false
	}
	return &n, true
}
