// Package slug mints unique, human-friendly page slugs.
//
// A slug is a short random hex prefix joined to a base derived from the
// team title, e.g. "3f2a-Save-The-Whales". The prefix starts at two random
// bytes and grows by one byte on every collision, so retries get
// exponentially less likely to collide and the loop is O(1) in practice.
package slug

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"teampages/internal/metrics"
)

var (
	invalidChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	multiDash    = regexp.MustCompile(`-+`)
	edgeDashes   = regexp.MustCompile(`^-+|-+$`)
)

// initialTokenBytes is the starting random-prefix length in bytes.
const initialTokenBytes = 2

// Reserver atomically records a slug-to-team mapping. It returns true when
// the caller won the reservation and false when the slug already exists.
type Reserver interface {
	ReserveSlug(ctx context.Context, slug string, teamID uuid.UUID) (bool, error)
}

// Allocator mints slugs against a durable reservation store.
type Allocator struct {
	store Reserver
}

// New creates an allocator backed by the given reservation store.
func New(store Reserver) *Allocator {
	return &Allocator{store: store}
}

// DeriveBase sanitizes a title into a slug base. Characters outside
// [A-Za-z0-9_-] become hyphens, runs of hyphens collapse to one, and edge
// hyphens are stripped. Casing is preserved. An all-invalid title yields "".
func DeriveBase(title string) string {
	base := invalidChars.ReplaceAllString(title, "-")
	base = multiDash.ReplaceAllString(base, "-")
	return edgeDashes.ReplaceAllString(base, "")
}

// Allocate mints a globally unique slug for the team and durably records
// the reservation before returning it. The caller persists the returned
// string onto the team's primary_slug separately.
//
// Collisions are retried internally and never surfaced; only a failing
// random source or reservation store propagates as an error.
func (a *Allocator) Allocate(ctx context.Context, teamID uuid.UUID, titleHint string) (string, error) {
	base := DeriveBase(titleHint)
	tokenBytes := initialTokenBytes

	for {
		prefix := make([]byte, tokenBytes)
		if _, err := rand.Read(prefix); err != nil {
			return "", fmt.Errorf("slug random source failed: %w", err)
		}

		candidate := hex.EncodeToString(prefix)
		if base != "" {
			candidate += "-" + base
		}

		metrics.RecordSlugAttempt()
		won, err := a.store.ReserveSlug(ctx, candidate, teamID)
		if err != nil {
			return "", fmt.Errorf("slug reservation failed: %w", err)
		}
		if won {
			return candidate, nil
		}

		metrics.RecordSlugCollision()
		tokenBytes++
	}
}
