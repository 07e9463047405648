// Package authz decides whether a user may administer a team.
//
// Grants are durable rows in team_admins and are never revoked, so a short
// positive-only cache absorbs the repeat lookups an actively browsing admin
// generates. The durable relation stays the single source of truth: a cache
// miss or absent entry always falls through to the database, and negatives
// are never cached.
package authz

import (
	"context"
	"time"

	"github.com/google/uuid"

	"teampages/internal/metrics"
)

// DefaultTTL bounds how stale a cached positive answer may be.
const DefaultTTL = 30 * time.Second

var positive = []byte("1")

// Store is the durable admin-grant relation.
type Store interface {
	InsertAdminGrant(ctx context.Context, userID string, teamID uuid.UUID) error
	HasAdminGrant(ctx context.Context, userID string, teamID uuid.UUID) (bool, error)
}

// Cache is the subset of fiber.Storage the authorizer needs. Redis in
// production, the in-memory storage in development and tests.
type Cache interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte, exp time.Duration) error
}

// Authorizer answers and records user-to-team admin rights.
type Authorizer struct {
	store Store
	cache Cache
	ttl   time.Duration
}

// New creates an authorizer with the default cache TTL.
func New(store Store, cache Cache) *Authorizer {
	return &Authorizer{store: store, cache: cache, ttl: DefaultTTL}
}

// NewWithTTL creates an authorizer with an explicit cache TTL.
func NewWithTTL(store Store, cache Cache, ttl time.Duration) *Authorizer {
	return &Authorizer{store: store, cache: cache, ttl: ttl}
}

func cacheKey(userID string, teamID uuid.UUID) string {
	return "admin:" + userID + ":" + teamID.String()
}

// IsAdmin reports whether the user may edit the team. A cached positive
// entry short-circuits the durable lookup; anything else consults the
// database. A database error propagates so callers fail closed.
func (a *Authorizer) IsAdmin(ctx context.Context, userID string, teamID uuid.UUID) (bool, error) {
	key := cacheKey(userID, teamID)

	if val, err := a.cache.Get(key); err == nil && string(val) == string(positive) {
		metrics.RecordAuthzCacheHit()
		return true, nil
	}
	metrics.RecordAuthzCacheMiss()

	granted, err := a.store.HasAdminGrant(ctx, userID, teamID)
	if err != nil {
		return false, err
	}
	if granted {
		// Best effort: a failed cache fill only costs a future lookup.
		a.cache.Set(key, positive, a.ttl)
	}
	return granted, nil
}

// Grant durably records the admin relation, then opportunistically warms
// the cache. Safe to call when a grant already exists; the duplicate row
// is tolerated, not deduplicated.
func (a *Authorizer) Grant(ctx context.Context, userID string, teamID uuid.UUID) error {
	if err := a.store.InsertAdminGrant(ctx, userID, teamID); err != nil {
		return err
	}
	a.cache.Set(cacheKey(userID, teamID), positive, a.ttl)
	return nil
}
