package authz

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

// fakeStore is an in-memory admin-grant relation.
type fakeStore struct {
	mu      sync.Mutex
	grants  map[string]bool
	lookups int
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{grants: make(map[string]bool)}
}

func grantKey(userID string, teamID uuid.UUID) string {
	return userID + "/" + teamID.String()
}

func (s *fakeStore) InsertAdminGrant(_ context.Context, userID string, teamID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.grants[grantKey(userID, teamID)] = true
	return nil
}

func (s *fakeStore) HasAdminGrant(_ context.Context, userID string, teamID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	if s.err != nil {
		return false, s.err
	}
	return s.grants[grantKey(userID, teamID)], nil
}

// mapCache is a minimal in-memory Cache with no expiry.
type mapCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string][]byte)}
}

func (c *mapCache) Get(key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[key], nil
}

func (c *mapCache) Set(key string, val []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = val
	return nil
}

func TestIsAdminNeverGranted(t *testing.T) {
	auth := New(newFakeStore(), newMapCache())

	granted, err := auth.IsAdmin(context.Background(), "user-1", uuid.New())
	if err != nil {
		t.Fatalf("IsAdmin() error = %v", err)
	}
	if granted {
		t.Error("IsAdmin() = true for a user with no grant")
	}
}

func TestGrantThenIsAdmin(t *testing.T) {
	auth := New(newFakeStore(), newMapCache())
	teamID := uuid.New()

	if err := auth.Grant(context.Background(), "user-1", teamID); err != nil {
		t.Fatalf("Grant() error = %v", err)
	}

	granted, err := auth.IsAdmin(context.Background(), "user-1", teamID)
	if err != nil {
		t.Fatalf("IsAdmin() error = %v", err)
	}
	if !granted {
		t.Error("IsAdmin() = false after Grant()")
	}

	// Same user, different team.
	granted, err = auth.IsAdmin(context.Background(), "user-1", uuid.New())
	if err != nil {
		t.Fatalf("IsAdmin() error = %v", err)
	}
	if granted {
		t.Error("IsAdmin() = true for a team the user was never granted")
	}
}

func TestGrantIdempotent(t *testing.T) {
	auth := New(newFakeStore(), newMapCache())
	teamID := uuid.New()

	for i := 0; i < 3; i++ {
		if err := auth.Grant(context.Background(), "user-1", teamID); err != nil {
			t.Fatalf("Grant() call %d error = %v", i, err)
		}
	}

	granted, err := auth.IsAdmin(context.Background(), "user-1", teamID)
	if err != nil {
		t.Fatalf("IsAdmin() error = %v", err)
	}
	if !granted {
		t.Error("IsAdmin() = false after repeated Grant() calls")
	}
}

func TestIsAdminCachedPositiveSkipsStore(t *testing.T) {
	store := newFakeStore()
	auth := New(store, newMapCache())
	teamID := uuid.New()

	if err := auth.Grant(context.Background(), "user-1", teamID); err != nil {
		t.Fatalf("Grant() error = %v", err)
	}

	for i := 0; i < 5; i++ {
		granted, err := auth.IsAdmin(context.Background(), "user-1", teamID)
		if err != nil {
			t.Fatalf("IsAdmin() error = %v", err)
		}
		if !granted {
			t.Fatal("IsAdmin() = false for a granted user")
		}
	}

	if store.lookups != 0 {
		t.Errorf("durable lookups = %d, want 0 (Grant warms the cache)", store.lookups)
	}
}

func TestIsAdminFillsCacheOnDurableHit(t *testing.T) {
	store := newFakeStore()
	auth := New(store, newMapCache())
	teamID := uuid.New()

	// Grant exists durably but the cache is cold, as after a restart.
	if err := store.InsertAdminGrant(context.Background(), "user-1", teamID); err != nil {
		t.Fatalf("InsertAdminGrant() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		granted, err := auth.IsAdmin(context.Background(), "user-1", teamID)
		if err != nil {
			t.Fatalf("IsAdmin() error = %v", err)
		}
		if !granted {
			t.Fatal("IsAdmin() = false for a durably granted user")
		}
	}

	if store.lookups != 1 {
		t.Errorf("durable lookups = %d, want 1 (first miss fills the cache)", store.lookups)
	}
}

func TestIsAdminNegativeNotCached(t *testing.T) {
	store := newFakeStore()
	auth := New(store, newMapCache())
	teamID := uuid.New()

	for i := 0; i < 3; i++ {
		granted, err := auth.IsAdmin(context.Background(), "user-1", teamID)
		if err != nil {
			t.Fatalf("IsAdmin() error = %v", err)
		}
		if granted {
			t.Fatal("IsAdmin() = true with no grant")
		}
	}

	// Every negative answer must have consulted the database.
	if store.lookups != 3 {
		t.Errorf("durable lookups = %d, want 3 (negatives are never cached)", store.lookups)
	}

	// A fresh grant is visible immediately.
	if err := auth.Grant(context.Background(), "user-1", teamID); err != nil {
		t.Fatalf("Grant() error = %v", err)
	}
	granted, err := auth.IsAdmin(context.Background(), "user-1", teamID)
	if err != nil {
		t.Fatalf("IsAdmin() error = %v", err)
	}
	if !granted {
		t.Error("IsAdmin() = false immediately after Grant()")
	}
}

func TestIsAdminStoreErrorPropagates(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("connection refused")
	auth := New(store, newMapCache())

	granted, err := auth.IsAdmin(context.Background(), "user-1", uuid.New())
	if err == nil {
		t.Fatal("IsAdmin() error = nil, want store error")
	}
	if granted {
		t.Error("IsAdmin() = true on store error")
	}
}

func TestGrantStoreErrorPropagates(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("connection refused")
	cache := newMapCache()
	auth := New(store, cache)
	teamID := uuid.New()

	if err := auth.Grant(context.Background(), "user-1", teamID); err == nil {
		t.Fatal("Grant() error = nil, want store error")
	}

	// A failed durable insert must not poison the cache.
	if val, _ := cache.Get(cacheKey("user-1", teamID)); len(val) != 0 {
		t.Error("cache warmed despite failed durable grant")
	}
}

func TestIsAdminKeysAreScoped(t *testing.T) {
	auth := New(newFakeStore(), newMapCache())
	teamA := uuid.New()
	teamB := uuid.New()

	if err := auth.Grant(context.Background(), "alice", teamA); err != nil {
		t.Fatalf("Grant() error = %v", err)
	}

	cases := []struct {
		userID string
		teamID uuid.UUID
		want   bool
	}{
		{"alice", teamA, true},
		{"alice", teamB, false},
		{"bob", teamA, false},
	}
	for _, tc := range cases {
		got, err := auth.IsAdmin(context.Background(), tc.userID, tc.teamID)
		if err != nil {
			t.Fatalf("IsAdmin(%q, %v) error = %v", tc.userID, tc.teamID, err)
		}
		if got != tc.want {
			t.Errorf("IsAdmin(%q, %v) = %v, want %v", tc.userID, tc.teamID, got, tc.want)
		}
	}
}
