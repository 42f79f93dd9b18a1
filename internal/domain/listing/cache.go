package listing

import (
	"context"
	"fmt"
	"sync"

	"github.com/rpggio/interntrack/internal/domain/internship"
)

// Store fetches a user's internships in store order.
type Store interface {
	ListByUser(ctx context.Context, userID string) ([]internship.Internship, error)
}

// Observer is notified of cache fetches and invalidations.
type Observer interface {
	CacheFetched(reason string)
	CacheInvalidated()
}

// Fetch reasons reported to the Observer.
const (
	FetchMiss    = "miss"
	FetchRefresh = "refresh"
)

// Cache is a session-scoped snapshot of one user's internships.
//
// A Cache is either unloaded or holds the collection returned by the last
// successful fetch. Store I/O only happens in Get and ForceRefresh.
type Cache struct {
	store    Store
	owner    string
	observer Observer

	mu      sync.Mutex
	loaded  bool
	records []internship.Internship
}

// New creates an unloaded cache owned by userID.
func New(store Store, userID string, observer Observer) *Cache {
	return &Cache{store: store, owner: userID, observer: observer}
}

// Owner returns the user the cache belongs to.
func (c *Cache) Owner() string {
	return c.owner
}

// Loaded reports whether the cache currently holds a snapshot.
func (c *Cache) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Get returns the cached collection, fetching it first when unloaded.
func (c *Cache) Get(ctx context.Context, userID string) ([]internship.Internship, error) {
	if err := c.authorize(userID); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return clone(c.records), nil
	}
	if err := c.fetchLocked(ctx, FetchMiss); err != nil {
		return nil, err
	}
	return clone(c.records), nil
}

// ForceRefresh always refetches. On failure the previous snapshot, if any,
// is kept.
func (c *Cache) ForceRefresh(ctx context.Context, userID string) ([]internship.Internship, error) {
	if err := c.authorize(userID); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.fetchLocked(ctx, FetchRefresh); err != nil {
		return nil, err
	}
	return clone(c.records), nil
}

// Invalidate marks the cache unloaded so the next Get refetches.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.loaded = false
	c.records = nil
	c.mu.Unlock()

	if c.observer != nil {
		c.observer.CacheInvalidated()
	}
}

// Find returns the internship with id from the user's collection.
func (c *Cache) Find(ctx context.Context, userID string, id int64) (internship.Internship, error) {
	records, err := c.Get(ctx, userID)
	if err != nil {
		return internship.Internship{}, err
	}
	for _, rec := range records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return internship.Internship{}, internship.ErrRecordNotFound
}

func (c *Cache) authorize(userID string) error {
	if userID == "" || c.owner == "" {
		return internship.ErrNotAuthenticated
	}
	if userID != c.owner {
		return fmt.Errorf("cache belongs to another user: %w", internship.ErrNotAuthenticated)
	}
	return nil
}

func (c *Cache) fetchLocked(ctx context.Context, reason string) error {
	if c.observer != nil {
		c.observer.CacheFetched(reason)
	}
	records, err := c.store.ListByUser(ctx, c.owner)
	if err != nil {
		return fmt.Errorf("loading internships: %w: %w", internship.ErrStoreFailure, err)
	}
	c.records = dedupe(records)
	c.loaded = true
	return nil
}

// dedupe drops repeated ids, keeping the first occurrence.
func dedupe(records []internship.Internship) []internship.Internship {
	seen := make(map[int64]struct{}, len(records))
	out := make([]internship.Internship, 0, len(records))
	for _, rec := range records {
		if _, ok := seen[rec.ID]; ok {
			continue
		}
		seen[rec.ID] = struct{}{}
		out = append(out, rec)
	}
	return out
}

func clone(records []internship.Internship) []internship.Internship {
	out := make([]internship.Internship, len(records))
	copy(out, records)
	return out
}
