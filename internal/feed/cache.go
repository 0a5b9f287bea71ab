package feed

import (
	"sync"
	"time"

	"github.com/dpham/unified-inbox/internal/model"
)

// snapshotKey identifies one cache entry. Filters cache independently so
// switching tabs does not evict the other tabs' snapshots.
type snapshotKey struct {
	viewerID string
	filter   model.Filter
}

// Cache holds the last computed feed snapshot per (viewer, filter) with a
// short staleness window. Entries are replaced wholesale and discarded on
// invalidation; a snapshot is never patched in place.
type Cache struct {
	mu        sync.RWMutex
	ttl       time.Duration
	snapshots map[snapshotKey]*model.FeedSnapshot

	// now is swapped in tests to control staleness.
	now func() time.Time
}

// NewCache creates a snapshot cache with the given staleness window.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:       ttl,
		snapshots: make(map[snapshotKey]*model.FeedSnapshot),
		now:       time.Now,
	}
}

// Get returns the cached snapshot for (viewer, filter) if one exists and
// is still within the staleness window.
func (c *Cache) Get(viewerID string, filter model.Filter) (*model.FeedSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snapshot, ok := c.snapshots[snapshotKey{viewerID: viewerID, filter: filter}]
	if !ok {
		return nil, false
	}
	if c.now().Sub(snapshot.ComputedAt) > c.ttl {
		return nil, false
	}
	return snapshot, true
}

// Put replaces the cached snapshot for (viewer, filter). Concurrent
// computations for the same key race benignly: recomputation is
// idempotent, so last write wins.
func (c *Cache) Put(viewerID string, filter model.Filter, snapshot *model.FeedSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots[snapshotKey{viewerID: viewerID, filter: filter}] = snapshot
}

// Invalidate drops every cached snapshot for the viewer, across all
// filters. Invalidation is coarse: the next read recomputes.
func (c *Cache) Invalidate(viewerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.snapshots {
		if key.viewerID == viewerID {
			delete(c.snapshots, key)
		}
	}
}

// InvalidateAll drops every cached snapshot for every viewer.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots = make(map[snapshotKey]*model.FeedSnapshot)
}

// countsEntry is one cached badge-count computation.
type countsEntry struct {
	counts     model.Counts
	computedAt time.Time
}

// CountsCache caches the badge-count fast path per viewer. Badge counts
// are read far more often than the full feed, so they cache separately
// from it.
type CountsCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]countsEntry
	now     func() time.Time
}

// NewCountsCache creates a counts cache with the given staleness window.
func NewCountsCache(ttl time.Duration) *CountsCache {
	return &CountsCache{
		ttl:     ttl,
		entries: make(map[string]countsEntry),
		now:     time.Now,
	}
}

// Get returns the cached counts for the viewer if still fresh.
func (c *CountsCache) Get(viewerID string) (model.Counts, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[viewerID]
	if !ok {
		return model.Counts{}, false
	}
	if c.now().Sub(entry.computedAt) > c.ttl {
		return model.Counts{}, false
	}
	return entry.counts, true
}

// Put replaces the cached counts for the viewer.
func (c *CountsCache) Put(viewerID string, counts model.Counts) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[viewerID] = countsEntry{counts: counts, computedAt: c.now()}
}

// Invalidate drops the viewer's cached counts.
func (c *CountsCache) Invalidate(viewerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, viewerID)
}

// InvalidateAll drops every viewer's cached counts.
func (c *CountsCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]countsEntry)
}
