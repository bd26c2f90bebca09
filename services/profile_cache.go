package services

import (
	"sync"
	"time"

	"github.com/thecoder877/Vrticko/models"
)

// ProfileCache memoizes user lookups and deduplicates in-flight loads:
// concurrent Get calls for the same ID share one loader call. Entries
// expire after the TTL so role changes propagate without a restart, and
// are dropped explicitly on sign-out; load errors are never cached.
type ProfileCache struct {
	loader func(id string) (*models.User, error)
	ttl    time.Duration

	mu      sync.Mutex
	entries map[string]*profileEntry
}

// profileEntry is either a cached value or a pending-result handle.
// loadedAt stays zero while the load is in flight.
type profileEntry struct {
	ready    chan struct{}
	user     *models.User
	err      error
	loadedAt time.Time
}

// NewProfileCache creates a new ProfileCache around a loader
func NewProfileCache(loader func(id string) (*models.User, error), ttl time.Duration) *ProfileCache {
	return &ProfileCache{
		loader:  loader,
		ttl:     ttl,
		entries: make(map[string]*profileEntry),
	}
}

// GetUser returns the cached user, joining an in-flight load when one is
// already underway. Expired entries are reloaded.
func (c *ProfileCache) GetUser(id string) (*models.User, error) {
	c.mu.Lock()
	if entry, ok := c.entries[id]; ok {
		if entry.loadedAt.IsZero() || time.Since(entry.loadedAt) < c.ttl {
			c.mu.Unlock()
			<-entry.ready
			return entry.user, entry.err
		}
		delete(c.entries, id)
	}

	entry := &profileEntry{ready: make(chan struct{})}
	c.entries[id] = entry
	c.mu.Unlock()

	entry.user, entry.err = c.loader(id)

	c.mu.Lock()
	entry.loadedAt = time.Now()
	if entry.err != nil || entry.user == nil {
		// Do not cache failures or missing users
		if c.entries[id] == entry {
			delete(c.entries, id)
		}
	}
	c.mu.Unlock()

	close(entry.ready)

	return entry.user, entry.err
}

// Invalidate drops one user from the cache (sign-out, role change)
func (c *ProfileCache) Invalidate(id string) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
}
