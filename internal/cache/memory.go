package cache

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/quizforge/dupereview/internal/model"
)

// MemoryCache implements Snapshots backed by an in-memory TTL cache
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a new memory cache
func NewMemoryCache(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryCache {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &MemoryCache{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get retrieves a snapshot from the cache
func (c *MemoryCache) Get(subject string, id model.RecordID) (*model.RecordSnapshot, bool) {
	if val, found := c.cache.Get(Key(subject, id)); found {
		return val.(*model.RecordSnapshot), true
	}
	return nil, false
}

// Set stores a snapshot with the default TTL
func (c *MemoryCache) Set(subject string, snap *model.RecordSnapshot) {
	c.cache.Set(Key(subject, snap.ID), snap, gocache.DefaultExpiration)
}

// SetAll stores a batch of snapshots
func (c *MemoryCache) SetAll(subject string, snaps map[model.RecordID]*model.RecordSnapshot) {
	for _, snap := range snaps {
		c.Set(subject, snap)
	}
}

// Delete removes a snapshot from the cache
func (c *MemoryCache) Delete(subject string, id model.RecordID) {
	c.cache.Delete(Key(subject, id))
}

// Clear removes all snapshots belonging to a subject
func (c *MemoryCache) Clear(subject string) {
	prefix := subject + "/"
	for key := range c.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			c.cache.Delete(key)
		}
	}
}
