package strategy

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"trade-journal/internal/metrics"
	"trade-journal/internal/models"
)

// ListCache holds each user's strategy list for a bounded time.
// Entries are copied in and out so callers can't mutate cached data.
//
// Fills are read-then-store. A fill that started before an invalidation
// would cache the pre-invalidation list for a full TTL, so every
// invalidation bumps a version and SetIfCurrent drops fills that raced one.
type ListCache struct {
	lru     *expirable.LRU[string, []models.Strategy]
	metrics *metrics.Metrics

	mu      sync.Mutex
	version uint64
}

// NewListCache creates a cache holding up to size users for ttl each.
func NewListCache(size int, ttl time.Duration, m *metrics.Metrics) *ListCache {
	return &ListCache{
		lru:     expirable.NewLRU[string, []models.Strategy](size, nil, ttl),
		metrics: m,
	}
}

// Get returns the cached list for userID.
func (c *ListCache) Get(userID string) ([]models.Strategy, bool) {
	list, ok := c.lru.Get(userID)
	c.metrics.CacheLookup(ok)
	if !ok {
		return nil, false
	}
	return cloneList(list), true
}

// Set stores the list for userID.
func (c *ListCache) Set(userID string, list []models.Strategy) {
	c.lru.Add(userID, cloneList(list))
}

// Version returns the invalidation counter. Take it before reading the
// store and hand it to SetIfCurrent.
func (c *ListCache) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// SetIfCurrent stores the list only if no invalidation happened since
// version was taken. It reports whether the list was stored.
func (c *ListCache) SetIfCurrent(userID string, list []models.Strategy, version uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.version != version {
		return false
	}
	c.lru.Add(userID, cloneList(list))
	return true
}

// Invalidate drops the cached list for userID.
func (c *ListCache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version++
	c.lru.Remove(userID)
}

// Purge drops every cached list.
func (c *ListCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version++
	c.lru.Purge()
}

// Len returns the number of cached users.
func (c *ListCache) Len() int {
	return c.lru.Len()
}

func cloneList(list []models.Strategy) []models.Strategy {
	out := make([]models.Strategy, len(list))
	copy(out, list)
	return out
}
