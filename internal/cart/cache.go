// Package cart caches each session's cart between backend fetches.
package cart

import (
	"sync"
	"time"

	"shopcart/internal/model"
)

type entry struct {
	cart     model.Cart
	storedAt time.Time
}

// Cache holds the last fetched cart per session for a short TTL. Any cart
// mutation must Invalidate the session's entry.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewCache creates a cache. A non-positive ttl disables caching.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns a copy of the cached cart for sessionID if it is still fresh.
func (c *Cache) Get(sessionID string) (*model.Cart, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.entries[sessionID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		c.Invalidate(sessionID)
		return nil, false
	}

	cart := e.cart
	cart.Items = append([]model.CartItem(nil), e.cart.Items...)
	return &cart, true
}

// Set stores a copy of cart for sessionID.
func (c *Cache) Set(sessionID string, cart *model.Cart) {
	if c.ttl <= 0 || cart == nil {
		return
	}
	stored := *cart
	stored.Items = append([]model.CartItem(nil), cart.Items...)

	c.mu.Lock()
	c.entries[sessionID] = entry{cart: stored, storedAt: c.now()}
	c.mu.Unlock()
}

// Invalidate drops the entry for sessionID.
func (c *Cache) Invalidate(sessionID string) {
	c.mu.Lock()
	delete(c.entries, sessionID)
	c.mu.Unlock()
}

// Len returns the number of entries held, fresh or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
