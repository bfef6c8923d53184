// Package startup holds the first batch of feed content fetched while the
// branded startup screen is showing, so the home view does not refetch the
// same lists. One cache instance lives for the process and is constructed
// by the composition root.
package startup

import (
	"sync"

	"artfetch/models"
)

// Home is the preloaded home feed: hero entities plus the three shelves.
type Home struct {
	Hero     []models.Hero `json:"hero"`
	Recent   []models.Card `json:"recent"`
	Trending []models.Card `json:"trending"`
	Popular  []models.Card `json:"popular"`
}

type Cache struct {
	mu   sync.RWMutex
	home *Home
}

func NewCache() *Cache {
	return &Cache{}
}

// Get returns the cached home feed, or nil when nothing is preloaded yet.
func (c *Cache) Get() *Home {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.home
}

func (c *Cache) Set(home *Home) {
	c.mu.Lock()
	c.home = home
	c.mu.Unlock()
}

func (c *Cache) Clear() {
	c.Set(nil)
}
