package artwork

import "sync"

// assetCache is a process-lifetime cache of resolved asset URLs keyed by
// entity id. An entry is one of three states: absent (never definitively
// resolved), a resolved URL, or a confirmed "no asset" outcome. Entries are
// only ever added, never evicted; working sets are a few hundred ids per
// session, so unbounded growth is an accepted tradeoff. Redundant writes by
// concurrent resolvers are idempotent, so no per-id locking is needed.
type assetCache struct {
	mu      sync.RWMutex
	entries map[int]assetEntry
}

type assetEntry struct {
	url     string
	noAsset bool
}

func newAssetCache() *assetCache {
	return &assetCache{entries: make(map[int]assetEntry)}
}

// peek returns the cached URL and whether a definitive entry exists.
// A confirmed-negative entry returns ("", true).
func (c *assetCache) peek(id int) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id]
	if !ok || e.noAsset {
		return "", ok
	}
	return e.url, true
}

func (c *assetCache) contains(id int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[id]
	return ok
}

func (c *assetCache) storeURL(id int, url string) {
	c.mu.Lock()
	c.entries[id] = assetEntry{url: url}
	c.mu.Unlock()
}

func (c *assetCache) storeNoAsset(id int) {
	c.mu.Lock()
	c.entries[id] = assetEntry{noAsset: true}
	c.mu.Unlock()
}
