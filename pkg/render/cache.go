package render

import "github.com/vanderheijden86/treebrowse/pkg/debug"

// Cache memoizes the last fast-mode render. Capacity is exactly one entry:
// this is a pure memo of the previous computation, not an LRU. Any key
// mismatch discards the entry and recomputes. It must also be invalidated
// explicitly on structural changes (collapse toggle, mode toggle, subtree
// focus, reroot, reload) even when the derived key would match, to avoid
// staleness from state not folded into the key.
type Cache struct {
	key   string
	scene *Scene
	hits  int
	total int
}

// NewCache returns an empty render cache.
func NewCache() *Cache {
	return &Cache{}
}

// Get returns the cached scene when the key matches the previous render.
func (c *Cache) Get(key string) (*Scene, bool) {
	c.total++
	if c.scene != nil && c.key == key {
		c.hits++
		debug.Log("render cache hit (%d/%d)", c.hits, c.total)
		return c.scene, true
	}
	return nil, false
}

// Put replaces the single cache entry.
func (c *Cache) Put(key string, scene *Scene) {
	c.key = key
	c.scene = scene
}

// Invalidate clears the cache entry unconditionally.
func (c *Cache) Invalidate() {
	c.key = ""
	c.scene = nil
}

// Stats reports hit and lookup counts, for status displays.
func (c *Cache) Stats() (hits, lookups int) {
	return c.hits, c.total
}
