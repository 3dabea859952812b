package tile

import "sync"

// Cache is the set of tile references whose content was merged into the graph.
// References are only ever added.
type Cache struct {
	mu         sync.RWMutex
	references map[Reference]struct{}
	order      []Reference
}

func NewCache() *Cache {
	return &Cache{references: make(map[Reference]struct{})}
}

func (c *Cache) Has(ref Reference) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.references[ref]
	return ok
}

// Add reports whether ref was not cached before
func (c *Cache) Add(ref Reference) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.references[ref]; ok {
		return false
	}
	c.references[ref] = struct{}{}
	c.order = append(c.order, ref)
	return true
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// References returns the cached references in the order they were added
func (c *Cache) References() []Reference {
	c.mu.RLock()
	defer c.mu.RUnlock()
	refs := make([]Reference, len(c.order))
	copy(refs, c.order)
	return refs
}
