package quota

import "sync"

// Cache holds the last read remaining count per access code. Every write to
// the [Store] must be followed by Invalidate for the same code.
type Cache interface {
	Get(accessCode string) (remaining int, ok bool)
	Set(accessCode string, remaining int)
	Invalidate(accessCode string)
}

// QueryCache is the default in-memory [Cache].
type QueryCache struct {
	mu      sync.RWMutex
	entries map[string]int
}

// NewQueryCache creates an empty QueryCache.
func NewQueryCache() *QueryCache {
	return &QueryCache{entries: make(map[string]int)}
}

// Get implements [Cache].
func (c *QueryCache) Get(accessCode string) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[accessCode]
	return v, ok
}

// Set implements [Cache].
func (c *QueryCache) Set(accessCode string, remaining int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[accessCode] = remaining
}

// Invalidate implements [Cache].
func (c *QueryCache) Invalidate(accessCode string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, accessCode)
}
