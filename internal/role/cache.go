package role

import (
	"fmt"
	"sync"
)

// Cache holds the three process-lifetime role-detection caches. It is an
// explicit value injected into the Detector rather than package state, so
// tests and multi-repo runs get isolation without a global escape hatch.
// All maps are guarded because project mode scores issues concurrently.
type Cache struct {
	mu            sync.Mutex
	roles         map[string]Role
	permissions   map[string]string
	contributions map[string]int
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	c := &Cache{}
	c.Reset()
	return c
}

// Reset clears all three caches.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roles = make(map[string]Role)
	c.permissions = make(map[string]string)
	c.contributions = make(map[string]int)
}

// cacheKey builds the login:owner:repo key shared by all three caches.
func cacheKey(login, owner, repo string) string {
	return fmt.Sprintf("%s:%s:%s", login, owner, repo)
}

func (c *Cache) role(key string) (Role, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.roles[key]
	return r, ok
}

func (c *Cache) setRole(key string, r Role) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roles[key] = r
}

func (c *Cache) permission(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.permissions[key]
	return p, ok
}

func (c *Cache) setPermission(key string, p string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.permissions[key] = p
}

func (c *Cache) contributionCount(key string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.contributions[key]
	return n, ok
}

func (c *Cache) setContributionCount(key string, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.contributions[key] = n
}
