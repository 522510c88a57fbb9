package hierarchy

import "github.com/sidekick-cli/sidekick/internal/types"

// Cache holds issue records fetched during one walk, keyed by issue key.
// It is owned by a single walk and is not safe for concurrent use.
type Cache struct {
	issues map[string]*types.Issue
	hits   int
	misses int
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{issues: make(map[string]*types.Issue)}
}

// Get returns the cached record for key.
func (c *Cache) Get(key string) (*types.Issue, bool) {
	issue, ok := c.issues[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return issue, ok
}

// Has reports whether key is cached without touching hit/miss counters.
func (c *Cache) Has(key string) bool {
	_, ok := c.issues[key]
	return ok
}

// Put stores records, replacing older snapshots of the same keys.
func (c *Cache) Put(issues ...*types.Issue) {
	for _, issue := range issues {
		if issue == nil || issue.Key == "" {
			continue
		}
		c.issues[issue.Key] = issue
	}
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	return len(c.issues)
}

// Stats returns lookup hits and misses.
func (c *Cache) Stats() (hits, misses int) {
	return c.hits, c.misses
}
