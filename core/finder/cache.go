// core/finder/cache.go
package finder

import (
	"sync"

	"talen-core/seq"
)

type cacheKey struct {
	probe      *seq.Sequence
	threshold  float64
	capacity   int
	bestEffort bool
}

// matchCache memoizes single-probe results per strand. Cached lists are
// shared with callers and must not be mutated. Concurrent misses on the
// same key recompute; the last store wins.
type matchCache struct {
	mu  sync.Mutex
	fwd map[cacheKey]*Matches
	rev map[cacheKey]*Matches
}

func newMatchCache() *matchCache {
	return &matchCache{
		fwd: make(map[cacheKey]*Matches),
		rev: make(map[cacheKey]*Matches),
	}
}

func (c *matchCache) side(s Strand) map[cacheKey]*Matches {
	if s == Reverse {
		return c.rev
	}
	return c.fwd
}

func (c *matchCache) lookup(k cacheKey, s Strand) (*Matches, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.side(s)[k]
	return l, ok
}

func (c *matchCache) store(k cacheKey, l *Matches, s Strand) {
	c.mu.Lock()
	c.side(s)[k] = l
	c.mu.Unlock()
}

func (c *matchCache) reset() {
	c.mu.Lock()
	clear(c.fwd)
	clear(c.rev)
	c.mu.Unlock()
}

func (c *matchCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.fwd) + len(c.rev)
}

// clone copies entries into fresh maps.
func (c *matchCache) clone() *matchCache {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := newMatchCache()
	for k, v := range c.fwd {
		n.fwd[k] = v
	}
	for k, v := range c.rev {
		n.rev[k] = v
	}
	return n
}
