package pattern

import "sync"

// Cache memoizes compiled patterns by their pattern string. Compilation is
// referentially transparent, so a cached pattern is indistinguishable from a
// fresh one. Safe for concurrent use; all pattern strings are known before
// any parallel file processing begins, so contention is negligible.
type Cache struct {
	mu       sync.RWMutex
	patterns map[string]*Pattern
	opts     []Opt
}

// NewCache creates a [Cache]. The given options are applied to every
// compilation, and participate in cache identity implicitly: one cache, one
// option set.
func NewCache(opts ...Opt) *Cache {
	return &Cache{
		patterns: map[string]*Pattern{},
		opts:     opts,
	}
}

// Compile returns the compiled pattern for src, compiling it on first use.
func (c *Cache) Compile(src string, opts ...Opt) (*Pattern, error) {
	// Per-call options disable memoization, since they change behavior.
	if len(opts) > 0 {
		return Compile(src, append(append([]Opt(nil), c.opts...), opts...)...)
	}

	c.mu.RLock()
	p, ok := c.patterns[src]
	c.mu.RUnlock()

	if ok {
		return p, nil
	}

	p, err := Compile(src, c.opts...)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.patterns[src] = p
	c.mu.Unlock()

	return p, nil
}

// Len returns the number of memoized patterns.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.patterns)
}
