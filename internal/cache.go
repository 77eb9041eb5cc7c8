package internal

import (
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/gnolang/mathsteps/internal/expr"
)

// Cache keeps parsed expressions keyed by their source text. Trees are
// cloned on the way in and out, so callers may rewrite what they get.
// A nil *Cache is valid and caches nothing.
type Cache struct {
	entries *expirable.LRU[string, *expr.Node]
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewCache creates a cache holding at most size trees for ttl each. A
// non-positive ttl keeps entries until they are evicted. It returns nil
// when size is not positive.
func NewCache(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		return nil
	}
	return &Cache{entries: expirable.NewLRU[string, *expr.Node](size, nil, ttl)}
}

func (c *Cache) Get(text string) (*expr.Node, bool) {
	if c == nil {
		return nil, false
	}
	n, ok := c.entries.Get(text)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return n.Clone(), true
}

func (c *Cache) Set(text string, n *expr.Node) {
	if c == nil {
		return
	}
	c.entries.Add(text, n.Clone())
}

// Parse returns the cached tree of text, parsing and storing it on a miss.
func (c *Cache) Parse(text string) (*expr.Node, error) {
	if n, ok := c.Get(text); ok {
		return n, nil
	}
	n, err := expr.Parse(text)
	if err != nil {
		return nil, err
	}
	c.Set(text, n)
	return n, nil
}

// ParseEquation parses both sides of an equation through the cache.
func (c *Cache) ParseEquation(text string) (expr.Equation, error) {
	l, r, err := expr.SplitEquation(text)
	if err != nil {
		return expr.Equation{}, err
	}
	left, err := c.Parse(l)
	if err != nil {
		return expr.Equation{}, err
	}
	right, err := c.Parse(r)
	if err != nil {
		return expr.Equation{}, err
	}
	return expr.Equation{Left: left, Right: right}, nil
}

func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}

// Stats returns the hit and miss counts.
func (c *Cache) Stats() (hits, misses int64) {
	if c == nil {
		return 0, 0
	}
	return c.hits.Load(), c.misses.Load()
}

func (c *Cache) Purge() {
	if c == nil {
		return
	}
	c.entries.Purge()
}
