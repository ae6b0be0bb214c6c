// Package cache provides bounded caches for decoded objects.
package cache

import (
	"sync"

	"github.com/golang/groupcache/lru"

	"github.com/go-difftree/difftree/plumbing"
	"github.com/go-difftree/difftree/plumbing/object"
)

// DefaultMaxEntries is the default capacity of a tree cache.
const DefaultMaxEntries = 1000

// TreeResolver is the subset of a store a tree cache can wrap.
type TreeResolver interface {
	TreeEntries(h plumbing.Hash) ([]object.TreeEntry, error)
}

// Trees wraps a resolver with an LRU cache of decoded trees, so that
// traversals revisiting the same subtree hash (the rename-follow
// second pass, for instance) do not resolve it twice.
//
// Trees is safe for concurrent use.
type Trees struct {
	r TreeResolver

	mu  sync.Mutex
	lru *lru.Cache
}

// NewTrees returns a caching resolver holding at most maxEntries
// decoded trees; maxEntries <= 0 means DefaultMaxEntries.
func NewTrees(r TreeResolver, maxEntries int) *Trees {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	return &Trees{r: r, lru: lru.New(maxEntries)}
}

// TreeEntries implements TreeResolver. Resolution errors are not
// cached.
func (c *Trees) TreeEntries(h plumbing.Hash) ([]object.TreeEntry, error) {
	c.mu.Lock()
	if v, ok := c.lru.Get(h); ok {
		c.mu.Unlock()
		return v.([]object.TreeEntry), nil
	}
	c.mu.Unlock()

	entries, err := c.r.TreeEntries(h)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.lru.Add(h, entries)
	c.mu.Unlock()

	return entries, nil
}

// Clear drops every cached tree.
func (c *Trees) Clear() {
	c.mu.Lock()
	c.lru.Clear()
	c.mu.Unlock()
}
