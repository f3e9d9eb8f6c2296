package api

import (
	"sync"

	"github.com/greenstart/esgscope/pkg/scoring"
)

// CardCache is a thread-safe LRU cache of archived score cards keyed by
// company ID.
type CardCache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]*scoring.ScoreCard
	order   []string          // oldest first
	gen     map[string]uint64 // bumped by Invalidate
}

// NewCardCache creates a cache with the given maximum number of entries.
// If maxSize <= 0, it defaults to 100.
func NewCardCache(maxSize int) *CardCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &CardCache{
		maxSize: maxSize,
		entries: make(map[string]*scoring.ScoreCard),
		gen:     make(map[string]uint64),
	}
}

// Get returns the cached card for a company, or nil.
func (c *CardCache) Get(companyID string) *scoring.ScoreCard {
	c.mu.Lock()
	defer c.mu.Unlock()

	card, ok := c.entries[companyID]
	if !ok {
		return nil
	}
	c.moveToEnd(companyID)
	return card
}

// Generation returns the company's invalidation count. Read it before
// loading a card and pass it to PutIfCurrent.
func (c *CardCache) Generation(companyID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen[companyID]
}

// PutIfCurrent stores card only if the company was not invalidated since
// gen was read. It reports whether the card was stored.
func (c *CardCache) PutIfCurrent(companyID string, gen uint64, card *scoring.ScoreCard) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen[companyID] != gen {
		return false
	}
	c.put(companyID, card)
	return true
}

// Put adds a card, evicting the least recently used entry when full.
func (c *CardCache) Put(companyID string, card *scoring.ScoreCard) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(companyID, card)
}

func (c *CardCache) put(companyID string, card *scoring.ScoreCard) {
	if _, ok := c.entries[companyID]; ok {
		c.entries[companyID] = card
		c.moveToEnd(companyID)
		return
	}

	for len(c.entries) >= c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[companyID] = card
	c.order = append(c.order, companyID)
}

// Invalidate drops a company's card. It is registered as a rescore listener.
func (c *CardCache) Invalidate(companyID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen[companyID]++
	if _, ok := c.entries[companyID]; !ok {
		return
	}
	delete(c.entries, companyID)
	for i, k := range c.order {
		if k == companyID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// Len returns the number of cached cards.
func (c *CardCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *CardCache) moveToEnd(id string) {
	for i, k := range c.order {
		if k == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, id)
			return
		}
	}
}
