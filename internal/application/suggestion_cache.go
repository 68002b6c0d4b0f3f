package application

import (
	"fmt"
	"sync"
	"time"

	"github.com/example/frontdesk-console/internal/tapechart"
)

// suggestionCache stores recently computed room suggestions to avoid
// re-ranking on every pointer move while the chart remains unchanged. It is
// invalidated on every load, commit and abort.
type suggestionCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]suggestionCacheEntry
}

type suggestionCacheEntry struct {
	suggestions []tapechart.Suggestion
	expiresAt   time.Time
}

func newSuggestionCache(ttl time.Duration, maxEntries int, now func() time.Time) *suggestionCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 128
	}
	if now == nil {
		now = time.Now
	}
	return &suggestionCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]suggestionCacheEntry),
	}
}

func (c *suggestionCache) Get(key string) ([]tapechart.Suggestion, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return cloneSuggestions(entry.suggestions), true
}

func (c *suggestionCache) Store(key string, suggestions []tapechart.Suggestion) {
	if c == nil {
		return
	}
	cloned := cloneSuggestions(suggestions)
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = suggestionCacheEntry{suggestions: cloned, expiresAt: expiry}
}

func (c *suggestionCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]suggestionCacheEntry)
	c.mu.Unlock()
}

func (c *suggestionCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *suggestionCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

func cloneSuggestions(suggestions []tapechart.Suggestion) []tapechart.Suggestion {
	if len(suggestions) == 0 {
		return nil
	}
	out := make([]tapechart.Suggestion, len(suggestions))
	copy(out, suggestions)
	return out
}

func buildSuggestionCacheKey(reservationID string, opts tapechart.SuggestOptions) string {
	// Custom weights change the ranking, so they are part of the identity of
	// a cached result.
	weights := "default"
	if opts.Weights != nil {
		weights = fmt.Sprintf("%g/%g/%g/%g",
			opts.Weights.FullStay,
			opts.Weights.RateProximity,
			opts.Weights.FloorPreference,
			opts.Weights.FreeNights,
		)
	}
	return fmt.Sprintf("%s|%d|%s|%t|%s", reservationID, opts.Limit, opts.PreferredFloor, opts.RequireFullStay, weights)
}
