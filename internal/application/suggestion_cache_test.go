package application

import (
	"testing"
	"time"

	"github.com/example/frontdesk-console/internal/tapechart"
)

func TestSuggestionCache(t *testing.T) {
	base := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	current := base
	now := func() time.Time { return current }

	suggestions := []tapechart.Suggestion{{RoomID: "r-203", RoomNumber: "203", Score: 70}}

	t.Run("stores and serves within ttl", func(t *testing.T) {
		cache := newSuggestionCache(30*time.Second, 4, now)
		current = base

		cache.Store("res-1|0||false", suggestions)
		got, ok := cache.Get("res-1|0||false")
		if !ok || len(got) != 1 || got[0].RoomID != "r-203" {
			t.Fatalf("expected cached suggestions, got %v ok=%t", got, ok)
		}
	})

	t.Run("expires after ttl", func(t *testing.T) {
		cache := newSuggestionCache(30*time.Second, 4, now)
		current = base
		cache.Store("res-1|0||false", suggestions)

		current = base.Add(31 * time.Second)
		if _, ok := cache.Get("res-1|0||false"); ok {
			t.Fatal("expected the entry to expire")
		}
	})

	t.Run("invalidate clears everything", func(t *testing.T) {
		cache := newSuggestionCache(30*time.Second, 4, now)
		current = base
		cache.Store("a", suggestions)
		cache.Store("b", suggestions)

		cache.Invalidate()
		if _, ok := cache.Get("a"); ok {
			t.Fatal("expected an empty cache after invalidation")
		}
	})

	t.Run("bounded entry count", func(t *testing.T) {
		cache := newSuggestionCache(30*time.Second, 2, now)
		current = base
		cache.Store("a", suggestions)
		cache.Store("b", suggestions)
		cache.Store("c", suggestions)

		cache.mu.RLock()
		size := len(cache.entries)
		cache.mu.RUnlock()
		if size > 2 {
			t.Fatalf("cache exceeded its bound: %d entries", size)
		}
	})

	t.Run("cached slices are isolated from callers", func(t *testing.T) {
		cache := newSuggestionCache(30*time.Second, 4, now)
		current = base
		cache.Store("a", suggestions)

		got, _ := cache.Get("a")
		got[0].RoomID = "mutated"

		again, _ := cache.Get("a")
		if again[0].RoomID != "r-203" {
			t.Fatalf("cache entry mutated through a returned slice: %+v", again)
		}
	})
}

func TestBuildSuggestionCacheKey(t *testing.T) {
	a := buildSuggestionCacheKey("res-1", tapechart.SuggestOptions{Limit: 3, PreferredFloor: "2"})
	b := buildSuggestionCacheKey("res-1", tapechart.SuggestOptions{Limit: 3, PreferredFloor: "3"})
	if a == b {
		t.Fatalf("distinct options must produce distinct keys: %q", a)
	}

	custom := buildSuggestionCacheKey("res-1", tapechart.SuggestOptions{
		Limit:   3,
		Weights: &tapechart.ScoringWeights{FullStay: 90, RateProximity: 5, FloorPreference: 3, FreeNights: 2},
	})
	defaults := buildSuggestionCacheKey("res-1", tapechart.SuggestOptions{Limit: 3})
	if custom == defaults {
		t.Fatalf("custom weights must not share a key with the defaults: %q", custom)
	}

	other := buildSuggestionCacheKey("res-1", tapechart.SuggestOptions{
		Limit:   3,
		Weights: &tapechart.ScoringWeights{FullStay: 40, RateProximity: 30, FloorPreference: 20, FreeNights: 10},
	})
	if custom == other {
		t.Fatalf("different weights must produce distinct keys: %q", custom)
	}
}
