package testfixtures

import (
	"testing"
	"time"
)

func TestClock(t *testing.T) {
	t.Parallel()

	t.Run("defaults to the reference time", func(t *testing.T) {
		t.Parallel()
		clock := NewClock(time.Time{})
		if !clock.Now().Equal(ReferenceTime()) {
			t.Fatalf("now = %v, want %v", clock.Now(), ReferenceTime())
		}
	})

	t.Run("advance moves the clock forward", func(t *testing.T) {
		t.Parallel()
		start := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
		clock := NewClock(start)

		updated := clock.Advance(90 * time.Minute)
		if !updated.Equal(start.Add(90 * time.Minute)) {
			t.Fatalf("advanced = %v", updated)
		}
		if !clock.Now().Equal(updated) {
			t.Fatalf("now = %v, want %v", clock.Now(), updated)
		}
	})

	t.Run("set replaces the current instant", func(t *testing.T) {
		t.Parallel()
		clock := NewClock(time.Time{})
		target := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

		clock.Set(target)
		if !clock.NowFunc()().Equal(target) {
			t.Fatalf("now = %v, want %v", clock.Now(), target)
		}
	})
}
