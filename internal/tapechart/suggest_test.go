package tapechart

import (
	"reflect"
	"testing"
)

func TestSuggest(t *testing.T) {
	t.Run("only matching active rooms qualify", func(t *testing.T) {
		cal := loadedChart(t)
		res := fixtureReservation(t)

		suggestions := Suggest(cal, res, SuggestOptions{})
		if len(suggestions) != 1 {
			t.Fatalf("expected a single candidate, got %+v", suggestions)
		}
		// 101 is the wrong type, 202 is under maintenance, 201 is the
		// reservation's own room.
		if suggestions[0].RoomID != "r-203" {
			t.Fatalf("expected r-203, got %s", suggestions[0].RoomID)
		}
		if len(suggestions[0].Reasons) == 0 {
			t.Fatal("suggestion must explain itself")
		}
	})

	t.Run("full stay availability outranks partial", func(t *testing.T) {
		cal := NewCalendar()
		rooms := append(fixtureRooms(),
			Room{ID: "r-204", Number: "204", Type: "Suite", Floor: "2", Rate: 250, Status: RoomAvailable})
		blocker := Reservation{
			ID:       "res-2",
			RoomType: "Suite",
			RoomID:   "r-203",
			CheckIn:  date(t, "2024-03-11"),
			CheckOut: date(t, "2024-03-12"),
		}
		err := cal.Load(rooms, []Reservation{fixtureReservation(t), blocker},
			date(t, "2024-03-08"), date(t, "2024-03-16"))
		if err != nil {
			t.Fatalf("load chart: %v", err)
		}

		suggestions := Suggest(cal, fixtureReservation(t), SuggestOptions{})
		if len(suggestions) != 2 {
			t.Fatalf("expected 2 candidates, got %+v", suggestions)
		}
		if suggestions[0].RoomID != "r-204" {
			t.Fatalf("fully free room should rank first, got %s", suggestions[0].RoomID)
		}
		if suggestions[1].RoomID != "r-203" {
			t.Fatalf("partially free room should rank second, got %s", suggestions[1].RoomID)
		}
	})

	t.Run("require full stay filters partial rooms", func(t *testing.T) {
		cal := loadedChart(t)
		res := fixtureReservation(t)
		other := Reservation{
			ID:       "res-2",
			RoomType: "Suite",
			CheckIn:  date(t, "2024-03-11"),
			CheckOut: date(t, "2024-03-12"),
		}
		if err := cal.Assign(other, "", "r-203"); err != nil {
			t.Fatalf("assign blocker: %v", err)
		}

		suggestions := Suggest(cal, res, SuggestOptions{RequireFullStay: true})
		if len(suggestions) != 0 {
			t.Fatalf("expected no candidates, got %+v", suggestions)
		}
	})

	t.Run("preferred floor raises the score", func(t *testing.T) {
		cal := NewCalendar()
		rooms := []Room{
			{ID: "r-301", Number: "301", Type: "Suite", Floor: "3", Rate: 250, Status: RoomAvailable},
			{ID: "r-401", Number: "401", Type: "Suite", Floor: "4", Rate: 250, Status: RoomAvailable},
		}
		err := cal.Load(rooms, nil, date(t, "2024-03-08"), date(t, "2024-03-16"))
		if err != nil {
			t.Fatalf("load chart: %v", err)
		}

		suggestions := Suggest(cal, fixtureReservation(t), SuggestOptions{PreferredFloor: "4"})
		if len(suggestions) != 2 || suggestions[0].RoomID != "r-401" {
			t.Fatalf("preferred floor should rank first, got %+v", suggestions)
		}
	})

	t.Run("deterministic with id tiebreak", func(t *testing.T) {
		cal := NewCalendar()
		rooms := []Room{
			{ID: "r-b", Number: "2", Type: "Suite", Rate: 250, Status: RoomAvailable},
			{ID: "r-a", Number: "1", Type: "Suite", Rate: 250, Status: RoomAvailable},
		}
		err := cal.Load(rooms, nil, date(t, "2024-03-08"), date(t, "2024-03-16"))
		if err != nil {
			t.Fatalf("load chart: %v", err)
		}

		first := Suggest(cal, fixtureReservation(t), SuggestOptions{})
		second := Suggest(cal, fixtureReservation(t), SuggestOptions{})
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("suggestions not deterministic: %+v vs %+v", first, second)
		}
		if len(first) != 2 || first[0].RoomID != "r-a" {
			t.Fatalf("equal scores must tie-break by room id, got %+v", first)
		}
	})

	t.Run("empty result when nothing fits", func(t *testing.T) {
		cal := loadedChart(t)
		res := fixtureReservation(t)
		res.RoomType = "Penthouse"

		suggestions := Suggest(cal, res, SuggestOptions{})
		if suggestions == nil || len(suggestions) != 0 {
			t.Fatalf("expected empty, non-nil slice, got %#v", suggestions)
		}
	})

	t.Run("limit caps the list", func(t *testing.T) {
		cal := NewCalendar()
		rooms := []Room{
			{ID: "r-1", Number: "1", Type: "Suite", Rate: 250, Status: RoomAvailable},
			{ID: "r-2", Number: "2", Type: "Suite", Rate: 250, Status: RoomAvailable},
			{ID: "r-3", Number: "3", Type: "Suite", Rate: 250, Status: RoomAvailable},
		}
		if err := cal.Load(rooms, nil, date(t, "2024-03-08"), date(t, "2024-03-16")); err != nil {
			t.Fatalf("load chart: %v", err)
		}

		suggestions := Suggest(cal, fixtureReservation(t), SuggestOptions{Limit: 2})
		if len(suggestions) != 2 {
			t.Fatalf("expected 2 suggestions, got %d", len(suggestions))
		}
	})
}
