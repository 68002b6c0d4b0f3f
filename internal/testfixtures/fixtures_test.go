package testfixtures

import (
	"testing"

	"github.com/example/frontdesk-console/internal/tapechart"
)

func TestFixtures(t *testing.T) {
	t.Parallel()

	t.Run("room fixtures are distinct and loadable", func(t *testing.T) {
		t.Parallel()
		first := NewRoomFixture(WithRoomType("Suite"))
		second := NewRoomFixture()
		if first.ID == second.ID || first.Number == second.Number {
			t.Fatalf("fixtures must not collide: %+v vs %+v", first, second)
		}

		res := NewReservationFixture(WithReservationRoom(first))
		if res.RoomID != first.ID || res.RoomType != "Suite" {
			t.Fatalf("reservation did not adopt the room: %+v", res)
		}

		cal := tapechart.NewCalendar()
		from := tapechart.DateOnly(ReferenceTime())
		err := cal.Load(
			[]tapechart.Room{first.Chart(), second.Chart()},
			[]tapechart.Reservation{res.Chart()},
			from, from.AddDate(0, 0, 7),
		)
		if err != nil {
			t.Fatalf("load calendar from fixtures: %v", err)
		}
		cell, err := cal.CellAt(first.ID, from)
		if err != nil {
			t.Fatalf("cell: %v", err)
		}
		if cell.ReservationID != res.ID {
			t.Fatalf("cell = %+v, want reservation %s", cell, res.ID)
		}
	})

	t.Run("stored projections carry the reference timestamps", func(t *testing.T) {
		t.Parallel()
		staff := NewStaffFixture(WithStaffDisabled())
		stored := staff.Stored()
		if !stored.Disabled || stored.CreatedAt != ReferenceTime() {
			t.Fatalf("stored = %+v", stored)
		}

		room := NewRoomFixture(WithRoomStatus(tapechart.RoomOutOfOrder))
		if room.Stored().Status != string(tapechart.RoomOutOfOrder) {
			t.Fatalf("status = %q", room.Stored().Status)
		}
	})
}
