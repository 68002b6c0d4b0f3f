package tapechart

import (
	"fmt"
	"strings"
)

// ConflictKind classifies why a proposed (reservation, room, date) assignment
// cannot be committed.
type ConflictKind string

const (
	// ConflictUnsuitable indicates a structural mismatch between the room and
	// the reservation, such as a wrong room type.
	ConflictUnsuitable ConflictKind = "unsuitable"
	// ConflictLocked indicates the target date falls outside the stay.
	ConflictLocked ConflictKind = "locked"
	// ConflictOccupied indicates another reservation holds the target cell.
	ConflictOccupied ConflictKind = "occupied"
	// ConflictMaintenance indicates the room is out of service.
	ConflictMaintenance ConflictKind = "maintenance"
)

// Conflict is a derived value describing an invalid move. It carries a
// renderable message and remediation suggestions but is never persisted.
type Conflict struct {
	Kind        ConflictKind
	Message     string
	Suggestions []string
}

// Evaluate classifies a proposed move of a reservation onto a target cell.
// A nil result means the move is valid. The check order is a deliberate
// tie-break policy: type mismatches are reported before date problems, date
// problems before occupancy, occupancy before room availability, so the most
// structural issue always surfaces first. Evaluate never returns an error;
// targets outside the loaded chart degrade to typed conflicts.
func Evaluate(cal *Calendar, res Reservation, target CellRef) *Conflict {
	room, ok := cal.Room(target.RoomID)
	if !ok {
		return &Conflict{
			Kind:        ConflictUnsuitable,
			Message:     fmt.Sprintf("room %s is not part of the loaded chart", target.RoomID),
			Suggestions: []string{"reload the chart before assigning"},
		}
	}

	if !strings.EqualFold(room.Type, res.RoomType) {
		return &Conflict{
			Kind: ConflictUnsuitable,
			Message: fmt.Sprintf("room %s is a %s room but the booking requires %s",
				room.Number, room.Type, res.RoomType),
			Suggestions: []string{
				"select a room with a matching type",
				"update the booking to match the room type",
			},
		}
	}

	day := DateOnly(target.Date)
	if day.Before(DateOnly(res.CheckIn)) {
		return &Conflict{
			Kind: ConflictLocked,
			Message: fmt.Sprintf("%s checks in on %s", guestLabel(res),
				DateOnly(res.CheckIn).Format(DateLayout)),
			Suggestions: []string{"drop the booking on a date within its stay"},
		}
	}
	if !day.Before(DateOnly(res.CheckOut)) {
		return &Conflict{
			Kind: ConflictLocked,
			Message: fmt.Sprintf("%s checks out on %s", guestLabel(res),
				DateOnly(res.CheckOut).Format(DateLayout)),
			Suggestions: []string{"drop the booking on a date within its stay"},
		}
	}

	cell, err := cal.CellAt(target.RoomID, day)
	if err != nil {
		return &Conflict{
			Kind:        ConflictLocked,
			Message:     fmt.Sprintf("date %s is outside the loaded chart range", day.Format(DateLayout)),
			Suggestions: []string{"reload the chart for the target date range"},
		}
	}

	if cell.Occupied() && cell.ReservationID != res.ID {
		message := fmt.Sprintf("room %s is already taken on %s", room.Number, day.Format(DateLayout))
		if occupant, ok := cal.Reservation(cell.ReservationID); ok && occupant.GuestName != "" {
			message = fmt.Sprintf("room %s is already taken by %s on %s",
				room.Number, occupant.GuestName, day.Format(DateLayout))
		}
		return &Conflict{
			Kind:        ConflictOccupied,
			Message:     message,
			Suggestions: []string{"choose a vacant room for these dates"},
		}
	}

	if room.Status.OutOfService() {
		return &Conflict{
			Kind:        ConflictMaintenance,
			Message:     fmt.Sprintf("room %s is out of service (%s)", room.Number, room.Status),
			Suggestions: []string{"choose an active room", "clear the room status first"},
		}
	}

	return nil
}

// BatchMember pairs one reservation of a batch operation with its own target.
type BatchMember struct {
	Reservation Reservation
	Target      CellRef
}

// BatchResult reports the evaluation outcome for one batch member. A nil
// Conflict means the member is valid.
type BatchResult struct {
	ReservationID string
	Target        CellRef
	Conflict      *Conflict
}

// EvaluateBatch evaluates every member independently against its target.
// The operation as a whole is valid only when every member is.
func EvaluateBatch(cal *Calendar, members []BatchMember) []BatchResult {
	results := make([]BatchResult, 0, len(members))
	for _, member := range members {
		results = append(results, BatchResult{
			ReservationID: member.Reservation.ID,
			Target:        member.Target,
			Conflict:      Evaluate(cal, member.Reservation, member.Target),
		})
	}
	return results
}

// BatchValid reports whether every member of a batch evaluation passed.
func BatchValid(results []BatchResult) bool {
	for _, result := range results {
		if result.Conflict != nil {
			return false
		}
	}
	return true
}

func guestLabel(res Reservation) string {
	if res.GuestName != "" {
		return res.GuestName
	}
	return "the booking"
}
