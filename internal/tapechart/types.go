// Package tapechart implements the in-memory core of the room assignment
// engine: the calendar grid of rooms and dates, conflict evaluation for
// proposed moves, and ranking of alternative rooms. The package is pure:
// it performs no I/O and is safe to call on every pointer movement.
package tapechart

import "time"

// DateLayout is the canonical textual form for chart dates.
const DateLayout = "2006-01-02"

// RoomStatus describes the lifecycle status of a room as owned by the backend.
type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomOccupied    RoomStatus = "occupied"
	RoomReserved    RoomStatus = "reserved"
	RoomMaintenance RoomStatus = "maintenance"
	RoomDirty       RoomStatus = "dirty"
	RoomClean       RoomStatus = "clean"
	RoomOutOfOrder  RoomStatus = "out_of_order"
	RoomBlocked     RoomStatus = "blocked"
)

// ValidRoomStatus reports whether the value is a known room lifecycle status.
func ValidRoomStatus(status RoomStatus) bool {
	switch status {
	case RoomAvailable, RoomOccupied, RoomReserved, RoomMaintenance,
		RoomDirty, RoomClean, RoomOutOfOrder, RoomBlocked:
		return true
	}
	return false
}

// OutOfService reports whether a room must not accept new assignments.
func (s RoomStatus) OutOfService() bool {
	return s == RoomMaintenance || s == RoomOutOfOrder
}

// Room is a read-only projection of a backend room.
type Room struct {
	ID       string
	Number   string
	Type     string
	Floor    string
	Building string
	Rate     float64
	Status   RoomStatus
}

// Reservation is the unit moved by a drag gesture. It is immutable for the
// duration of one operation; a move changes only its room assignment.
type Reservation struct {
	ID              string
	GuestName       string
	RoomType        string
	RoomID          string
	CheckIn         time.Time
	CheckOut        time.Time
	Adults          int
	Children        int
	VIPTier         int
	Total           float64
	SpecialRequests []string
	CheckedIn       bool
}

// Nights returns the number of nights in the half-open stay interval.
func (r Reservation) Nights() int {
	nights := int(DateOnly(r.CheckOut).Sub(DateOnly(r.CheckIn)).Hours() / 24)
	if nights < 0 {
		return 0
	}
	return nights
}

// NightlyRate derives the per-night monetary rate from the reservation total.
func (r Reservation) NightlyRate() float64 {
	nights := r.Nights()
	if nights == 0 {
		return 0
	}
	return r.Total / float64(nights)
}

// Covers reports whether the stay occupies the given date, using the
// half-open convention checkIn <= date < checkOut.
func (r Reservation) Covers(date time.Time) bool {
	day := DateOnly(date)
	return !day.Before(DateOnly(r.CheckIn)) && day.Before(DateOnly(r.CheckOut))
}

// StayDates enumerates every occupied night of the stay.
func (r Reservation) StayDates() []time.Time {
	nights := r.Nights()
	if nights == 0 {
		return nil
	}
	dates := make([]time.Time, 0, nights)
	for day := DateOnly(r.CheckIn); day.Before(DateOnly(r.CheckOut)); day = day.AddDate(0, 0, 1) {
		dates = append(dates, day)
	}
	return dates
}

// CellStatus describes the derived per-day availability of a single cell.
type CellStatus string

const (
	CellAvailable   CellStatus = "available"
	CellOccupied    CellStatus = "occupied"
	CellReserved    CellStatus = "reserved"
	CellMaintenance CellStatus = "maintenance"
	CellOutOfOrder  CellStatus = "out_of_order"
	CellBlocked     CellStatus = "blocked"
)

// TimelineCell is the addressable (room, date) unit of the chart. Cells are
// recomputed from rooms and reservations, never persisted on their own.
type TimelineCell struct {
	RoomID          string
	Date            time.Time
	Status          CellStatus
	ReservationID   string
	PredictionScore float64
	Notes           []string
}

// Occupied reports whether the cell already holds a reservation.
func (c TimelineCell) Occupied() bool {
	return c.Status == CellOccupied || c.Status == CellReserved
}

// CellRef addresses a single chart cell.
type CellRef struct {
	RoomID string
	Date   time.Time
}

// DateOnly truncates a time to midnight UTC so cell keys compare by day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
