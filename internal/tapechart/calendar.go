package tapechart

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

var (
	// ErrCellNotFound is returned when a queried cell lies outside the loaded
	// chart. Callers should reload rather than keep querying a stale range.
	ErrCellNotFound = errors.New("tapechart: cell not found")
	// ErrCellOccupied is returned when a patch would place a second
	// reservation on an already occupied cell.
	ErrCellOccupied = errors.New("tapechart: cell already occupied")
	// ErrInvalidRange is returned when a load is requested for an empty or
	// inverted date range.
	ErrInvalidRange = errors.New("tapechart: invalid date range")
)

type cellKey struct {
	roomID string
	day    int64
}

func keyFor(roomID string, date time.Time) cellKey {
	return cellKey{roomID: roomID, day: DateOnly(date).Unix()}
}

// Calendar holds the in-memory snapshot of rooms and their per-date timeline
// for the currently displayed range. It is the only shared mutable state of
// the engine; Load and Patch are atomic with respect to concurrent reads.
type Calendar struct {
	mu           sync.RWMutex
	from, to     time.Time
	rooms        map[string]Room
	roomOrder    []string
	reservations map[string]Reservation
	cells        map[cellKey]TimelineCell
}

// NewCalendar returns an empty calendar. Load must be called before queries.
func NewCalendar() *Calendar {
	return &Calendar{
		rooms:        make(map[string]Room),
		reservations: make(map[string]Reservation),
		cells:        make(map[cellKey]TimelineCell),
	}
}

// Load rebuilds every timeline cell for the half-open range [from, to).
// Every (room, date) pair in range ends up with a defined status: cells not
// covered by a stay derive theirs from the room lifecycle status.
func (c *Calendar) Load(rooms []Room, reservations []Reservation, from, to time.Time) error {
	if c == nil {
		return fmt.Errorf("calendar is nil")
	}
	from = DateOnly(from)
	to = DateOnly(to)
	if !from.Before(to) {
		return ErrInvalidRange
	}

	roomIndex := make(map[string]Room, len(rooms))
	order := make([]string, 0, len(rooms))
	for _, room := range rooms {
		if _, ok := roomIndex[room.ID]; ok {
			continue
		}
		roomIndex[room.ID] = room
		order = append(order, room.ID)
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := roomIndex[order[i]], roomIndex[order[j]]
		if a.Number == b.Number {
			return a.ID < b.ID
		}
		return a.Number < b.Number
	})

	resIndex := make(map[string]Reservation, len(reservations))
	for _, res := range reservations {
		resIndex[res.ID] = res
	}

	cells := make(map[cellKey]TimelineCell)
	for _, roomID := range order {
		room := roomIndex[roomID]
		for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
			cells[keyFor(roomID, day)] = TimelineCell{
				RoomID: roomID,
				Date:   day,
				Status: vacantCellStatus(room.Status),
			}
		}
	}

	for _, res := range reservations {
		if _, ok := roomIndex[res.RoomID]; !ok {
			continue
		}
		for _, day := range res.StayDates() {
			key := keyFor(res.RoomID, day)
			cell, ok := cells[key]
			if !ok {
				continue
			}
			cell.ReservationID = res.ID
			cell.Status = occupiedCellStatus(res)
			cells[key] = cell
		}
	}

	c.mu.Lock()
	c.from = from
	c.to = to
	c.rooms = roomIndex
	c.roomOrder = order
	c.reservations = resIndex
	c.cells = cells
	c.mu.Unlock()
	return nil
}

func vacantCellStatus(status RoomStatus) CellStatus {
	switch status {
	case RoomMaintenance:
		return CellMaintenance
	case RoomOutOfOrder:
		return CellOutOfOrder
	case RoomBlocked:
		return CellBlocked
	default:
		return CellAvailable
	}
}

func occupiedCellStatus(res Reservation) CellStatus {
	if res.CheckedIn {
		return CellOccupied
	}
	return CellReserved
}

// Range returns the loaded half-open date range.
func (c *Calendar) Range() (time.Time, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.from, c.to
}

// InRange reports whether the date falls inside the loaded range.
func (c *Calendar) InRange(date time.Time) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inRangeLocked(date)
}

func (c *Calendar) inRangeLocked(date time.Time) bool {
	day := DateOnly(date)
	return !day.Before(c.from) && day.Before(c.to)
}

// CellAt answers a point query in O(1).
func (c *Calendar) CellAt(roomID string, date time.Time) (TimelineCell, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cell, ok := c.cells[keyFor(roomID, date)]
	if !ok {
		return TimelineCell{}, ErrCellNotFound
	}
	return cell, nil
}

// Room returns the projection for a room id.
func (c *Calendar) Room(id string) (Room, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	room, ok := c.rooms[id]
	return room, ok
}

// Rooms returns all rooms in display order.
func (c *Calendar) Rooms() []Room {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rooms := make([]Room, 0, len(c.roomOrder))
	for _, id := range c.roomOrder {
		rooms = append(rooms, c.rooms[id])
	}
	return rooms
}

// Reservation returns the loaded reservation with the given id.
func (c *Calendar) Reservation(id string) (Reservation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res, ok := c.reservations[id]
	return res, ok
}

// Reservations returns every loaded reservation ordered by check-in then id.
func (c *Calendar) Reservations() []Reservation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	reservations := make([]Reservation, 0, len(c.reservations))
	for _, res := range c.reservations {
		reservations = append(reservations, res)
	}
	sort.Slice(reservations, func(i, j int) bool {
		if reservations[i].CheckIn.Equal(reservations[j].CheckIn) {
			return reservations[i].ID < reservations[j].ID
		}
		return reservations[i].CheckIn.Before(reservations[j].CheckIn)
	})
	return reservations
}

// Patch applies a local optimistic update to one cell after a successful
// commit, avoiding a full reload. An empty reservation id vacates the cell.
// Placing a reservation on a cell held by a different one fails with
// ErrCellOccupied, keeping the single-occupant invariant.
func (c *Calendar) Patch(roomID string, date time.Time, reservationID string, status CellStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := keyFor(roomID, date)
	cell, ok := c.cells[key]
	if !ok {
		return ErrCellNotFound
	}

	if reservationID == "" {
		room := c.rooms[roomID]
		cell.ReservationID = ""
		cell.Status = vacantCellStatus(room.Status)
		if status != "" {
			cell.Status = status
		}
		c.cells[key] = cell
		return nil
	}

	if cell.ReservationID != "" && cell.ReservationID != reservationID {
		return ErrCellOccupied
	}
	cell.ReservationID = reservationID
	cell.Status = status
	c.cells[key] = cell
	return nil
}

// Assign moves a reservation between rooms by patching every night of the
// stay that falls inside the loaded range. The previous room's cells are
// vacated and the target room's cells take the reservation.
func (c *Calendar) Assign(res Reservation, fromRoomID, toRoomID string) error {
	status := occupiedCellStatus(res)
	for _, day := range res.StayDates() {
		if !c.InRange(day) {
			continue
		}
		if fromRoomID != "" && fromRoomID != toRoomID {
			if err := c.Patch(fromRoomID, day, "", ""); err != nil && !errors.Is(err, ErrCellNotFound) {
				return err
			}
		}
		if err := c.Patch(toRoomID, day, res.ID, status); err != nil {
			return err
		}
	}

	c.mu.Lock()
	if stored, ok := c.reservations[res.ID]; ok {
		stored.RoomID = toRoomID
		c.reservations[res.ID] = stored
	} else {
		res.RoomID = toRoomID
		c.reservations[res.ID] = res
	}
	c.mu.Unlock()
	return nil
}

// SetRoomStatus updates the room projection and reprojects the new status
// onto every vacant cell of that room.
func (c *Calendar) SetRoomStatus(roomID string, status RoomStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.rooms[roomID]
	if !ok {
		return ErrCellNotFound
	}
	room.Status = status
	c.rooms[roomID] = room

	for day := c.from; day.Before(c.to); day = day.AddDate(0, 0, 1) {
		key := keyFor(roomID, day)
		cell, ok := c.cells[key]
		if !ok || cell.ReservationID != "" {
			continue
		}
		cell.Status = vacantCellStatus(status)
		c.cells[key] = cell
	}
	return nil
}

// FreeNights counts the nights of the stay that are free in the given room,
// together with the number of stay nights inside the loaded range. A night
// held by the reservation itself counts as free, so a room is always free
// for the stay it already hosts.
func (c *Calendar) FreeNights(roomID string, res Reservation) (free, total int) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, day := range res.StayDates() {
		if !c.inRangeLocked(day) {
			continue
		}
		total++
		cell, ok := c.cells[keyFor(roomID, day)]
		if !ok {
			continue
		}
		if cell.ReservationID == "" || cell.ReservationID == res.ID {
			free++
		}
	}
	return free, total
}
