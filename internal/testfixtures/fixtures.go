package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/frontdesk-console/internal/persistence"
	"github.com/example/frontdesk-console/internal/tapechart"
)

var (
	roomCounter        uint64
	reservationCounter uint64
	staffCounter       uint64
)

var referenceTime = time.Date(2024, time.March, 10, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// RoomFixture represents a deterministic room record that can be materialised
// for chart or persistence tests.
type RoomFixture struct {
	ID       string
	Number   string
	Type     string
	Floor    string
	Building string
	Rate     float64
	Status   tapechart.RoomStatus
}

// RoomOption configures the generated room fixture.
type RoomOption func(*RoomFixture)

// NewRoomFixture returns a deterministic room fixture with optional overrides.
func NewRoomFixture(opts ...RoomOption) RoomFixture {
	idx := atomic.AddUint64(&roomCounter, 1)
	fixture := RoomFixture{
		ID:     fmt.Sprintf("room-%03d", idx),
		Number: fmt.Sprintf("%d", 100+idx),
		Type:   "Standard",
		Floor:  "1",
		Rate:   120,
		Status: tapechart.RoomAvailable,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(f *RoomFixture) { f.ID = id }
}

// WithRoomNumber overrides the generated room number.
func WithRoomNumber(number string) RoomOption {
	return func(f *RoomFixture) { f.Number = number }
}

// WithRoomType overrides the generated room type.
func WithRoomType(roomType string) RoomOption {
	return func(f *RoomFixture) { f.Type = roomType }
}

// WithRoomFloor overrides the generated floor.
func WithRoomFloor(floor string) RoomOption {
	return func(f *RoomFixture) { f.Floor = floor }
}

// WithRoomStatus overrides the generated lifecycle status.
func WithRoomStatus(status tapechart.RoomStatus) RoomOption {
	return func(f *RoomFixture) { f.Status = status }
}

// Chart materialises the fixture as a tape chart room projection.
func (f RoomFixture) Chart() tapechart.Room {
	return tapechart.Room{
		ID:       f.ID,
		Number:   f.Number,
		Type:     f.Type,
		Floor:    f.Floor,
		Building: f.Building,
		Rate:     f.Rate,
		Status:   f.Status,
	}
}

// Stored materialises the fixture as a persistence room record.
func (f RoomFixture) Stored() persistence.Room {
	return persistence.Room{
		ID:        f.ID,
		Number:    f.Number,
		Type:      f.Type,
		Floor:     f.Floor,
		Building:  f.Building,
		Rate:      f.Rate,
		Status:    string(f.Status),
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
}

// ReservationFixture represents a deterministic booking record.
type ReservationFixture struct {
	ID        string
	GuestName string
	RoomType  string
	RoomID    string
	CheckIn   time.Time
	CheckOut  time.Time
	Adults    int
	Children  int
	VIPTier   int
	Total     float64
	CheckedIn bool
}

// ReservationOption configures the generated reservation fixture.
type ReservationOption func(*ReservationFixture)

// NewReservationFixture returns a deterministic reservation fixture. The stay
// defaults to two nights starting on the reference date.
func NewReservationFixture(opts ...ReservationOption) ReservationFixture {
	idx := atomic.AddUint64(&reservationCounter, 1)
	checkIn := tapechart.DateOnly(referenceTime)
	fixture := ReservationFixture{
		ID:        fmt.Sprintf("res-%03d", idx),
		GuestName: fmt.Sprintf("Guest %03d", idx),
		RoomType:  "Standard",
		CheckIn:   checkIn,
		CheckOut:  checkIn.AddDate(0, 0, 2),
		Adults:    2,
		Total:     240,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithReservationID overrides the generated reservation ID.
func WithReservationID(id string) ReservationOption {
	return func(f *ReservationFixture) { f.ID = id }
}

// WithGuestName overrides the generated guest name.
func WithGuestName(name string) ReservationOption {
	return func(f *ReservationFixture) { f.GuestName = name }
}

// WithReservationRoom assigns the reservation to a room and adopts its type.
func WithReservationRoom(room RoomFixture) ReservationOption {
	return func(f *ReservationFixture) {
		f.RoomID = room.ID
		f.RoomType = room.Type
	}
}

// WithStay overrides the half-open stay interval.
func WithStay(checkIn, checkOut time.Time) ReservationOption {
	return func(f *ReservationFixture) {
		f.CheckIn = tapechart.DateOnly(checkIn)
		f.CheckOut = tapechart.DateOnly(checkOut)
	}
}

// WithVIPTier overrides the generated VIP tier.
func WithVIPTier(tier int) ReservationOption {
	return func(f *ReservationFixture) { f.VIPTier = tier }
}

// Chart materialises the fixture as a tape chart reservation.
func (f ReservationFixture) Chart() tapechart.Reservation {
	return tapechart.Reservation{
		ID:        f.ID,
		GuestName: f.GuestName,
		RoomType:  f.RoomType,
		RoomID:    f.RoomID,
		CheckIn:   f.CheckIn,
		CheckOut:  f.CheckOut,
		Adults:    f.Adults,
		Children:  f.Children,
		VIPTier:   f.VIPTier,
		Total:     f.Total,
		CheckedIn: f.CheckedIn,
	}
}

// Stored materialises the fixture as a persistence reservation record.
func (f ReservationFixture) Stored() persistence.Reservation {
	return persistence.Reservation{
		ID:        f.ID,
		GuestName: f.GuestName,
		RoomType:  f.RoomType,
		RoomID:    f.RoomID,
		CheckIn:   f.CheckIn,
		CheckOut:  f.CheckOut,
		Adults:    f.Adults,
		Children:  f.Children,
		VIPTier:   f.VIPTier,
		Total:     f.Total,
		CheckedIn: f.CheckedIn,
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
}

// StaffFixture represents a deterministic staff account record.
type StaffFixture struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	Disabled     bool
}

// StaffOption configures the generated staff fixture.
type StaffOption func(*StaffFixture)

// NewStaffFixture returns a deterministic staff fixture with optional
// overrides.
func NewStaffFixture(opts ...StaffOption) StaffFixture {
	idx := atomic.AddUint64(&staffCounter, 1)
	id := fmt.Sprintf("staff-%03d", idx)
	fixture := StaffFixture{
		ID:           id,
		Email:        fmt.Sprintf("%s@example.com", id),
		DisplayName:  fmt.Sprintf("Staff %03d", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithStaffEmail overrides the generated email address.
func WithStaffEmail(email string) StaffOption {
	return func(f *StaffFixture) { f.Email = email }
}

// WithStaffDisabled marks the account disabled.
func WithStaffDisabled() StaffOption {
	return func(f *StaffFixture) { f.Disabled = true }
}

// Stored materialises the fixture as a persistence staff record.
func (f StaffFixture) Stored() persistence.StaffUser {
	return persistence.StaffUser{
		ID:           f.ID,
		Email:        f.Email,
		DisplayName:  f.DisplayName,
		PasswordHash: f.PasswordHash,
		Disabled:     f.Disabled,
		CreatedAt:    referenceTime,
		UpdatedAt:    referenceTime,
	}
}
