package persistence

import (
	"context"
	"time"
)

// RoomRepository exposes room catalog operations.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	UpdateRoomStatus(ctx context.Context, id, status, reason string) error
}

// ReservationFilter narrows reservation queries to a date window. Both bounds
// are optional; the window matches any stay overlapping it.
type ReservationFilter struct {
	From *time.Time
	To   *time.Time
}

// ReservationRepository exposes booking storage operations.
type ReservationRepository interface {
	CreateReservation(ctx context.Context, reservation Reservation) error
	GetReservation(ctx context.Context, id string) (Reservation, error)
	ListReservations(ctx context.Context, filter ReservationFilter) ([]Reservation, error)
	ReassignRoom(ctx context.Context, reservationID, roomID string, record AssignmentRecord) error
	ListAssignments(ctx context.Context, reservationID string) ([]AssignmentRecord, error)
}

// StaffRepository exposes staff account lookups for authentication.
type StaffRepository interface {
	CreateStaff(ctx context.Context, staff StaffUser) error
	GetStaffByEmail(ctx context.Context, email string) (StaffUser, error)
	GetStaff(ctx context.Context, id string) (StaffUser, error)
}

// SessionRepository stores issued staff sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) error
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}
