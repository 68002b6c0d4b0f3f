package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/frontdesk-console/internal/application"
	"github.com/example/frontdesk-console/internal/persistence"
	"github.com/example/frontdesk-console/internal/tapechart"
)

var (
	_ persistence.RoomRepository        = (*RoomRepository)(nil)
	_ persistence.ReservationRepository = (*ReservationRepository)(nil)
	_ persistence.StaffRepository       = (*StaffRepository)(nil)
	_ persistence.SessionRepository     = (*SessionRepository)(nil)
)

// Backend adapts the SQLite repositories to the ports the application layer
// consumes: calendar snapshots, assignment commits, room status changes and
// the credential/session stores.
type Backend struct {
	rooms        *RoomRepository
	reservations *ReservationRepository
	staff        *StaffRepository
	sessions     *SessionRepository
	idGenerator  func() string
	now          func() time.Time
}

// NewBackend wires the repositories behind a single adapter.
func NewBackend(store *Store, idGenerator func() string, now func() time.Time) *Backend {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &Backend{
		rooms:        NewRoomRepository(store, now),
		reservations: NewReservationRepository(store, now),
		staff:        NewStaffRepository(store, now),
		sessions:     NewSessionRepository(store),
		idGenerator:  idGenerator,
		now:          now,
	}
}

// Rooms exposes the room repository for seeding and administration.
func (b *Backend) Rooms() *RoomRepository {
	return b.rooms
}

// Reservations exposes the reservation repository for seeding and audits.
func (b *Backend) Reservations() *ReservationRepository {
	return b.reservations
}

// Staff exposes the staff repository for account provisioning.
func (b *Backend) Staff() *StaffRepository {
	return b.staff
}

// FetchCalendarSnapshot implements application.SnapshotSource. The viewID is
// accepted for multi-property deployments; a single store serves every view.
func (b *Backend) FetchCalendarSnapshot(ctx context.Context, viewID string, from, to time.Time) (application.Snapshot, error) {
	rooms, err := b.rooms.ListRooms(ctx)
	if err != nil {
		return application.Snapshot{}, fmt.Errorf("list rooms: %w", err)
	}

	reservations, err := b.reservations.ListReservations(ctx, persistence.ReservationFilter{From: &from, To: &to})
	if err != nil {
		return application.Snapshot{}, fmt.Errorf("list reservations: %w", err)
	}

	snapshot := application.Snapshot{
		Rooms:        make([]tapechart.Room, 0, len(rooms)),
		Reservations: make([]tapechart.Reservation, 0, len(reservations)),
	}
	for _, room := range rooms {
		snapshot.Rooms = append(snapshot.Rooms, tapechart.Room{
			ID:       room.ID,
			Number:   room.Number,
			Type:     room.Type,
			Floor:    room.Floor,
			Building: room.Building,
			Rate:     room.Rate,
			Status:   tapechart.RoomStatus(room.Status),
		})
	}
	for _, reservation := range reservations {
		var requests []string
		if reservation.SpecialRequests != nil && *reservation.SpecialRequests != "" {
			requests = []string{*reservation.SpecialRequests}
		}
		snapshot.Reservations = append(snapshot.Reservations, tapechart.Reservation{
			ID:              reservation.ID,
			GuestName:       reservation.GuestName,
			RoomType:        reservation.RoomType,
			RoomID:          reservation.RoomID,
			CheckIn:         reservation.CheckIn,
			CheckOut:        reservation.CheckOut,
			Adults:          reservation.Adults,
			Children:        reservation.Children,
			VIPTier:         reservation.VIPTier,
			Total:           reservation.Total,
			SpecialRequests: requests,
			CheckedIn:       reservation.CheckedIn,
		})
	}
	return snapshot, nil
}

// AssignReservation implements application.AssignmentBackend.
func (b *Backend) AssignReservation(ctx context.Context, reservationID, roomID string, date time.Time, opts application.AssignmentOptions) error {
	current, err := b.reservations.GetReservation(ctx, reservationID)
	if err != nil {
		return mapApplicationError(err)
	}

	record := persistence.AssignmentRecord{
		ID:         b.idGenerator(),
		FromRoomID: current.RoomID,
		Date:       tapechart.DateOnly(date),
		Notes:      opts.Notes,
		Reason:     opts.Reason,
		Overridden: opts.Overridden,
	}
	if err := b.reservations.ReassignRoom(ctx, reservationID, roomID, record); err != nil {
		return mapApplicationError(err)
	}

	if opts.LockRoom {
		if err := b.rooms.UpdateRoomStatus(ctx, roomID, string(tapechart.RoomBlocked), "locked after assignment"); err != nil {
			return mapApplicationError(err)
		}
	}
	return nil
}

// SetRoomStatus implements application.RoomStatusBackend.
func (b *Backend) SetRoomStatus(ctx context.Context, roomID, status, reason string) error {
	return mapApplicationError(b.rooms.UpdateRoomStatus(ctx, roomID, status, reason))
}

// GetStaffCredentialsByEmail implements application.CredentialStore.
func (b *Backend) GetStaffCredentialsByEmail(ctx context.Context, email string) (application.StaffCredentials, error) {
	staff, err := b.staff.GetStaffByEmail(ctx, email)
	if err != nil {
		return application.StaffCredentials{}, mapApplicationError(err)
	}
	return application.StaffCredentials{
		User:         staffToApplication(staff),
		PasswordHash: staff.PasswordHash,
	}, nil
}

// GetStaff implements application.CredentialStore.
func (b *Backend) GetStaff(ctx context.Context, id string) (application.StaffUser, error) {
	staff, err := b.staff.GetStaff(ctx, id)
	if err != nil {
		return application.StaffUser{}, mapApplicationError(err)
	}
	return staffToApplication(staff), nil
}

// CreateSession implements application.SessionStore.
func (b *Backend) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored := persistence.Session{
		ID:        session.ID,
		StaffID:   session.StaffID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		RevokedAt: session.RevokedAt,
	}
	if err := b.sessions.CreateSession(ctx, stored); err != nil {
		return application.Session{}, mapApplicationError(err)
	}
	return session, nil
}

// GetSession implements application.SessionStore.
func (b *Backend) GetSession(ctx context.Context, token string) (application.Session, error) {
	session, err := b.sessions.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, mapApplicationError(err)
	}
	return application.Session{
		ID:        session.ID,
		StaffID:   session.StaffID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		RevokedAt: session.RevokedAt,
	}, nil
}

// RevokeSession implements application.SessionStore.
func (b *Backend) RevokeSession(ctx context.Context, token string, revokedAt time.Time) error {
	return mapApplicationError(b.sessions.RevokeSession(ctx, token, revokedAt))
}

// DeleteExpiredSessions implements application.SessionStore.
func (b *Backend) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return mapApplicationError(b.sessions.DeleteExpiredSessions(ctx, reference))
}

func staffToApplication(staff persistence.StaffUser) application.StaffUser {
	return application.StaffUser{
		ID:          staff.ID,
		Email:       staff.Email,
		DisplayName: staff.DisplayName,
		Disabled:    staff.Disabled,
	}
}

// mapApplicationError translates persistence sentinels into the application
// layer's error vocabulary.
func mapApplicationError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return fmt.Errorf("%w: %v", application.ErrNotFound, err)
	}
	return err
}
