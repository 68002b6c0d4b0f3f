package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/frontdesk-console/internal/persistence"
)

// ReservationRepository implements persistence.ReservationRepository using
// SQLite. ReassignRoom is the write path behind every drag/drop commit: the
// room change, the overlap guard and the audit record share one transaction.
type ReservationRepository struct {
	store *Store
	now   func() time.Time
}

// NewReservationRepository creates a new SQLite reservation repository.
func NewReservationRepository(store *Store, now func() time.Time) *ReservationRepository {
	if now == nil {
		now = time.Now
	}
	return &ReservationRepository{store: store, now: now}
}

// CreateReservation inserts a new booking.
func (r *ReservationRepository) CreateReservation(ctx context.Context, reservation persistence.Reservation) error {
	if reservation.ID == "" || reservation.GuestName == "" {
		return fmt.Errorf("sqlite: reservation id and guest name are required")
	}
	if !reservation.CheckIn.Before(reservation.CheckOut) {
		return fmt.Errorf("sqlite: check-in must precede check-out")
	}

	now := r.now().UTC()
	reservation.CreatedAt = now
	reservation.UpdatedAt = now

	query := `
		INSERT INTO reservations (
			id, guest_name, room_type, room_id, check_in, check_out,
			adults, children, vip_tier, total, special_requests,
			checked_in, cancelled, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.store.db.ExecContext(ctx, query,
		reservation.ID,
		reservation.GuestName,
		reservation.RoomType,
		reservation.RoomID,
		formatDate(reservation.CheckIn),
		formatDate(reservation.CheckOut),
		reservation.Adults,
		reservation.Children,
		reservation.VIPTier,
		reservation.Total,
		reservation.SpecialRequests,
		reservation.CheckedIn,
		reservation.Cancelled,
		formatTime(reservation.CreatedAt),
		formatTime(reservation.UpdatedAt),
	)
	return mapError(err)
}

// GetReservation retrieves a booking by ID.
func (r *ReservationRepository) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	if id == "" {
		return persistence.Reservation{}, persistence.ErrNotFound
	}

	query := reservationColumns + ` WHERE id = ?`
	reservation, err := scanReservation(r.store.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return persistence.Reservation{}, mapError(err)
	}
	return reservation, nil
}

// ListReservations returns non-cancelled bookings whose stay overlaps the
// filter window, ordered by check-in then ID.
func (r *ReservationRepository) ListReservations(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.Reservation, error) {
	clauses := []string{"cancelled = 0"}
	args := []any{}
	if filter.From != nil {
		clauses = append(clauses, "check_out > ?")
		args = append(args, formatDate(*filter.From))
	}
	if filter.To != nil {
		clauses = append(clauses, "check_in < ?")
		args = append(args, formatDate(*filter.To))
	}

	query := reservationColumns + " WHERE " + strings.Join(clauses, " AND ") +
		" ORDER BY check_in ASC, id ASC"
	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var reservations []persistence.Reservation
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return reservations, nil
}

// ReassignRoom moves a booking to another room and writes the audit record.
// The overlap guard re-checks occupancy inside the transaction, so a stale
// in-memory chart can never produce a double booking.
func (r *ReservationRepository) ReassignRoom(ctx context.Context, reservationID, roomID string, record persistence.AssignmentRecord) error {
	if reservationID == "" || roomID == "" {
		return fmt.Errorf("sqlite: reservation id and room id are required")
	}

	return r.store.WithTransaction(ctx, func(tx *sql.Tx) error {
		var checkIn, checkOut string
		err := tx.QueryRow(
			`SELECT check_in, check_out FROM reservations WHERE id = ? AND cancelled = 0`,
			reservationID,
		).Scan(&checkIn, &checkOut)
		if err != nil {
			if err == sql.ErrNoRows {
				return persistence.ErrNotFound
			}
			return mapError(err)
		}

		var roomExists int
		if err := tx.QueryRow(`SELECT COUNT(1) FROM rooms WHERE id = ?`, roomID).Scan(&roomExists); err != nil {
			return mapError(err)
		}
		if roomExists == 0 {
			return fmt.Errorf("%w: room %s", persistence.ErrNotFound, roomID)
		}

		var overlapping int
		err = tx.QueryRow(`
			SELECT COUNT(1) FROM reservations
			WHERE room_id = ? AND id != ? AND cancelled = 0
			  AND check_in < ? AND check_out > ?
		`, roomID, reservationID, checkOut, checkIn).Scan(&overlapping)
		if err != nil {
			return mapError(err)
		}
		if overlapping > 0 {
			return fmt.Errorf("%w: room %s is booked during the stay", persistence.ErrOverlap, roomID)
		}

		now := r.now().UTC()
		if _, err := tx.Exec(
			`UPDATE reservations SET room_id = ?, updated_at = ? WHERE id = ?`,
			roomID, formatTime(now), reservationID,
		); err != nil {
			return mapError(err)
		}

		record.ReservationID = reservationID
		record.ToRoomID = roomID
		record.CreatedAt = now
		_, err = tx.Exec(`
			INSERT INTO assignments (id, reservation_id, from_room_id, to_room_id, date, notes, reason, overridden, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			record.ID,
			record.ReservationID,
			record.FromRoomID,
			record.ToRoomID,
			formatDate(record.Date),
			record.Notes,
			record.Reason,
			record.Overridden,
			formatTime(record.CreatedAt),
		)
		return mapError(err)
	})
}

// ListAssignments returns the audit trail for a booking, newest first.
func (r *ReservationRepository) ListAssignments(ctx context.Context, reservationID string) ([]persistence.AssignmentRecord, error) {
	query := `
		SELECT id, reservation_id, from_room_id, to_room_id, date, notes, reason, overridden, created_at
		FROM assignments
		WHERE reservation_id = ?
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.store.db.QueryContext(ctx, query, reservationID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var records []persistence.AssignmentRecord
	for rows.Next() {
		var record persistence.AssignmentRecord
		var date, createdAt string
		if err := rows.Scan(
			&record.ID,
			&record.ReservationID,
			&record.FromRoomID,
			&record.ToRoomID,
			&date,
			&record.Notes,
			&record.Reason,
			&record.Overridden,
			&createdAt,
		); err != nil {
			return nil, err
		}
		if record.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		if record.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return records, nil
}

const reservationColumns = `
	SELECT id, guest_name, room_type, room_id, check_in, check_out,
	       adults, children, vip_tier, total, special_requests,
	       checked_in, cancelled, created_at, updated_at
	FROM reservations`

func scanReservation(scanner rowScanner) (persistence.Reservation, error) {
	var reservation persistence.Reservation
	var checkIn, checkOut, createdAt, updatedAt string
	var specialRequests sql.NullString

	err := scanner.Scan(
		&reservation.ID,
		&reservation.GuestName,
		&reservation.RoomType,
		&reservation.RoomID,
		&checkIn,
		&checkOut,
		&reservation.Adults,
		&reservation.Children,
		&reservation.VIPTier,
		&reservation.Total,
		&specialRequests,
		&reservation.CheckedIn,
		&reservation.Cancelled,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Reservation{}, persistence.ErrNotFound
		}
		return persistence.Reservation{}, err
	}

	if specialRequests.Valid {
		value := specialRequests.String
		reservation.SpecialRequests = &value
	}
	if reservation.CheckIn, err = parseDate(checkIn); err != nil {
		return persistence.Reservation{}, err
	}
	if reservation.CheckOut, err = parseDate(checkOut); err != nil {
		return persistence.Reservation{}, err
	}
	if reservation.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Reservation{}, err
	}
	if reservation.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Reservation{}, err
	}
	return reservation, nil
}
