package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/frontdesk-console/internal/persistence"
)

// RoomRepository implements persistence.RoomRepository using SQLite.
type RoomRepository struct {
	store *Store
	now   func() time.Time
}

// NewRoomRepository creates a new SQLite room repository.
func NewRoomRepository(store *Store, now func() time.Time) *RoomRepository {
	if now == nil {
		now = time.Now
	}
	return &RoomRepository{store: store, now: now}
}

// CreateRoom inserts a new room into the database.
func (r *RoomRepository) CreateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" || room.Number == "" || room.Type == "" {
		return fmt.Errorf("sqlite: room id, number and type are required")
	}

	now := r.now().UTC()
	room.CreatedAt = now
	room.UpdatedAt = now
	if room.Status == "" {
		room.Status = "available"
	}

	query := `
		INSERT INTO rooms (id, number, type, floor, building, rate, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.store.db.ExecContext(ctx, query,
		room.ID,
		room.Number,
		room.Type,
		room.Floor,
		room.Building,
		room.Rate,
		room.Status,
		formatTime(room.CreatedAt),
		formatTime(room.UpdatedAt),
	)
	return mapError(err)
}

// GetRoom retrieves a room by ID.
func (r *RoomRepository) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	if id == "" {
		return persistence.Room{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, number, type, floor, building, rate, status, created_at, updated_at
		FROM rooms
		WHERE id = ?
	`
	room, err := scanRoom(r.store.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return persistence.Room{}, mapError(err)
	}
	return room, nil
}

// ListRooms returns all rooms ordered by number then ID.
func (r *RoomRepository) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	query := `
		SELECT id, number, type, floor, building, rate, status, created_at, updated_at
		FROM rooms
		ORDER BY number ASC, id ASC
	`
	rows, err := r.store.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var rooms []persistence.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return rooms, nil
}

// UpdateRoomStatus changes the lifecycle status of a room.
func (r *RoomRepository) UpdateRoomStatus(ctx context.Context, id, status, reason string) error {
	query := `
		UPDATE rooms
		SET status = ?, status_reason = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.store.db.ExecContext(ctx, query, status, reason, formatTime(r.now()), id)
	if err != nil {
		return mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(scanner rowScanner) (persistence.Room, error) {
	var room persistence.Room
	var createdAt, updatedAt string

	err := scanner.Scan(
		&room.ID,
		&room.Number,
		&room.Type,
		&room.Floor,
		&room.Building,
		&room.Rate,
		&room.Status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Room{}, persistence.ErrNotFound
		}
		return persistence.Room{}, err
	}

	if room.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Room{}, err
	}
	if room.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Room{}, err
	}
	return room, nil
}
