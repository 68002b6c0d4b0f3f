package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/frontdesk-console/internal/persistence"
)

// StaffRepository implements persistence.StaffRepository using SQLite.
type StaffRepository struct {
	store *Store
	now   func() time.Time
}

// NewStaffRepository creates a new SQLite staff repository.
func NewStaffRepository(store *Store, now func() time.Time) *StaffRepository {
	if now == nil {
		now = time.Now
	}
	return &StaffRepository{store: store, now: now}
}

// CreateStaff inserts a new staff account. Emails are stored lowercased.
func (r *StaffRepository) CreateStaff(ctx context.Context, staff persistence.StaffUser) error {
	if staff.ID == "" || staff.Email == "" || staff.PasswordHash == "" {
		return fmt.Errorf("sqlite: staff id, email and password hash are required")
	}

	now := r.now().UTC()
	staff.CreatedAt = now
	staff.UpdatedAt = now

	query := `
		INSERT INTO staff (id, email, display_name, password_hash, disabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.store.db.ExecContext(ctx, query,
		staff.ID,
		strings.ToLower(staff.Email),
		staff.DisplayName,
		staff.PasswordHash,
		staff.Disabled,
		formatTime(staff.CreatedAt),
		formatTime(staff.UpdatedAt),
	)
	return mapError(err)
}

// GetStaffByEmail retrieves a staff account by email, case-insensitively.
func (r *StaffRepository) GetStaffByEmail(ctx context.Context, email string) (persistence.StaffUser, error) {
	query := staffColumns + ` WHERE email = ?`
	staff, err := scanStaff(r.store.db.QueryRowContext(ctx, query, strings.ToLower(email)))
	if err != nil {
		return persistence.StaffUser{}, mapError(err)
	}
	return staff, nil
}

// GetStaff retrieves a staff account by ID.
func (r *StaffRepository) GetStaff(ctx context.Context, id string) (persistence.StaffUser, error) {
	if id == "" {
		return persistence.StaffUser{}, persistence.ErrNotFound
	}
	query := staffColumns + ` WHERE id = ?`
	staff, err := scanStaff(r.store.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return persistence.StaffUser{}, mapError(err)
	}
	return staff, nil
}

const staffColumns = `
	SELECT id, email, display_name, password_hash, disabled, created_at, updated_at
	FROM staff`

func scanStaff(scanner rowScanner) (persistence.StaffUser, error) {
	var staff persistence.StaffUser
	var createdAt, updatedAt string

	err := scanner.Scan(
		&staff.ID,
		&staff.Email,
		&staff.DisplayName,
		&staff.PasswordHash,
		&staff.Disabled,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.StaffUser{}, persistence.ErrNotFound
		}
		return persistence.StaffUser{}, err
	}

	if staff.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.StaffUser{}, err
	}
	if staff.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.StaffUser{}, err
	}
	return staff, nil
}
