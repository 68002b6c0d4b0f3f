package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/frontdesk-console/internal/persistence"
	_ "modernc.org/sqlite"
)

// Store owns the SQLite connection shared by every repository.
type Store struct {
	db *sql.DB
}

// Open establishes the SQLite connection for the given DSN.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite supports a single writer; a larger pool only produces
	// "database is locked" errors under load.
	db.SetMaxOpenConns(1)

	return &Store{db: db}, nil
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close releases the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping tests the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate creates the schema when it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS rooms (
			id TEXT PRIMARY KEY,
			number TEXT NOT NULL UNIQUE,
			type TEXT NOT NULL,
			floor TEXT NOT NULL DEFAULT '',
			building TEXT NOT NULL DEFAULT '',
			rate REAL NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'available',
			status_reason TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS reservations (
			id TEXT PRIMARY KEY,
			guest_name TEXT NOT NULL,
			room_type TEXT NOT NULL,
			room_id TEXT NOT NULL REFERENCES rooms(id),
			check_in TEXT NOT NULL,
			check_out TEXT NOT NULL,
			adults INTEGER NOT NULL DEFAULT 1,
			children INTEGER NOT NULL DEFAULT 0,
			vip_tier INTEGER NOT NULL DEFAULT 0,
			total REAL NOT NULL DEFAULT 0,
			special_requests TEXT,
			checked_in INTEGER NOT NULL DEFAULT 0,
			cancelled INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			CHECK (check_in < check_out)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_room_dates
			ON reservations(room_id, check_in, check_out)`,
		`CREATE TABLE IF NOT EXISTS assignments (
			id TEXT PRIMARY KEY,
			reservation_id TEXT NOT NULL REFERENCES reservations(id),
			from_room_id TEXT NOT NULL,
			to_room_id TEXT NOT NULL,
			date TEXT NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			reason TEXT NOT NULL DEFAULT '',
			overridden INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS staff (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			disabled INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			staff_id TEXT NOT NULL REFERENCES staff(id),
			token TEXT NOT NULL UNIQUE,
			expires_at TEXT NOT NULL,
			created_at TEXT NOT NULL,
			revoked_at TEXT
		)`,
	}

	for _, statement := range schema {
		if _, err := s.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// TransactionFunc represents a function that executes within a transaction.
type TransactionFunc func(tx *sql.Tx) error

// WithTransaction executes fn within a transaction, rolling back on error.
func (s *Store) WithTransaction(ctx context.Context, fn TransactionFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// mapError translates SQLite driver errors into persistence sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if err == sql.ErrNoRows {
		return persistence.ErrNotFound
	}
	message := err.Error()
	if strings.Contains(message, "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", persistence.ErrDuplicate, err)
	}
	return err
}

// Dates are stored as YYYY-MM-DD so lexicographic SQL comparisons match
// chronological order; timestamps keep full RFC 3339 precision.
const dateFormat = "2006-01-02"

func formatDate(value time.Time) string {
	return value.UTC().Format(dateFormat)
}

func parseDate(value string) (time.Time, error) {
	parsed, err := time.Parse(dateFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return parsed, nil
}

func formatTime(value time.Time) string {
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return parsed, nil
}
