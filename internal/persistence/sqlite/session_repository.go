package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/frontdesk-console/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository using SQLite.
type SessionRepository struct {
	store *Store
}

// NewSessionRepository creates a new SQLite session repository.
func NewSessionRepository(store *Store) *SessionRepository {
	return &SessionRepository{store: store}
}

// CreateSession stores an issued session.
func (r *SessionRepository) CreateSession(ctx context.Context, session persistence.Session) error {
	if session.ID == "" || session.Token == "" || session.StaffID == "" {
		return fmt.Errorf("sqlite: session id, token and staff id are required")
	}

	query := `
		INSERT INTO sessions (id, staff_id, token, expires_at, created_at, revoked_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	var revokedAt any
	if session.RevokedAt != nil {
		revokedAt = formatTime(*session.RevokedAt)
	}
	_, err := r.store.db.ExecContext(ctx, query,
		session.ID,
		session.StaffID,
		session.Token,
		formatTime(session.ExpiresAt),
		formatTime(session.CreatedAt),
		revokedAt,
	)
	return mapError(err)
}

// GetSession retrieves a session by token.
func (r *SessionRepository) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	if token == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, staff_id, token, expires_at, created_at, revoked_at
		FROM sessions
		WHERE token = ?
	`
	var session persistence.Session
	var expiresAt, createdAt string
	var revokedAt sql.NullString

	err := r.store.db.QueryRowContext(ctx, query, token).Scan(
		&session.ID,
		&session.StaffID,
		&session.Token,
		&expiresAt,
		&createdAt,
		&revokedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Session{}, persistence.ErrNotFound
		}
		return persistence.Session{}, mapError(err)
	}

	if session.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return persistence.Session{}, err
	}
	if session.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Session{}, err
	}
	if revokedAt.Valid {
		parsed, err := parseTime(revokedAt.String)
		if err != nil {
			return persistence.Session{}, err
		}
		session.RevokedAt = &parsed
	}
	return session, nil
}

// RevokeSession marks a session as revoked.
func (r *SessionRepository) RevokeSession(ctx context.Context, token string, revokedAt time.Time) error {
	result, err := r.store.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = ? WHERE token = ? AND revoked_at IS NULL`,
		formatTime(revokedAt), token,
	)
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

// DeleteExpiredSessions removes sessions whose expiry passed the reference.
func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	_, err := r.store.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= ?`,
		formatTime(reference),
	)
	return mapError(err)
}
