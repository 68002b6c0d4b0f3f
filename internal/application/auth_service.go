package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// StaffUser represents a front-desk staff account exposed by the services.
type StaffUser struct {
	ID          string
	Email       string
	DisplayName string
	Disabled    bool
}

// StaffCredentials models the authentication attributes stored for staff.
type StaffCredentials struct {
	User         StaffUser
	PasswordHash string
}

// Session represents an authenticated console session.
type Session struct {
	ID        string
	StaffID   string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// CredentialStore exposes staff credential lookups.
type CredentialStore interface {
	GetStaffCredentialsByEmail(ctx context.Context, email string) (StaffCredentials, error)
	GetStaff(ctx context.Context, id string) (StaffUser, error)
}

// SessionStore captures the persistence interactions for issued sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) error
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// PasswordVerifier compares a stored hash with a candidate password.
type PasswordVerifier func(hashedPassword, password string) error

// AuthService coordinates staff login and session validation.
type AuthService struct {
	credentials    CredentialStore
	sessions       SessionStore
	verifyPassword PasswordVerifier
	tokenGenerator func() string
	now            func() time.Time
	sessionTTL     time.Duration
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(credentials CredentialStore, sessions SessionStore, verify PasswordVerifier, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration) *AuthService {
	return NewAuthServiceWithLogger(credentials, sessions, verify, tokenGenerator, now, sessionTTL, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(credentials CredentialStore, sessions SessionStore, verify PasswordVerifier, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if verify == nil {
		verify = VerifyPassword
	}
	if tokenGenerator == nil {
		tokenGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 12 * time.Hour
	}
	return &AuthService{
		credentials:    credentials,
		sessions:       sessions,
		verifyPassword: verify,
		tokenGenerator: tokenGenerator,
		now:            now,
		sessionTTL:     sessionTTL,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// AuthenticateResult captures the outcome of a successful login.
type AuthenticateResult struct {
	User    StaffUser
	Session Session
}

// Authenticate validates credentials and issues a new session token.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (result AuthenticateResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.credentials == nil {
		err = fmt.Errorf("credential store not configured")
		return
	}

	email = strings.TrimSpace(strings.ToLower(email))

	logger := s.loggerWith(ctx, "Authenticate", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "authentication failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("staff_id", result.User.ID, "session_id", result.Session.ID).
			InfoContext(ctx, "authentication succeeded")
	}()

	if email == "" || password == "" {
		err = ErrInvalidCredentials
		return
	}

	creds, lookupErr := s.credentials.GetStaffCredentialsByEmail(ctx, email)
	if lookupErr != nil {
		if errors.Is(lookupErr, ErrNotFound) {
			err = ErrInvalidCredentials
			return
		}
		err = lookupErr
		return
	}

	if creds.User.Disabled {
		err = ErrAccountDisabled
		return
	}

	if verifyErr := s.verifyPassword(creds.PasswordHash, password); verifyErr != nil {
		err = ErrInvalidCredentials
		return
	}

	now := s.now()
	session := Session{
		ID:        s.tokenGenerator(),
		StaffID:   creds.User.ID,
		Token:     s.tokenGenerator(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if session.Token == "" {
		session.Token = session.ID
	}

	if s.sessions != nil {
		if err = s.sessions.DeleteExpiredSessions(ctx, now); err != nil {
			return
		}
		var persisted Session
		persisted, err = s.sessions.CreateSession(ctx, session)
		if err != nil {
			return
		}
		session = persisted
	}

	result = AuthenticateResult{User: creds.User, Session: session}
	return
}

// ValidateSession resolves a session token to its staff principal.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (Principal, error) {
	if s == nil || s.sessions == nil {
		return Principal{}, fmt.Errorf("session store not configured")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return Principal{}, ErrInvalidCredentials
	}

	session, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Principal{}, ErrInvalidCredentials
		}
		return Principal{}, err
	}

	if session.RevokedAt != nil {
		return Principal{}, ErrSessionRevoked
	}
	if !s.now().Before(session.ExpiresAt) {
		return Principal{}, ErrSessionExpired
	}

	staff, err := s.credentials.GetStaff(ctx, session.StaffID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Principal{}, ErrInvalidCredentials
		}
		return Principal{}, err
	}
	if staff.Disabled {
		return Principal{}, ErrAccountDisabled
	}

	return Principal{StaffID: staff.ID, DisplayName: staff.DisplayName}, nil
}

// RevokeSession invalidates the presented token.
func (s *AuthService) RevokeSession(ctx context.Context, token string) error {
	if s == nil || s.sessions == nil {
		return fmt.Errorf("session store not configured")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidCredentials
	}

	if err := s.sessions.RevokeSession(ctx, token, s.now()); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}

	s.loggerWith(ctx, "RevokeSession").InfoContext(ctx, "session revoked")
	return nil
}

// PruneSessions removes expired sessions; invoked periodically by the host.
func (s *AuthService) PruneSessions(ctx context.Context) error {
	if s == nil || s.sessions == nil {
		return nil
	}
	return s.sessions.DeleteExpiredSessions(ctx, s.now())
}
