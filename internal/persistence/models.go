package persistence

import "time"

// Room represents a hotel room record.
type Room struct {
	ID        string
	Number    string
	Type      string
	Floor     string
	Building  string
	Rate      float64
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Reservation represents a stored booking with its current room assignment.
type Reservation struct {
	ID              string
	GuestName       string
	RoomType        string
	RoomID          string
	CheckIn         time.Time
	CheckOut        time.Time
	Adults          int
	Children        int
	VIPTier         int
	Total           float64
	SpecialRequests *string
	CheckedIn       bool
	Cancelled       bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AssignmentRecord is the audit trail entry written for every room move.
type AssignmentRecord struct {
	ID            string
	ReservationID string
	FromRoomID    string
	ToRoomID      string
	Date          time.Time
	Notes         string
	Reason        string
	Overridden    bool
	CreatedAt     time.Time
}

// StaffUser represents a front-desk staff account.
type StaffUser struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session represents an authenticated staff session.
type Session struct {
	ID        string
	StaffID   string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}
