package application

import (
	"context"
	"time"

	"github.com/example/frontdesk-console/internal/tapechart"
)

// Principal represents the authenticated staff member invoking a service.
type Principal struct {
	StaffID     string
	DisplayName string
}

// OperationKind distinguishes single moves from multi-reservation batches.
type OperationKind string

const (
	OperationAssign      OperationKind = "assign"
	OperationBatchAssign OperationKind = "batch_assign"
)

// OperationState tracks one gesture through its lifecycle. The manager is
// idle whenever no operation is in a non-terminal state.
type OperationState string

const (
	StateDragging   OperationState = "dragging"
	StateDropping   OperationState = "dropping"
	StateCommitting OperationState = "committing"
	StateCommitted  OperationState = "committed"
	StateAborted    OperationState = "aborted"
)

// Terminal reports whether the state ends the gesture.
func (s OperationState) Terminal() bool {
	return s == StateCommitted || s == StateAborted
}

// Operation is the transient aggregate for one assignment gesture.
type Operation struct {
	ID             string
	Kind           OperationKind
	ReservationIDs []string
	State          OperationState
	StartedAt      time.Time
}

// MemberTarget addresses the drop target for one reservation of an operation.
type MemberTarget struct {
	ReservationID string
	RoomID        string
	Date          time.Time
}

// CommitOptions carries caller intent for a drop.
type CommitOptions struct {
	// Override proceeds past evaluator conflicts. It is an explicit, logged
	// decision and never bypasses the occupancy invariant.
	Override bool
	Notes    string
	Reason   string
	Notify   bool
	LockRoom bool
}

// CommittedMember records one successful member assignment.
type CommittedMember struct {
	ReservationID string
	FromRoomID    string
	ToRoomID      string
	Date          time.Time
}

// FailedMember records one member the backend rejected.
type FailedMember struct {
	ReservationID string
	Reason        string
}

// CommitResult reports the per-member outcome of a commit. Partial success is
// representable: a single member's failure does not block the others.
type CommitResult struct {
	OperationID string
	Succeeded   []CommittedMember
	Failed      []FailedMember
}

// PriorAssignment captures what an undo must restore for one reservation.
type PriorAssignment struct {
	ReservationID string
	PriorRoomID   string
	RoomID        string
	Date          time.Time
}

// UndoEntry snapshots one committed operation sufficiently to reverse it.
// Only succeeded members are recorded; failed ones have nothing to undo.
type UndoEntry struct {
	OperationID string
	CommittedAt time.Time
	Members     []PriorAssignment
}

// Snapshot is the backend's view of rooms and bookings for a date range.
type Snapshot struct {
	Rooms        []tapechart.Room
	Reservations []tapechart.Reservation
}

// SnapshotSource fetches calendar snapshots from the backing store.
type SnapshotSource interface {
	FetchCalendarSnapshot(ctx context.Context, viewID string, from, to time.Time) (Snapshot, error)
}

// AssignmentOptions accompany a single backend room assignment.
type AssignmentOptions struct {
	Notes      string
	Reason     string
	Notify     bool
	LockRoom   bool
	Overridden bool
}

// AssignmentBackend executes validated room assignments.
type AssignmentBackend interface {
	AssignReservation(ctx context.Context, reservationID, roomID string, date time.Time, opts AssignmentOptions) error
}

// RoomStatusBackend mutates room lifecycle status for housekeeping actions.
type RoomStatusBackend interface {
	SetRoomStatus(ctx context.Context, roomID, status, reason string) error
}
