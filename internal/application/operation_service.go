package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/example/frontdesk-console/internal/tapechart"
)

// allowedTransitions is the single source of truth for the operation state
// machine: idle -> dragging -> (hover)* -> dropping -> committing ->
// committed | aborted.
var allowedTransitions = map[OperationState][]OperationState{
	StateDragging:   {StateDropping, StateAborted},
	StateDropping:   {StateCommitting, StateDragging, StateAborted},
	StateCommitting: {StateCommitted, StateAborted},
}

// transition is the single state change path for an operation; every other
// method goes through it.
func (op *Operation) transition(to OperationState) error {
	for _, allowed := range allowedTransitions[op.State] {
		if allowed == to {
			op.State = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidOperationState, op.State, to)
}

// OperationService is the operation manager: it owns the lifecycle of every
// drag/slide gesture, enforces the single-writer rule, delegates validated
// drops to the assignment backend and keeps the bounded undo history. It is
// the only component permitted to trigger backend commits.
type OperationService struct {
	mu            sync.Mutex
	chart         *ChartService
	backend       AssignmentBackend
	emitter       Emitter
	idGenerator   func() string
	now           func() time.Time
	commitTimeout time.Duration
	undo          *undoStack
	active        *Operation
	logger        *slog.Logger
}

// NewOperationService wires dependencies for gesture handling.
func NewOperationService(chart *ChartService, backend AssignmentBackend, emitter Emitter, idGenerator func() string, now func() time.Time, undoDepth int, commitTimeout time.Duration) *OperationService {
	return NewOperationServiceWithLogger(chart, backend, emitter, idGenerator, now, undoDepth, commitTimeout, nil)
}

// NewOperationServiceWithLogger constructs an OperationService with a
// specified logger.
func NewOperationServiceWithLogger(chart *ChartService, backend AssignmentBackend, emitter Emitter, idGenerator func() string, now func() time.Time, undoDepth int, commitTimeout time.Duration, logger *slog.Logger) *OperationService {
	if emitter == nil {
		emitter = nopEmitter{}
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if commitTimeout <= 0 {
		commitTimeout = 10 * time.Second
	}
	return &OperationService{
		chart:         chart,
		backend:       backend,
		emitter:       emitter,
		idGenerator:   idGenerator,
		now:           now,
		commitTimeout: commitTimeout,
		undo:          newUndoStack(undoDepth),
		logger:        defaultLogger(logger),
	}
}

func (s *OperationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "OperationService", operation, attrs...)
}

// Start begins a gesture for one or more reservations. It fails fast with
// ErrOperationActive while another gesture is dragging or committing, so two
// gestures can never race to assign the same cell.
func (s *OperationService) Start(ctx context.Context, reservationIDs []string, kind OperationKind) (Operation, error) {
	if s == nil {
		return Operation{}, fmt.Errorf("OperationService is nil")
	}
	if len(reservationIDs) == 0 {
		vErr := &ValidationError{}
		vErr.add("reservations", "at least one reservation is required")
		return Operation{}, vErr
	}
	if kind == "" {
		kind = OperationAssign
		if len(reservationIDs) > 1 {
			kind = OperationBatchAssign
		}
	}
	if kind == OperationAssign && len(reservationIDs) > 1 {
		vErr := &ValidationError{}
		vErr.add("kind", "assign operations move exactly one reservation")
		return Operation{}, vErr
	}

	calendar := s.chart.Calendar()
	for _, id := range reservationIDs {
		if _, ok := calendar.Reservation(id); !ok {
			return Operation{}, fmt.Errorf("%w: reservation %s", ErrNotFound, id)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil && !s.active.State.Terminal() {
		return Operation{}, ErrOperationActive
	}

	operation := Operation{
		ID:             s.idGenerator(),
		Kind:           kind,
		ReservationIDs: append([]string(nil), reservationIDs...),
		State:          StateDragging,
		StartedAt:      s.now(),
	}
	s.active = &operation

	s.loggerWith(ctx, "Start", "operation_id", operation.ID, "kind", kind).
		InfoContext(ctx, "operation started", "members", len(reservationIDs))
	return operation, nil
}

// Hover validates the current pointer targets for every member reservation.
// It is pure with respect to engine state: calling it twice with no
// intervening load or patch returns identical results, and it never mutates
// anything.
func (s *OperationService) Hover(ctx context.Context, operationID string, targets []MemberTarget) ([]tapechart.BatchResult, error) {
	if s == nil {
		return nil, fmt.Errorf("OperationService is nil")
	}

	s.mu.Lock()
	if err := s.requireActiveLocked(operationID, StateDragging); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	members, err := s.resolveMembers(targets)
	if err != nil {
		return nil, err
	}

	results := tapechart.EvaluateBatch(s.chart.Calendar(), members)
	if !tapechart.BatchValid(results) {
		s.emitter.Emit(Event{
			Type:        EventConflictDetected,
			OperationID: operationID,
			Conflicts:   results,
			At:          s.now(),
		})
	}
	return results, nil
}

// Drop re-validates the targets (never trusting stale hover results) and, if
// valid or explicitly overridden, commits through the assignment backend
// under a bounded timeout. A rejected drop leaves the gesture in dragging so
// the caller can retry; a backend failure aborts it with a retryable error.
func (s *OperationService) Drop(ctx context.Context, operationID string, targets []MemberTarget, opts CommitOptions) (CommitResult, error) {
	if s == nil {
		return CommitResult{}, fmt.Errorf("OperationService is nil")
	}

	logger := s.loggerWith(ctx, "Drop", "operation_id", operationID)

	s.mu.Lock()
	if err := s.requireActiveLocked(operationID, StateDragging); err != nil {
		s.mu.Unlock()
		return CommitResult{}, err
	}
	if err := s.active.transition(StateDropping); err != nil {
		s.mu.Unlock()
		return CommitResult{}, err
	}
	s.mu.Unlock()

	members, err := s.resolveMembers(targets)
	if err != nil {
		s.revertToDragging()
		return CommitResult{}, err
	}

	calendar := s.chart.Calendar()
	results := tapechart.EvaluateBatch(calendar, members)
	if !tapechart.BatchValid(results) {
		s.emitter.Emit(Event{
			Type:        EventConflictDetected,
			OperationID: operationID,
			Conflicts:   results,
			At:          s.now(),
		})
		if !opts.Override {
			s.revertToDragging()
			return CommitResult{}, &ConflictError{Results: results}
		}
		logger.WarnContext(ctx, "conflicts overridden by caller",
			"conflicts", len((&ConflictError{Results: results}).Conflicts()))
	}

	// The occupancy invariant holds across the whole stay, not just the
	// targeted cell, and an override never bypasses it.
	if stayResults := checkStayOccupancy(calendar, members); !tapechart.BatchValid(stayResults) {
		s.emitter.Emit(Event{
			Type:        EventConflictDetected,
			OperationID: operationID,
			Conflicts:   stayResults,
			At:          s.now(),
		})
		s.revertToDragging()
		return CommitResult{}, &ConflictError{Results: stayResults}
	}

	// The validation above ran unlocked; an abort may have landed in the
	// meantime and ended the gesture. Re-establish ownership before the
	// committing transition instead of trusting the earlier check.
	s.mu.Lock()
	if err := s.requireActiveLocked(operationID, StateDropping); err != nil {
		s.mu.Unlock()
		return CommitResult{}, err
	}
	if err := s.active.transition(StateCommitting); err != nil {
		s.mu.Unlock()
		return CommitResult{}, err
	}
	s.mu.Unlock()

	result, commitErr := s.commit(ctx, operationID, members, targets, opts)

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(result.Succeeded) == 0 {
		if s.active != nil && s.active.ID == operationID {
			_ = s.active.transition(StateAborted)
			s.active = nil
		}
		s.chart.InvalidateSuggestions()
		s.emitter.Emit(Event{
			Type:        EventOperationAborted,
			OperationID: operationID,
			At:          s.now(),
		})
		logger.ErrorContext(ctx, "commit failed for every member", "error", commitErr)
		return result, &CommitError{Result: result, Retryable: true, Err: commitErr}
	}

	s.undo.Push(UndoEntry{
		OperationID: operationID,
		CommittedAt: s.now(),
		Members:     priorAssignments(result.Succeeded),
	})
	s.applyToCalendar(result.Succeeded)
	s.chart.InvalidateSuggestions()
	if s.active != nil && s.active.ID == operationID {
		_ = s.active.transition(StateCommitted)
		s.active = nil
	}

	s.emitter.Emit(Event{
		Type:        EventOperationCommitted,
		OperationID: operationID,
		Result:      &result,
		At:          s.now(),
	})
	s.emitter.Emit(Event{
		Type:        EventUndoAvailable,
		OperationID: operationID,
		UndoDepth:   s.undo.Len(),
		At:          s.now(),
	})

	if len(result.Failed) > 0 {
		logger.WarnContext(ctx, "commit partially failed",
			"succeeded", len(result.Succeeded), "failed", len(result.Failed))
		return result, &CommitError{Result: result, Retryable: true, Partial: true, Err: commitErr}
	}

	logger.InfoContext(ctx, "operation committed", "members", len(result.Succeeded))
	return result, nil
}

// Abort cancels a gesture from dragging or dropping without contacting the
// backend and deterministically returns the engine to idle: conflict state
// and suggestion caches are cleared so no stale indicator survives.
func (s *OperationService) Abort(ctx context.Context, operationID string) error {
	if s == nil {
		return fmt.Errorf("OperationService is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil || s.active.ID != operationID {
		return fmt.Errorf("%w: operation %s", ErrNotFound, operationID)
	}
	// A commit in flight must resolve through the backend, not a cancel.
	if s.active.State == StateCommitting {
		return fmt.Errorf("%w: cannot abort while committing", ErrInvalidOperationState)
	}
	if err := s.active.transition(StateAborted); err != nil {
		return err
	}
	s.active = nil
	s.chart.InvalidateSuggestions()
	s.emitter.Emit(Event{
		Type:        EventOperationAborted,
		OperationID: operationID,
		At:          s.now(),
	})

	s.loggerWith(ctx, "Abort", "operation_id", operationID).InfoContext(ctx, "operation aborted")
	return nil
}

// UndoLast pops the most recent undo entry and issues compensating
// assignments restoring every member to its prior room. Entries are strictly
// LIFO; there is no way to undo an older entry first.
func (s *OperationService) UndoLast(ctx context.Context) (CommitResult, error) {
	if s == nil {
		return CommitResult{}, fmt.Errorf("OperationService is nil")
	}

	s.mu.Lock()
	if s.active != nil && !s.active.State.Terminal() {
		s.mu.Unlock()
		return CommitResult{}, ErrOperationActive
	}
	entry, ok := s.undo.Pop()
	if !ok {
		s.mu.Unlock()
		return CommitResult{}, ErrNothingToUndo
	}
	s.mu.Unlock()

	logger := s.loggerWith(ctx, "UndoLast", "operation_id", entry.OperationID)

	commitCtx, cancel := context.WithTimeout(ctx, s.commitTimeout)
	defer cancel()

	result := CommitResult{OperationID: entry.OperationID}
	for _, member := range entry.Members {
		err := s.backend.AssignReservation(commitCtx, member.ReservationID, member.PriorRoomID, member.Date, AssignmentOptions{
			Reason: "undo of operation " + entry.OperationID,
		})
		if err != nil {
			result.Failed = append(result.Failed, FailedMember{
				ReservationID: member.ReservationID,
				Reason:        err.Error(),
			})
			continue
		}
		result.Succeeded = append(result.Succeeded, CommittedMember{
			ReservationID: member.ReservationID,
			FromRoomID:    member.RoomID,
			ToRoomID:      member.PriorRoomID,
			Date:          member.Date,
		})
	}

	s.mu.Lock()
	s.applyToCalendar(result.Succeeded)
	s.chart.InvalidateSuggestions()
	depth := s.undo.Len()
	s.mu.Unlock()

	s.emitter.Emit(Event{
		Type:        EventOperationCommitted,
		OperationID: entry.OperationID,
		Result:      &result,
		At:          s.now(),
	})
	s.emitter.Emit(Event{
		Type:        EventUndoAvailable,
		OperationID: entry.OperationID,
		UndoDepth:   depth,
		At:          s.now(),
	})

	if len(result.Failed) > 0 {
		logger.ErrorContext(ctx, "undo partially failed",
			"succeeded", len(result.Succeeded), "failed", len(result.Failed))
		return result, &CommitError{Result: result, Retryable: true, Partial: len(result.Succeeded) > 0}
	}

	logger.InfoContext(ctx, "operation undone", "members", len(result.Succeeded))
	return result, nil
}

// CanUndo reports whether the history holds at least one entry.
func (s *OperationService) CanUndo() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.undo.Len() > 0
}

// Active returns the in-flight operation, if any.
func (s *OperationService) Active() (Operation, bool) {
	if s == nil {
		return Operation{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return Operation{}, false
	}
	return *s.active, true
}

func (s *OperationService) requireActiveLocked(operationID string, want OperationState) error {
	if s.active == nil || s.active.ID != operationID {
		return fmt.Errorf("%w: operation %s", ErrNotFound, operationID)
	}
	if s.active.State != want {
		return fmt.Errorf("%w: operation is %s", ErrInvalidOperationState, s.active.State)
	}
	return nil
}

func (s *OperationService) revertToDragging() {
	s.mu.Lock()
	if s.active != nil && s.active.State == StateDropping {
		_ = s.active.transition(StateDragging)
	}
	s.mu.Unlock()
}

func (s *OperationService) resolveMembers(targets []MemberTarget) ([]tapechart.BatchMember, error) {
	calendar := s.chart.Calendar()
	members := make([]tapechart.BatchMember, 0, len(targets))
	for _, target := range targets {
		res, ok := calendar.Reservation(target.ReservationID)
		if !ok {
			return nil, fmt.Errorf("%w: reservation %s", ErrNotFound, target.ReservationID)
		}
		members = append(members, tapechart.BatchMember{
			Reservation: res,
			Target:      tapechart.CellRef{RoomID: target.RoomID, Date: target.Date},
		})
	}
	if len(members) == 0 {
		vErr := &ValidationError{}
		vErr.add("targets", "at least one target is required")
		return nil, vErr
	}
	return members, nil
}

func (s *OperationService) commit(ctx context.Context, operationID string, members []tapechart.BatchMember, targets []MemberTarget, opts CommitOptions) (CommitResult, error) {
	commitCtx, cancel := context.WithTimeout(ctx, s.commitTimeout)
	defer cancel()

	result := CommitResult{OperationID: operationID}
	var firstErr error
	for i, member := range members {
		res := member.Reservation
		err := s.backend.AssignReservation(commitCtx, res.ID, member.Target.RoomID, member.Target.Date, AssignmentOptions{
			Notes:      opts.Notes,
			Reason:     opts.Reason,
			Notify:     opts.Notify,
			LockRoom:   opts.LockRoom,
			Overridden: opts.Override,
		})
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			result.Failed = append(result.Failed, FailedMember{
				ReservationID: res.ID,
				Reason:        err.Error(),
			})
			// A dead backend fails everything left; stop issuing calls.
			if errors.Is(err, context.DeadlineExceeded) || commitCtx.Err() != nil {
				for _, remaining := range members[i+1:] {
					result.Failed = append(result.Failed, FailedMember{
						ReservationID: remaining.Reservation.ID,
						Reason:        context.DeadlineExceeded.Error(),
					})
				}
				break
			}
			continue
		}
		result.Succeeded = append(result.Succeeded, CommittedMember{
			ReservationID: res.ID,
			FromRoomID:    res.RoomID,
			ToRoomID:      targets[i].RoomID,
			Date:          targets[i].Date,
		})
	}
	return result, firstErr
}

func (s *OperationService) applyToCalendar(members []CommittedMember) {
	calendar := s.chart.Calendar()
	for _, member := range members {
		res, ok := calendar.Reservation(member.ReservationID)
		if !ok {
			continue
		}
		if err := calendar.Assign(res, member.FromRoomID, member.ToRoomID); err != nil {
			// The optimistic patch is best effort; the next reload converges.
			s.logger.Warn("calendar patch failed", "reservation_id", member.ReservationID, "error", err)
		}
	}
}

func priorAssignments(members []CommittedMember) []PriorAssignment {
	prior := make([]PriorAssignment, 0, len(members))
	for _, member := range members {
		prior = append(prior, PriorAssignment{
			ReservationID: member.ReservationID,
			PriorRoomID:   member.FromRoomID,
			RoomID:        member.ToRoomID,
			Date:          member.Date,
		})
	}
	return prior
}

// checkStayOccupancy verifies every night of each member's stay is free in
// its target room, using occupied conflicts for the nights that are not.
func checkStayOccupancy(calendar *tapechart.Calendar, members []tapechart.BatchMember) []tapechart.BatchResult {
	results := make([]tapechart.BatchResult, 0, len(members))
	for _, member := range members {
		res := member.Reservation
		result := tapechart.BatchResult{ReservationID: res.ID, Target: member.Target}
		free, total := calendar.FreeNights(member.Target.RoomID, res)
		if free < total {
			result.Conflict = &tapechart.Conflict{
				Kind: tapechart.ConflictOccupied,
				Message: fmt.Sprintf("room is occupied for %d of %d nights of the stay",
					total-free, total),
				Suggestions: []string{"choose a room free for the whole stay"},
			}
		}
		results = append(results, result)
	}
	return results
}
