package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/example/frontdesk-console/internal/tapechart"
)

func date(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(tapechart.DateLayout, value)
	if err != nil {
		t.Fatalf("invalid test date %q: %v", value, err)
	}
	return parsed
}

type snapshotStub struct {
	snapshot Snapshot
	err      error
}

func (s *snapshotStub) FetchCalendarSnapshot(ctx context.Context, viewID string, from, to time.Time) (Snapshot, error) {
	if s.err != nil {
		return Snapshot{}, s.err
	}
	return s.snapshot, nil
}

type assignCall struct {
	ReservationID string
	RoomID        string
	Date          time.Time
	Opts          AssignmentOptions
}

type assignBackendStub struct {
	mu       sync.Mutex
	calls    []assignCall
	failFor  map[string]error
	blocking bool
}

func (b *assignBackendStub) AssignReservation(ctx context.Context, reservationID, roomID string, date time.Time, opts AssignmentOptions) error {
	if b.blocking {
		<-ctx.Done()
		return ctx.Err()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err, ok := b.failFor[reservationID]; ok {
		return err
	}
	b.calls = append(b.calls, assignCall{ReservationID: reservationID, RoomID: roomID, Date: date, Opts: opts})
	return nil
}

func (b *assignBackendStub) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) Emit(event Event) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

func (r *eventRecorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]EventType, 0, len(r.events))
	for _, event := range r.events {
		types = append(types, event.Type)
	}
	return types
}

// abortingEmitter cancels the gesture as soon as a conflict is reported,
// mimicking a console that auto-aborts on the first conflict callback while
// the drop is still in flight.
type abortingEmitter struct {
	eventRecorder
	service *OperationService
}

func (e *abortingEmitter) Emit(event Event) {
	e.eventRecorder.Emit(event)
	if event.Type == EventConflictDetected && e.service != nil {
		_ = e.service.Abort(context.Background(), event.OperationID)
	}
}

func testSnapshot(t *testing.T) Snapshot {
	t.Helper()
	return Snapshot{
		Rooms: []tapechart.Room{
			{ID: "r-101", Number: "101", Type: "Standard", Floor: "1", Rate: 100, Status: tapechart.RoomAvailable},
			{ID: "r-201", Number: "201", Type: "Suite", Floor: "2", Rate: 250, Status: tapechart.RoomAvailable},
			{ID: "r-203", Number: "203", Type: "Suite", Floor: "2", Rate: 240, Status: tapechart.RoomAvailable},
			{ID: "r-204", Number: "204", Type: "Suite", Floor: "2", Rate: 260, Status: tapechart.RoomAvailable},
		},
		Reservations: []tapechart.Reservation{
			{
				ID: "res-1", GuestName: "Aoki", RoomType: "Suite", RoomID: "r-201",
				CheckIn: date(t, "2024-03-10"), CheckOut: date(t, "2024-03-12"), Total: 500,
			},
			{
				ID: "res-2", GuestName: "Tanaka", RoomType: "Suite", RoomID: "r-203",
				CheckIn: date(t, "2024-03-10"), CheckOut: date(t, "2024-03-11"), Total: 240,
			},
			{
				ID: "res-3", GuestName: "Sato", RoomType: "Suite", RoomID: "r-204",
				CheckIn: date(t, "2024-03-10"), CheckOut: date(t, "2024-03-11"), Total: 260,
			},
		},
	}
}

type engineFixture struct {
	chart   *ChartService
	backend *assignBackendStub
	events  *eventRecorder
	service *OperationService
}

func newEngineFixture(t *testing.T, undoDepth int) *engineFixture {
	t.Helper()

	chart := NewChartService(&snapshotStub{snapshot: testSnapshot(t)}, nil)
	if err := chart.LoadChart(context.Background(), "default", date(t, "2024-03-08"), date(t, "2024-03-16")); err != nil {
		t.Fatalf("load chart: %v", err)
	}

	backend := &assignBackendStub{}
	events := &eventRecorder{}
	counter := 0
	idGen := func() string {
		counter++
		return fmt.Sprintf("op-%d", counter)
	}
	service := NewOperationService(chart, backend, events, idGen, nil, undoDepth, time.Second)
	return &engineFixture{chart: chart, backend: backend, events: events, service: service}
}

func TestOperationServiceStart(t *testing.T) {
	t.Run("single writer discipline", func(t *testing.T) {
		fx := newEngineFixture(t, 5)

		first, err := fx.service.Start(context.Background(), []string{"res-1"}, OperationAssign)
		if err != nil {
			t.Fatalf("start: %v", err)
		}

		if _, err := fx.service.Start(context.Background(), []string{"res-2"}, OperationAssign); !errors.Is(err, ErrOperationActive) {
			t.Fatalf("expected ErrOperationActive, got %v", err)
		}

		active, ok := fx.service.Active()
		if !ok || active.ID != first.ID || active.State != StateDragging {
			t.Fatalf("in-flight operation disturbed: %+v", active)
		}
	})

	t.Run("unknown reservation", func(t *testing.T) {
		fx := newEngineFixture(t, 5)

		if _, err := fx.service.Start(context.Background(), []string{"res-404"}, OperationAssign); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("kind defaults by member count", func(t *testing.T) {
		fx := newEngineFixture(t, 5)

		op, err := fx.service.Start(context.Background(), []string{"res-1", "res-2"}, "")
		if err != nil {
			t.Fatalf("start: %v", err)
		}
		if op.Kind != OperationBatchAssign {
			t.Fatalf("expected batch_assign, got %q", op.Kind)
		}
	})

	t.Run("assign kind rejects multiple members", func(t *testing.T) {
		fx := newEngineFixture(t, 5)

		_, err := fx.service.Start(context.Background(), []string{"res-1", "res-2"}, OperationAssign)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}

func TestOperationServiceHover(t *testing.T) {
	t.Run("idempotent without intervening patches", func(t *testing.T) {
		fx := newEngineFixture(t, 5)
		op, err := fx.service.Start(context.Background(), []string{"res-1"}, OperationAssign)
		if err != nil {
			t.Fatalf("start: %v", err)
		}

		targets := []MemberTarget{{ReservationID: "res-1", RoomID: "r-101", Date: date(t, "2024-03-10")}}
		first, err := fx.service.Hover(context.Background(), op.ID, targets)
		if err != nil {
			t.Fatalf("hover: %v", err)
		}
		second, err := fx.service.Hover(context.Background(), op.ID, targets)
		if err != nil {
			t.Fatalf("hover: %v", err)
		}

		if len(first) != 1 || len(second) != 1 {
			t.Fatalf("expected one result per hover, got %d and %d", len(first), len(second))
		}
		if first[0].Conflict == nil || second[0].Conflict == nil {
			t.Fatal("expected a conflict for the type mismatch")
		}
		if first[0].Conflict.Kind != second[0].Conflict.Kind || first[0].Conflict.Message != second[0].Conflict.Message {
			t.Fatalf("hover results differ: %+v vs %+v", first[0].Conflict, second[0].Conflict)
		}
		if fx.backend.callCount() != 0 {
			t.Fatal("hover must never reach the backend")
		}
	})

	t.Run("emits conflict_detected", func(t *testing.T) {
		fx := newEngineFixture(t, 5)
		op, _ := fx.service.Start(context.Background(), []string{"res-1"}, OperationAssign)

		_, err := fx.service.Hover(context.Background(), op.ID, []MemberTarget{
			{ReservationID: "res-1", RoomID: "r-101", Date: date(t, "2024-03-10")},
		})
		if err != nil {
			t.Fatalf("hover: %v", err)
		}

		types := fx.events.types()
		if len(types) != 1 || types[0] != EventConflictDetected {
			t.Fatalf("expected a conflict_detected event, got %v", types)
		}
	})

	t.Run("rejects foreign operation ids", func(t *testing.T) {
		fx := newEngineFixture(t, 5)
		if _, err := fx.service.Start(context.Background(), []string{"res-1"}, OperationAssign); err != nil {
			t.Fatalf("start: %v", err)
		}

		_, err := fx.service.Hover(context.Background(), "op-999", nil)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestOperationServiceDrop(t *testing.T) {
	t.Run("occupancy holds across the whole stay", func(t *testing.T) {
		fx := newEngineFixture(t, 5)
		op, _ := fx.service.Start(context.Background(), []string{"res-1"}, OperationAssign)

		// The targeted night (03-11) is free in r-203, but res-2 holds the
		// room on 03-10, which res-1's stay also covers.
		result, err := fx.service.Drop(context.Background(), op.ID, []MemberTarget{
			{ReservationID: "res-1", RoomID: "r-203", Date: date(t, "2024-03-11")},
		}, CommitOptions{})
		if err == nil {
			t.Fatalf("expected occupancy conflict crossing res-2, got success %+v", result)
		}

		var cErr *ConflictError
		if !errors.As(err, &cErr) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
		if fx.backend.callCount() != 0 {
			t.Fatal("occupied drop must not reach the backend")
		}
	})

	t.Run("valid drop commits and records undo", func(t *testing.T) {
		fx := newEngineFixture(t, 5)
		// Free r-204 for the whole stay by loading without res-3.
		snapshot := testSnapshot(t)
		snapshot.Reservations = snapshot.Reservations[:2]
		fx.chart = NewChartService(&snapshotStub{snapshot: snapshot}, nil)
		if err := fx.chart.LoadChart(context.Background(), "default", date(t, "2024-03-08"), date(t, "2024-03-16")); err != nil {
			t.Fatalf("load chart: %v", err)
		}
		fx.service = NewOperationService(fx.chart, fx.backend, fx.events, func() string { return "op-1" }, nil, 5, time.Second)

		op, err := fx.service.Start(context.Background(), []string{"res-1"}, OperationAssign)
		if err != nil {
			t.Fatalf("start: %v", err)
		}

		result, err := fx.service.Drop(context.Background(), op.ID, []MemberTarget{
			{ReservationID: "res-1", RoomID: "r-204", Date: date(t, "2024-03-11")},
		}, CommitOptions{Notes: "guest prefers higher floor"})
		if err != nil {
			t.Fatalf("drop: %v", err)
		}
		if len(result.Succeeded) != 1 || result.Succeeded[0].FromRoomID != "r-201" || result.Succeeded[0].ToRoomID != "r-204" {
			t.Fatalf("unexpected commit result: %+v", result)
		}

		calendar := fx.chart.Calendar()
		for _, day := range []string{"2024-03-10", "2024-03-11"} {
			vacated, err := calendar.CellAt("r-201", date(t, day))
			if err != nil || vacated.ReservationID != "" {
				t.Fatalf("old room night %s not vacated: %+v %v", day, vacated, err)
			}
			taken, err := calendar.CellAt("r-204", date(t, day))
			if err != nil || taken.ReservationID != "res-1" {
				t.Fatalf("new room night %s not occupied: %+v %v", day, taken, err)
			}
		}

		if !fx.service.CanUndo() {
			t.Fatal("expected an undo entry after commit")
		}
		if _, ok := fx.service.Active(); ok {
			t.Fatal("engine must return to idle after commit")
		}

		types := fx.events.types()
		if len(types) != 2 || types[0] != EventOperationCommitted || types[1] != EventUndoAvailable {
			t.Fatalf("expected committed+undo events, got %v", types)
		}
	})

	t.Run("rejected drop keeps the gesture alive", func(t *testing.T) {
		fx := newEngineFixture(t, 5)
		op, _ := fx.service.Start(context.Background(), []string{"res-1"}, OperationAssign)

		_, err := fx.service.Drop(context.Background(), op.ID, []MemberTarget{
			{ReservationID: "res-1", RoomID: "r-101", Date: date(t, "2024-03-10")},
		}, CommitOptions{})
		var cErr *ConflictError
		if !errors.As(err, &cErr) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
		if fx.backend.callCount() != 0 {
			t.Fatal("rejected drop must not reach the backend")
		}

		active, ok := fx.service.Active()
		if !ok || active.State != StateDragging {
			t.Fatalf("gesture should remain dragging, got %+v ok=%t", active, ok)
		}
		if err := fx.service.Abort(context.Background(), op.ID); err != nil {
			t.Fatalf("abort after rejection: %v", err)
		}
	})

	t.Run("override proceeds past evaluator conflicts", func(t *testing.T) {
		fx := newEngineFixture(t, 5)
		op, _ := fx.service.Start(context.Background(), []string{"res-1"}, OperationAssign)

		// Standard room, wrong type, but free for the whole stay.
		result, err := fx.service.Drop(context.Background(), op.ID, []MemberTarget{
			{ReservationID: "res-1", RoomID: "r-101", Date: date(t, "2024-03-10")},
		}, CommitOptions{Override: true, Reason: "guest request"})
		if err != nil {
			t.Fatalf("override drop: %v", err)
		}
		if len(result.Succeeded) != 1 {
			t.Fatalf("expected success, got %+v", result)
		}
		if !fx.backend.calls[0].Opts.Overridden {
			t.Fatal("backend must see the override flag")
		}
	})

	t.Run("override never bypasses occupancy", func(t *testing.T) {
		fx := newEngineFixture(t, 5)
		op, _ := fx.service.Start(context.Background(), []string{"res-1"}, OperationAssign)

		// res-2 holds r-203 on 2024-03-10.
		_, err := fx.service.Drop(context.Background(), op.ID, []MemberTarget{
			{ReservationID: "res-1", RoomID: "r-203", Date: date(t, "2024-03-10")},
		}, CommitOptions{Override: true})
		var cErr *ConflictError
		if !errors.As(err, &cErr) {
			t.Fatalf("expected ConflictError despite override, got %v", err)
		}
		if fx.backend.callCount() != 0 {
			t.Fatal("occupied drop must not reach the backend")
		}
	})

	t.Run("abort landing mid-drop ends the gesture cleanly", func(t *testing.T) {
		fx := newEngineFixture(t, 5)
		emitter := &abortingEmitter{}
		fx.service = NewOperationService(fx.chart, fx.backend, emitter, func() string { return "op-1" }, nil, 5, time.Second)
		emitter.service = fx.service

		op, err := fx.service.Start(context.Background(), []string{"res-1"}, OperationAssign)
		if err != nil {
			t.Fatalf("start: %v", err)
		}

		// The conflict callback aborts the gesture while the drop is still
		// validating; the override would otherwise carry it to commit.
		_, err = fx.service.Drop(context.Background(), op.ID, []MemberTarget{
			{ReservationID: "res-1", RoomID: "r-101", Date: date(t, "2024-03-10")},
		}, CommitOptions{Override: true})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound for the aborted gesture, got %v", err)
		}
		if fx.backend.callCount() != 0 {
			t.Fatal("aborted drop must not reach the backend")
		}
		if _, ok := fx.service.Active(); ok {
			t.Fatal("engine must be idle after the abort")
		}

		types := emitter.types()
		if len(types) != 2 || types[0] != EventConflictDetected || types[1] != EventOperationAborted {
			t.Fatalf("expected conflict+aborted events, got %v", types)
		}

		// The engine accepts a fresh gesture afterwards.
		if _, err := fx.service.Start(context.Background(), []string{"res-2"}, OperationAssign); err != nil {
			t.Fatalf("start after abort: %v", err)
		}
	})
}

func TestOperationServiceBatch(t *testing.T) {
	t.Run("partial failure reports both subsets", func(t *testing.T) {
		fx := newEngineFixture(t, 5)
		fx.backend.failFor = map[string]error{"res-2": errors.New("backend rejected")}

		op, err := fx.service.Start(context.Background(), []string{"res-1", "res-2", "res-3"}, OperationBatchAssign)
		if err != nil {
			t.Fatalf("start: %v", err)
		}

		// Every other Suite is taken on 03-10, so each member re-targets its
		// own room; a member's own occupancy never conflicts.
		result, err := fx.service.Drop(context.Background(), op.ID, []MemberTarget{
			{ReservationID: "res-1", RoomID: "r-201", Date: date(t, "2024-03-10")},
			{ReservationID: "res-2", RoomID: "r-203", Date: date(t, "2024-03-10")},
			{ReservationID: "res-3", RoomID: "r-204", Date: date(t, "2024-03-10")},
		}, CommitOptions{})

		var commitErr *CommitError
		if !errors.As(err, &commitErr) || !commitErr.Partial {
			t.Fatalf("expected partial CommitError, got %v", err)
		}
		if len(result.Succeeded) != 2 || len(result.Failed) != 1 {
			t.Fatalf("expected 2 succeeded + 1 failed, got %+v", result)
		}
		if result.Failed[0].ReservationID != "res-2" {
			t.Fatalf("expected res-2 to fail, got %+v", result.Failed)
		}

		// The undo entry covers only the succeeded members.
		fx.backend.failFor = nil
		before := fx.backend.callCount()
		undoResult, err := fx.service.UndoLast(context.Background())
		if err != nil {
			t.Fatalf("undo: %v", err)
		}
		if len(undoResult.Succeeded) != 2 {
			t.Fatalf("undo should cover 2 members, got %+v", undoResult)
		}
		if fx.backend.callCount()-before != 2 {
			t.Fatalf("undo should issue 2 compensating calls, got %d", fx.backend.callCount()-before)
		}
	})

	t.Run("invalid member blocks the whole batch", func(t *testing.T) {
		fx := newEngineFixture(t, 5)
		op, _ := fx.service.Start(context.Background(), []string{"res-1", "res-2"}, OperationBatchAssign)

		_, err := fx.service.Drop(context.Background(), op.ID, []MemberTarget{
			{ReservationID: "res-1", RoomID: "r-201", Date: date(t, "2024-03-10")},
			{ReservationID: "res-2", RoomID: "r-101", Date: date(t, "2024-03-10")},
		}, CommitOptions{})
		var cErr *ConflictError
		if !errors.As(err, &cErr) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
		if fx.backend.callCount() != 0 {
			t.Fatal("no member may commit when one is invalid")
		}
	})
}

func TestOperationServiceTimeout(t *testing.T) {
	fx := newEngineFixture(t, 5)
	fx.backend.blocking = true
	fx.service = NewOperationService(fx.chart, fx.backend, fx.events, func() string { return "op-1" }, nil, 5, 20*time.Millisecond)

	op, err := fx.service.Start(context.Background(), []string{"res-1"}, OperationAssign)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	_, err = fx.service.Drop(context.Background(), op.ID, []MemberTarget{
		{ReservationID: "res-1", RoomID: "r-201", Date: date(t, "2024-03-10")},
	}, CommitOptions{})

	var commitErr *CommitError
	if !errors.As(err, &commitErr) || !commitErr.Retryable {
		t.Fatalf("expected retryable CommitError, got %v", err)
	}
	if _, ok := fx.service.Active(); ok {
		t.Fatal("engine must not stay in committing after a timeout")
	}

	// A new gesture can start immediately.
	fx.backend.blocking = false
	if _, err := fx.service.Start(context.Background(), []string{"res-2"}, OperationAssign); err != nil {
		t.Fatalf("start after timeout: %v", err)
	}
}

func TestOperationServiceUndo(t *testing.T) {
	t.Run("empty history", func(t *testing.T) {
		fx := newEngineFixture(t, 5)
		if _, err := fx.service.UndoLast(context.Background()); !errors.Is(err, ErrNothingToUndo) {
			t.Fatalf("expected ErrNothingToUndo, got %v", err)
		}
	})

	t.Run("undo restores the pre-commit cells", func(t *testing.T) {
		fx := newEngineFixture(t, 5)
		snapshot := testSnapshot(t)
		snapshot.Reservations = snapshot.Reservations[:1]
		fx.chart = NewChartService(&snapshotStub{snapshot: snapshot}, nil)
		if err := fx.chart.LoadChart(context.Background(), "default", date(t, "2024-03-08"), date(t, "2024-03-16")); err != nil {
			t.Fatalf("load chart: %v", err)
		}
		fx.service = NewOperationService(fx.chart, fx.backend, fx.events, func() string { return "op-1" }, nil, 5, time.Second)

		op, _ := fx.service.Start(context.Background(), []string{"res-1"}, OperationAssign)
		if _, err := fx.service.Drop(context.Background(), op.ID, []MemberTarget{
			{ReservationID: "res-1", RoomID: "r-203", Date: date(t, "2024-03-11")},
		}, CommitOptions{}); err != nil {
			t.Fatalf("drop: %v", err)
		}

		if _, err := fx.service.UndoLast(context.Background()); err != nil {
			t.Fatalf("undo: %v", err)
		}

		calendar := fx.chart.Calendar()
		for _, day := range []string{"2024-03-10", "2024-03-11"} {
			restored, err := calendar.CellAt("r-201", date(t, day))
			if err != nil || restored.ReservationID != "res-1" || restored.Status != tapechart.CellReserved {
				t.Fatalf("night %s not restored: %+v %v", day, restored, err)
			}
			vacated, err := calendar.CellAt("r-203", date(t, day))
			if err != nil || vacated.ReservationID != "" {
				t.Fatalf("night %s of undone room not vacated: %+v %v", day, vacated, err)
			}
		}

		if fx.service.CanUndo() {
			t.Fatal("undo entry must be consumed")
		}
	})

	t.Run("history is bounded", func(t *testing.T) {
		fx := newEngineFixture(t, 1)
		snapshot := testSnapshot(t)
		snapshot.Reservations = snapshot.Reservations[:1]
		fx.chart = NewChartService(&snapshotStub{snapshot: snapshot}, nil)
		if err := fx.chart.LoadChart(context.Background(), "default", date(t, "2024-03-08"), date(t, "2024-03-16")); err != nil {
			t.Fatalf("load chart: %v", err)
		}
		counter := 0
		fx.service = NewOperationService(fx.chart, fx.backend, fx.events, func() string {
			counter++
			return fmt.Sprintf("op-%d", counter)
		}, nil, 1, time.Second)

		move := func(roomID string) {
			t.Helper()
			op, err := fx.service.Start(context.Background(), []string{"res-1"}, OperationAssign)
			if err != nil {
				t.Fatalf("start: %v", err)
			}
			if _, err := fx.service.Drop(context.Background(), op.ID, []MemberTarget{
				{ReservationID: "res-1", RoomID: roomID, Date: date(t, "2024-03-11")},
			}, CommitOptions{}); err != nil {
				t.Fatalf("drop to %s: %v", roomID, err)
			}
		}

		move("r-203")
		move("r-204")

		if _, err := fx.service.UndoLast(context.Background()); err != nil {
			t.Fatalf("first undo: %v", err)
		}
		if _, err := fx.service.UndoLast(context.Background()); !errors.Is(err, ErrNothingToUndo) {
			t.Fatalf("depth-1 history should hold one entry, got %v", err)
		}
	})

	t.Run("undo refused while a gesture is active", func(t *testing.T) {
		fx := newEngineFixture(t, 5)
		if _, err := fx.service.Start(context.Background(), []string{"res-1"}, OperationAssign); err != nil {
			t.Fatalf("start: %v", err)
		}
		if _, err := fx.service.UndoLast(context.Background()); !errors.Is(err, ErrOperationActive) {
			t.Fatalf("expected ErrOperationActive, got %v", err)
		}
	})
}

func TestOperationServiceAbort(t *testing.T) {
	fx := newEngineFixture(t, 5)
	op, err := fx.service.Start(context.Background(), []string{"res-1"}, OperationAssign)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := fx.service.Abort(context.Background(), op.ID); err != nil {
		t.Fatalf("abort: %v", err)
	}
	if _, ok := fx.service.Active(); ok {
		t.Fatal("abort must return the engine to idle")
	}

	types := fx.events.types()
	if len(types) != 1 || types[0] != EventOperationAborted {
		t.Fatalf("expected operation_aborted event, got %v", types)
	}

	// Idle engine accepts the next gesture.
	if _, err := fx.service.Start(context.Background(), []string{"res-2"}, OperationAssign); err != nil {
		t.Fatalf("start after abort: %v", err)
	}

	if err := fx.service.Abort(context.Background(), op.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("aborting a finished operation should be ErrNotFound, got %v", err)
	}
}
