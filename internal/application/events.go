package application

import (
	"time"

	"github.com/example/frontdesk-console/internal/tapechart"
)

// EventType labels the structured events the engine emits for a UI layer.
type EventType string

const (
	EventConflictDetected   EventType = "conflict_detected"
	EventOperationCommitted EventType = "operation_committed"
	EventOperationAborted   EventType = "operation_aborted"
	EventUndoAvailable      EventType = "undo_available"
)

// Event is the structured notification pushed to subscribers. The engine
// never formats user-facing text beyond the conflict messages it carries.
type Event struct {
	Type           EventType
	OperationID    string
	ReservationIDs []string
	Conflicts      []tapechart.BatchResult
	Result         *CommitResult
	UndoDepth      int
	At             time.Time
}

// Emitter receives engine events. Implementations must not block; slow
// consumers should buffer on their side.
type Emitter interface {
	Emit(event Event)
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(event Event)

// Emit implements Emitter.
func (f EmitterFunc) Emit(event Event) {
	if f != nil {
		f(event)
	}
}

// CombineEmitters fans one event out to several subscribers.
func CombineEmitters(emitters ...Emitter) Emitter {
	return EmitterFunc(func(event Event) {
		for _, emitter := range emitters {
			if emitter != nil {
				emitter.Emit(event)
			}
		}
	})
}

type nopEmitter struct{}

func (nopEmitter) Emit(Event) {}
