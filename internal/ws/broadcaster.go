package ws

import (
	"encoding/json"
	"log/slog"

	"github.com/example/frontdesk-console/internal/application"
	"github.com/example/frontdesk-console/internal/tapechart"
)

// Message is the wire format pushed to consoles.
type Message struct {
	Type        string           `json:"type"`
	OperationID string           `json:"operationId,omitempty"`
	Conflicts   []MemberConflict `json:"conflicts,omitempty"`
	Succeeded   []MemberMove     `json:"succeeded,omitempty"`
	Failed      []MemberFailure  `json:"failed,omitempty"`
	UndoDepth   int              `json:"undoDepth,omitempty"`
	Timestamp   int64            `json:"timestamp"`
}

// MemberConflict reports one failing member of a gesture.
type MemberConflict struct {
	ReservationID string   `json:"reservationId"`
	RoomID        string   `json:"roomId"`
	Date          string   `json:"date"`
	Kind          string   `json:"kind"`
	Message       string   `json:"message"`
	Suggestions   []string `json:"suggestions,omitempty"`
}

// MemberMove reports one committed member assignment.
type MemberMove struct {
	ReservationID string `json:"reservationId"`
	FromRoomID    string `json:"fromRoomId"`
	ToRoomID      string `json:"toRoomId"`
	Date          string `json:"date"`
}

// MemberFailure reports one member the backend rejected.
type MemberFailure struct {
	ReservationID string `json:"reservationId"`
	Reason        string `json:"reason"`
}

// Broadcaster adapts engine events to hub broadcasts. It implements
// application.Emitter and never blocks the emitting service.
type Broadcaster struct {
	hub    *Hub
	logger *slog.Logger
}

// NewBroadcaster wires a broadcaster to the hub.
func NewBroadcaster(hub *Hub, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{hub: hub, logger: logger.With("component", "ws.Broadcaster")}
}

// Emit implements application.Emitter.
func (b *Broadcaster) Emit(event application.Event) {
	if b == nil || b.hub == nil {
		return
	}

	data, err := json.Marshal(buildMessage(event))
	if err != nil {
		b.logger.Error("marshal event", "error", err)
		return
	}
	b.hub.Broadcast(data)
}

func buildMessage(event application.Event) Message {
	message := Message{
		Type:        string(event.Type),
		OperationID: event.OperationID,
		UndoDepth:   event.UndoDepth,
		Timestamp:   event.At.UnixMilli(),
	}
	for _, result := range event.Conflicts {
		if result.Conflict == nil {
			continue
		}
		message.Conflicts = append(message.Conflicts, MemberConflict{
			ReservationID: result.ReservationID,
			RoomID:        result.Target.RoomID,
			Date:          result.Target.Date.Format(tapechart.DateLayout),
			Kind:          string(result.Conflict.Kind),
			Message:       result.Conflict.Message,
			Suggestions:   result.Conflict.Suggestions,
		})
	}
	if event.Result != nil {
		for _, member := range event.Result.Succeeded {
			message.Succeeded = append(message.Succeeded, MemberMove{
				ReservationID: member.ReservationID,
				FromRoomID:    member.FromRoomID,
				ToRoomID:      member.ToRoomID,
				Date:          member.Date.Format(tapechart.DateLayout),
			})
		}
		for _, member := range event.Result.Failed {
			message.Failed = append(message.Failed, MemberFailure{
				ReservationID: member.ReservationID,
				Reason:        member.Reason,
			})
		}
	}
	return message
}
