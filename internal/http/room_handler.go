package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/example/frontdesk-console/internal/application"
	"github.com/example/frontdesk-console/internal/tapechart"
)

type roomStatusService interface {
	SetRoomStatus(ctx context.Context, principal application.Principal, roomID string, status tapechart.RoomStatus, reason string) error
}

// RoomHandler exposes housekeeping status changes.
type RoomHandler struct {
	service   roomStatusService
	responder responder
	logger    *slog.Logger
}

func NewRoomHandler(service roomStatusService, logger *slog.Logger) *RoomHandler {
	base := defaultLogger(logger)
	return &RoomHandler{service: service, responder: newResponder(base), logger: base}
}

// UpdateStatus changes a room's lifecycle status.
func (h *RoomHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := RoomIDFromContext(r.Context())
	if !ok || roomID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req roomStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	err := h.service.SetRoomStatus(r.Context(), principal, roomID, tapechart.RoomStatus(req.Status), req.Reason)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	handlerLogger(r.Context(), h.logger, "RoomHandler", "UpdateStatus", "room_id", roomID).
		InfoContext(r.Context(), "room status updated", "status", req.Status)
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type roomStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}
