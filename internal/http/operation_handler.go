package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/frontdesk-console/internal/application"
	"github.com/example/frontdesk-console/internal/tapechart"
)

type operationService interface {
	Start(ctx context.Context, reservationIDs []string, kind application.OperationKind) (application.Operation, error)
	Hover(ctx context.Context, operationID string, targets []application.MemberTarget) ([]tapechart.BatchResult, error)
	Drop(ctx context.Context, operationID string, targets []application.MemberTarget, opts application.CommitOptions) (application.CommitResult, error)
	Abort(ctx context.Context, operationID string) error
	UndoLast(ctx context.Context) (application.CommitResult, error)
	CanUndo() bool
}

// OperationHandler exposes the drag/drop gesture lifecycle.
type OperationHandler struct {
	service   operationService
	responder responder
	logger    *slog.Logger
}

func NewOperationHandler(service operationService, logger *slog.Logger) *OperationHandler {
	base := defaultLogger(logger)
	return &OperationHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *OperationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "OperationHandler", operation, attrs...)
}

// Start begins a gesture for one or more reservations.
func (h *OperationHandler) Start(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req startOperationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	operation, err := h.service.Start(r.Context(), req.ReservationIDs, application.OperationKind(req.Kind))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Start", "operation_id", operation.ID).
		InfoContext(r.Context(), "operation started", "members", len(operation.ReservationIDs))
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, operationDTO{
		ID:             operation.ID,
		Kind:           string(operation.Kind),
		State:          string(operation.State),
		ReservationIDs: operation.ReservationIDs,
		StartedAt:      operation.StartedAt.UTC().Format(time.RFC3339Nano),
	})
}

// Hover validates the current pointer targets without committing anything.
func (h *OperationHandler) Hover(w http.ResponseWriter, r *http.Request) {
	operationID, targets, ok := h.decodeTargets(w, r)
	if !ok {
		return
	}

	results, err := h.service.Hover(r.Context(), operationID, targets)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, hoverResponse{
		Valid:   tapechart.BatchValid(results),
		Results: memberResults(results),
	})
}

// Drop validates and commits the gesture.
func (h *OperationHandler) Drop(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	operationID, ok := OperationIDFromContext(r.Context())
	if !ok || operationID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidOperationID)
		return
	}

	var req dropRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	targets, err := decodeMemberTargets(req.Targets)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	result, err := h.service.Drop(r.Context(), operationID, targets, application.CommitOptions{
		Override: req.Override,
		Notes:    req.Notes,
		Reason:   req.Reason,
		Notify:   req.Notify,
		LockRoom: req.LockRoom,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Drop", "operation_id", operationID).
		InfoContext(r.Context(), "operation committed", "members", len(result.Succeeded))
	h.responder.writeJSON(r.Context(), w, http.StatusOK, commitResultPayload(&result))
}

// Abort cancels the gesture.
func (h *OperationHandler) Abort(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	operationID, ok := OperationIDFromContext(r.Context())
	if !ok || operationID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidOperationID)
		return
	}

	if err := h.service.Abort(r.Context(), operationID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Abort", "operation_id", operationID).InfoContext(r.Context(), "operation aborted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Undo reverses the most recently committed operation.
func (h *OperationHandler) Undo(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	result, err := h.service.UndoLast(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Undo", "operation_id", result.OperationID).
		InfoContext(r.Context(), "operation undone", "members", len(result.Succeeded))
	h.responder.writeJSON(r.Context(), w, http.StatusOK, undoResponse{
		Result:  commitResultPayload(&result),
		CanUndo: h.service.CanUndo(),
	})
}

func (h *OperationHandler) decodeTargets(w http.ResponseWriter, r *http.Request) (string, []application.MemberTarget, bool) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return "", nil, false
	}
	operationID, ok := OperationIDFromContext(r.Context())
	if !ok || operationID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidOperationID)
		return "", nil, false
	}

	var req targetsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return "", nil, false
	}
	targets, err := decodeMemberTargets(req.Targets)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return "", nil, false
	}
	return operationID, targets, true
}

func decodeMemberTargets(targets []targetDTO) ([]application.MemberTarget, error) {
	if len(targets) == 0 {
		return nil, errors.New("at least one target is required")
	}
	decoded := make([]application.MemberTarget, 0, len(targets))
	for _, target := range targets {
		date, err := time.Parse(tapechart.DateLayout, target.Date)
		if err != nil {
			return nil, errors.New("target dates must be formatted as YYYY-MM-DD")
		}
		decoded = append(decoded, application.MemberTarget{
			ReservationID: target.ReservationID,
			RoomID:        target.RoomID,
			Date:          date,
		})
	}
	return decoded, nil
}

func memberResults(results []tapechart.BatchResult) []memberResultDTO {
	out := make([]memberResultDTO, 0, len(results))
	for _, result := range results {
		dto := memberResultDTO{
			ReservationID: result.ReservationID,
			RoomID:        result.Target.RoomID,
			Date:          result.Target.Date.Format(tapechart.DateLayout),
			Valid:         result.Conflict == nil,
		}
		if result.Conflict != nil {
			dto.Conflict = &conflictDTO{
				ReservationID: result.ReservationID,
				RoomID:        result.Target.RoomID,
				Date:          result.Target.Date.Format(tapechart.DateLayout),
				Kind:          string(result.Conflict.Kind),
				Message:       result.Conflict.Message,
				Suggestions:   result.Conflict.Suggestions,
			}
		}
		out = append(out, dto)
	}
	return out
}

type startOperationRequest struct {
	ReservationIDs []string `json:"reservation_ids"`
	Kind           string   `json:"kind,omitempty"`
}

type operationDTO struct {
	ID             string   `json:"id"`
	Kind           string   `json:"kind"`
	State          string   `json:"state"`
	ReservationIDs []string `json:"reservation_ids"`
	StartedAt      string   `json:"started_at"`
}

type targetDTO struct {
	ReservationID string `json:"reservation_id"`
	RoomID        string `json:"room_id"`
	Date          string `json:"date"`
}

type targetsRequest struct {
	Targets []targetDTO `json:"targets"`
}

type dropRequest struct {
	Targets  []targetDTO `json:"targets"`
	Override bool        `json:"override,omitempty"`
	Notes    string      `json:"notes,omitempty"`
	Reason   string      `json:"reason,omitempty"`
	Notify   bool        `json:"notify,omitempty"`
	LockRoom bool        `json:"lock_room,omitempty"`
}

type memberResultDTO struct {
	ReservationID string       `json:"reservation_id"`
	RoomID        string       `json:"room_id"`
	Date          string       `json:"date"`
	Valid         bool         `json:"valid"`
	Conflict      *conflictDTO `json:"conflict,omitempty"`
}

type hoverResponse struct {
	Valid   bool              `json:"valid"`
	Results []memberResultDTO `json:"results"`
}

type undoResponse struct {
	Result  *commitResultDTO `json:"result"`
	CanUndo bool             `json:"can_undo"`
}
