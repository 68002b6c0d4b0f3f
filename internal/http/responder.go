package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/frontdesk-console/internal/application"
	"github.com/example/frontdesk-console/internal/tapechart"
)

var (
	errBadRequestBody      = errors.New("the request body is not valid JSON")
	errMissingSessionToken = errors.New("a session token is required")
	errInvalidOperationID  = errors.New("an operation id is required")
	errInvalidRoomID       = errors.New("a room id is required")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// handleServiceError translates the application layer's error vocabulary into
// stable status codes and error codes.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	var vErr *application.ValidationError
	var conflictErr *application.ConflictError
	var commitErr *application.CommitError

	switch {
	case errors.As(err, &conflictErr):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "ASSIGNMENT_CONFLICT",
			Message:   "the requested assignment conflicts with the current chart",
			Conflicts: conflictPayload(conflictErr.Conflicts()),
		})
	case errors.As(err, &commitErr):
		r.writeJSON(ctx, w, http.StatusBadGateway, errorResponse{
			ErrorCode: "COMMIT_FAILED",
			Message:   commitErr.Error(),
			Retryable: commitErr.Retryable,
			Result:    commitResultPayload(&commitErr.Result),
		})
	case errors.As(err, &vErr):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "VALIDATION_FAILED",
			Message:   "the request contains invalid fields",
			Errors:    vErr.FieldErrors,
		})
	case errors.Is(err, application.ErrOperationActive):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "OPERATION_ACTIVE",
			Message:   "another operation is already in progress",
		})
	case errors.Is(err, application.ErrInvalidOperationState):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "INVALID_OPERATION_STATE",
			Message:   err.Error(),
		})
	case errors.Is(err, application.ErrNothingToUndo):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "NOTHING_TO_UNDO",
			Message:   "the undo history is empty",
		})
	case errors.Is(err, application.ErrChartUnavailable):
		r.writeJSON(ctx, w, http.StatusServiceUnavailable, errorResponse{
			ErrorCode: "CHART_UNAVAILABLE",
			Message:   "the tape chart could not be loaded",
		})
	case errors.Is(err, application.ErrAccountDisabled):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "AUTH_ACCOUNT_DISABLED",
			Message:   "this account has been disabled",
		})
	case errors.Is(err, application.ErrSessionExpired), errors.Is(err, application.ErrSessionRevoked):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_SESSION_EXPIRED",
			Message:   "the session is no longer valid, sign in again",
		})
	case errors.Is(err, application.ErrInvalidCredentials):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_INVALID_CREDENTIALS",
			Message:   "email or password is incorrect",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "the requested resource was not found"})
	default:
		r.loggerFor(ctx).ErrorContext(ctx, "unhandled service error", "error", err)
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "an internal error occurred"})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
	Conflicts []conflictDTO     `json:"conflicts,omitempty"`
	Retryable bool              `json:"retryable,omitempty"`
	Result    *commitResultDTO  `json:"result,omitempty"`
}

type conflictDTO struct {
	ReservationID string   `json:"reservation_id"`
	RoomID        string   `json:"room_id"`
	Date          string   `json:"date"`
	Kind          string   `json:"kind"`
	Message       string   `json:"message"`
	Suggestions   []string `json:"suggestions,omitempty"`
}

type committedMemberDTO struct {
	ReservationID string `json:"reservation_id"`
	FromRoomID    string `json:"from_room_id"`
	ToRoomID      string `json:"to_room_id"`
	Date          string `json:"date"`
}

type failedMemberDTO struct {
	ReservationID string `json:"reservation_id"`
	Reason        string `json:"reason"`
}

type commitResultDTO struct {
	OperationID string               `json:"operation_id"`
	Succeeded   []committedMemberDTO `json:"succeeded,omitempty"`
	Failed      []failedMemberDTO    `json:"failed,omitempty"`
}

func conflictPayload(results []tapechart.BatchResult) []conflictDTO {
	conflicts := make([]conflictDTO, 0, len(results))
	for _, result := range results {
		if result.Conflict == nil {
			continue
		}
		conflicts = append(conflicts, conflictDTO{
			ReservationID: result.ReservationID,
			RoomID:        result.Target.RoomID,
			Date:          result.Target.Date.Format(tapechart.DateLayout),
			Kind:          string(result.Conflict.Kind),
			Message:       result.Conflict.Message,
			Suggestions:   result.Conflict.Suggestions,
		})
	}
	return conflicts
}

func commitResultPayload(result *application.CommitResult) *commitResultDTO {
	if result == nil {
		return nil
	}
	dto := &commitResultDTO{OperationID: result.OperationID}
	for _, member := range result.Succeeded {
		dto.Succeeded = append(dto.Succeeded, committedMemberDTO{
			ReservationID: member.ReservationID,
			FromRoomID:    member.FromRoomID,
			ToRoomID:      member.ToRoomID,
			Date:          member.Date.Format(tapechart.DateLayout),
		})
	}
	for _, member := range result.Failed {
		dto.Failed = append(dto.Failed, failedMemberDTO{
			ReservationID: member.ReservationID,
			Reason:        member.Reason,
		})
	}
	return dto
}
