package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/frontdesk-console/internal/tapechart"
)

// RoomStatusService handles housekeeping and maintenance status changes.
// It sits outside the drag/drop path but shares the loaded chart, so a
// successful status change is projected onto the calendar immediately.
type RoomStatusService struct {
	backend RoomStatusBackend
	chart   *ChartService
	now     func() time.Time
	logger  *slog.Logger
}

// NewRoomStatusService wires dependencies for room status changes.
func NewRoomStatusService(backend RoomStatusBackend, chart *ChartService, now func() time.Time) *RoomStatusService {
	return NewRoomStatusServiceWithLogger(backend, chart, now, nil)
}

// NewRoomStatusServiceWithLogger constructs a RoomStatusService with a
// specified logger.
func NewRoomStatusServiceWithLogger(backend RoomStatusBackend, chart *ChartService, now func() time.Time, logger *slog.Logger) *RoomStatusService {
	if now == nil {
		now = time.Now
	}
	return &RoomStatusService{
		backend: backend,
		chart:   chart,
		now:     now,
		logger:  defaultLogger(logger),
	}
}

// SetRoomStatus validates and persists a room lifecycle status change, then
// patches the loaded chart.
func (s *RoomStatusService) SetRoomStatus(ctx context.Context, principal Principal, roomID string, status tapechart.RoomStatus, reason string) (err error) {
	if s == nil {
		return fmt.Errorf("RoomStatusService is nil")
	}
	if s.backend == nil {
		return fmt.Errorf("room status backend not configured")
	}

	logger := serviceLogger(ctx, s.logger, "RoomStatusService", "SetRoomStatus",
		"staff_id", principal.StaffID,
		"room_id", roomID,
		"status", status,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "room status change failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "room status changed", "reason", reason)
	}()

	vErr := &ValidationError{}
	if strings.TrimSpace(roomID) == "" {
		vErr.add("room_id", "room id is required")
	}
	if !tapechart.ValidRoomStatus(status) {
		vErr.add("status", "unknown room status")
	}
	if status.OutOfService() && strings.TrimSpace(reason) == "" {
		vErr.add("reason", "a reason is required for out of service rooms")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if s.chart != nil {
		if _, ok := s.chart.Calendar().Room(roomID); !ok {
			err = fmt.Errorf("%w: room %s", ErrNotFound, roomID)
			return
		}
	}

	if err = s.backend.SetRoomStatus(ctx, roomID, string(status), reason); err != nil {
		return
	}

	if s.chart != nil {
		if patchErr := s.chart.Calendar().SetRoomStatus(roomID, status); patchErr != nil {
			logger.WarnContext(ctx, "chart patch failed after status change", "error", patchErr)
		}
		s.chart.InvalidateSuggestions()
	}
	return nil
}
