package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/frontdesk-console/internal/tapechart"
)

// ChartService owns the loaded tape chart: it populates the calendar from
// backend snapshots and serves cached room suggestions. It never mutates
// backend state.
type ChartService struct {
	calendar    *tapechart.Calendar
	source      SnapshotSource
	suggestions *suggestionCache
	now         func() time.Time
	logger      *slog.Logger
}

// NewChartService wires dependencies for chart loading and suggestions.
func NewChartService(source SnapshotSource, now func() time.Time) *ChartService {
	return NewChartServiceWithLogger(source, now, nil)
}

// NewChartServiceWithLogger constructs a ChartService with a specified logger.
func NewChartServiceWithLogger(source SnapshotSource, now func() time.Time, logger *slog.Logger) *ChartService {
	if now == nil {
		now = time.Now
	}
	return &ChartService{
		calendar:    tapechart.NewCalendar(),
		source:      source,
		suggestions: newSuggestionCache(0, 0, now),
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *ChartService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ChartService", operation, attrs...)
}

// Calendar exposes the loaded chart for evaluation and queries.
func (s *ChartService) Calendar() *tapechart.Calendar {
	return s.calendar
}

// LoadChart fetches a fresh snapshot and rebuilds every timeline cell for the
// half-open range [from, to). Fetch failures surface as ErrChartUnavailable,
// never as a conflict.
func (s *ChartService) LoadChart(ctx context.Context, viewID string, from, to time.Time) (err error) {
	if s == nil {
		return fmt.Errorf("ChartService is nil")
	}
	if s.source == nil {
		return fmt.Errorf("snapshot source not configured")
	}

	logger := s.loggerWith(ctx, "LoadChart",
		"view_id", viewID,
		"from", tapechart.DateOnly(from).Format(tapechart.DateLayout),
		"to", tapechart.DateOnly(to).Format(tapechart.DateLayout),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "chart load failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "chart loaded")
	}()

	snapshot, fetchErr := s.source.FetchCalendarSnapshot(ctx, viewID, from, to)
	if fetchErr != nil {
		err = fmt.Errorf("%w: %v", ErrChartUnavailable, fetchErr)
		return
	}

	if loadErr := s.calendar.Load(snapshot.Rooms, snapshot.Reservations, from, to); loadErr != nil {
		err = fmt.Errorf("%w: %v", ErrChartUnavailable, loadErr)
		return
	}

	s.suggestions.Invalidate()
	return nil
}

// CellAt answers a point query against the loaded chart.
func (s *ChartService) CellAt(roomID string, date time.Time) (tapechart.TimelineCell, error) {
	return s.calendar.CellAt(roomID, date)
}

// Suggest ranks alternative rooms for a loaded reservation, serving repeat
// queries from a short-lived cache. An unknown reservation id is the only
// error; an empty list means no suggestion is available.
func (s *ChartService) Suggest(ctx context.Context, reservationID string, opts tapechart.SuggestOptions) ([]tapechart.Suggestion, error) {
	if s == nil {
		return nil, fmt.Errorf("ChartService is nil")
	}

	res, ok := s.calendar.Reservation(reservationID)
	if !ok {
		return nil, fmt.Errorf("%w: reservation %s", ErrNotFound, reservationID)
	}

	key := buildSuggestionCacheKey(reservationID, opts)
	if cached, ok := s.suggestions.Get(key); ok {
		return cached, nil
	}

	suggestions := tapechart.Suggest(s.calendar, res, opts)
	s.suggestions.Store(key, suggestions)

	s.loggerWith(ctx, "Suggest", "reservation_id", reservationID).
		DebugContext(ctx, "ranked suggestions", "candidates", len(suggestions))
	return suggestions, nil
}

// InvalidateSuggestions drops every cached ranking. The operation service
// calls this whenever the chart changes or a gesture is cancelled so stale
// hints never outlive the state they were computed from.
func (s *ChartService) InvalidateSuggestions() {
	if s == nil {
		return
	}
	s.suggestions.Invalidate()
}
