package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/frontdesk-console/internal/tapechart"
)

type chartService interface {
	Calendar() *tapechart.Calendar
	LoadChart(ctx context.Context, viewID string, from, to time.Time) error
	Suggest(ctx context.Context, reservationID string, opts tapechart.SuggestOptions) ([]tapechart.Suggestion, error)
}

// ChartHandler serves the tape chart view and room suggestions.
type ChartHandler struct {
	service   chartService
	viewID    string
	chartDays int
	now       func() time.Time
	responder responder
	logger    *slog.Logger
}

func NewChartHandler(service chartService, viewID string, chartDays int, now func() time.Time, logger *slog.Logger) *ChartHandler {
	base := defaultLogger(logger)
	if now == nil {
		now = time.Now
	}
	if chartDays <= 0 {
		chartDays = 30
	}
	return &ChartHandler{
		service:   service,
		viewID:    viewID,
		chartDays: chartDays,
		now:       now,
		responder: newResponder(base),
		logger:    base,
	}
}

// Get renders the loaded chart. An explicit from/to pair reloads the window
// first; otherwise the current range is served, loading the default window on
// first use.
func (h *ChartHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	fromParam := strings.TrimSpace(query.Get("from"))
	toParam := strings.TrimSpace(query.Get("to"))

	if fromParam != "" || toParam != "" {
		from, to, err := parseDateRange(fromParam, toParam)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
			return
		}
		if err := h.service.LoadChart(r.Context(), h.viewID, from, to); err != nil {
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
	} else if from, to := h.service.Calendar().Range(); from.Equal(to) {
		start := tapechart.DateOnly(h.now())
		if err := h.service.LoadChart(r.Context(), h.viewID, start, start.AddDate(0, 0, h.chartDays)); err != nil {
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, renderChart(h.service.Calendar()))
}

// Suggest ranks alternative rooms for a reservation.
func (h *ChartHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	reservationID := strings.TrimSpace(query.Get("reservation_id"))
	if reservationID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errors.New("a reservation_id is required"))
		return
	}

	opts := tapechart.SuggestOptions{
		PreferredFloor: strings.TrimSpace(query.Get("preferred_floor")),
	}
	if limit := strings.TrimSpace(query.Get("limit")); limit != "" {
		parsed, err := strconv.Atoi(limit)
		if err != nil || parsed < 0 {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errors.New("limit must be a non-negative integer"))
			return
		}
		opts.Limit = parsed
	}
	if fullStay := strings.TrimSpace(query.Get("full_stay")); fullStay != "" {
		parsed, err := strconv.ParseBool(fullStay)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errors.New("full_stay must be a boolean"))
			return
		}
		opts.RequireFullStay = parsed
	}

	suggestions, err := h.service.Suggest(r.Context(), reservationID, opts)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	payload := suggestionsResponse{Suggestions: make([]suggestionDTO, 0, len(suggestions))}
	for _, suggestion := range suggestions {
		payload.Suggestions = append(payload.Suggestions, suggestionDTO{
			RoomID:     suggestion.RoomID,
			RoomNumber: suggestion.RoomNumber,
			Score:      suggestion.Score,
			Reasons:    suggestion.Reasons,
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, payload)
}

func parseDateRange(fromParam, toParam string) (time.Time, time.Time, error) {
	if fromParam == "" || toParam == "" {
		return time.Time{}, time.Time{}, errors.New("from and to must be provided together")
	}
	from, err := time.Parse(tapechart.DateLayout, fromParam)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("from must be formatted as YYYY-MM-DD")
	}
	to, err := time.Parse(tapechart.DateLayout, toParam)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("to must be formatted as YYYY-MM-DD")
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, errors.New("from must be before to")
	}
	return from, to, nil
}

func renderChart(calendar *tapechart.Calendar) chartResponse {
	from, to := calendar.Range()
	response := chartResponse{
		From: from.Format(tapechart.DateLayout),
		To:   to.Format(tapechart.DateLayout),
	}

	for _, room := range calendar.Rooms() {
		row := chartRowDTO{
			Room: roomDTO{
				ID:       room.ID,
				Number:   room.Number,
				Type:     room.Type,
				Floor:    room.Floor,
				Building: room.Building,
				Rate:     room.Rate,
				Status:   string(room.Status),
			},
		}
		for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
			cell, err := calendar.CellAt(room.ID, day)
			if err != nil {
				continue
			}
			row.Cells = append(row.Cells, cellDTO{
				Date:          cell.Date.Format(tapechart.DateLayout),
				Status:        string(cell.Status),
				ReservationID: cell.ReservationID,
			})
		}
		response.Rows = append(response.Rows, row)
	}

	for _, res := range calendar.Reservations() {
		response.Reservations = append(response.Reservations, reservationDTO{
			ID:        res.ID,
			GuestName: res.GuestName,
			RoomType:  res.RoomType,
			RoomID:    res.RoomID,
			CheckIn:   res.CheckIn.Format(tapechart.DateLayout),
			CheckOut:  res.CheckOut.Format(tapechart.DateLayout),
			Adults:    res.Adults,
			Children:  res.Children,
			VIPTier:   res.VIPTier,
			CheckedIn: res.CheckedIn,
		})
	}
	return response
}

type chartResponse struct {
	From         string           `json:"from"`
	To           string           `json:"to"`
	Rows         []chartRowDTO    `json:"rows"`
	Reservations []reservationDTO `json:"reservations"`
}

type chartRowDTO struct {
	Room  roomDTO   `json:"room"`
	Cells []cellDTO `json:"cells"`
}

type roomDTO struct {
	ID       string  `json:"id"`
	Number   string  `json:"number"`
	Type     string  `json:"type"`
	Floor    string  `json:"floor,omitempty"`
	Building string  `json:"building,omitempty"`
	Rate     float64 `json:"rate"`
	Status   string  `json:"status"`
}

type cellDTO struct {
	Date          string `json:"date"`
	Status        string `json:"status"`
	ReservationID string `json:"reservation_id,omitempty"`
}

type reservationDTO struct {
	ID        string `json:"id"`
	GuestName string `json:"guest_name"`
	RoomType  string `json:"room_type"`
	RoomID    string `json:"room_id"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
	Adults    int    `json:"adults"`
	Children  int    `json:"children"`
	VIPTier   int    `json:"vip_tier"`
	CheckedIn bool   `json:"checked_in"`
}

type suggestionsResponse struct {
	Suggestions []suggestionDTO `json:"suggestions"`
}

type suggestionDTO struct {
	RoomID     string   `json:"room_id"`
	RoomNumber string   `json:"room_number"`
	Score      float64  `json:"score"`
	Reasons    []string `json:"reasons,omitempty"`
}
