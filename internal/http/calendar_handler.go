package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/campus-planner/internal/aggregator"
	"github.com/example/campus-planner/internal/application"
)

type calendarService interface {
	WeekView(ctx context.Context, userID string, weekStart time.Time) (aggregator.WeekData, error)
}

type CalendarHandler struct {
	service   calendarService
	responder responder
	logger    *slog.Logger
}

// NewCalendarHandler constructs the aggregated week view handler.
func NewCalendarHandler(service calendarService, logger *slog.Logger) *CalendarHandler {
	base := defaultLogger(logger)
	return &CalendarHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *CalendarHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "CalendarHandler", operation, attrs...)
}

// Week serves GET /users/{id}/week?start=YYYY-MM-DD.
func (h *CalendarHandler) Week(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	userID, ok := UserIDFromContext(r.Context())
	if !ok || strings.TrimSpace(userID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidUserID)
		return
	}

	raw := r.URL.Query().Get("start")
	if raw == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingStart)
		return
	}
	weekStart, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Week", "user_id", userID, "week_start", raw)
	week, err := h.service.WeekView(r.Context(), userID, weekStart)
	if err != nil {
		logger.ErrorContext(r.Context(), "week view failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "week view served", "event_count", len(week.Events))
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toWeekDTO(week))
}

type weekDTO struct {
	Events  []eventDTO       `json:"events"`
	Days    []dayScheduleDTO `json:"days"`
	Summary weekSummaryDTO   `json:"summary"`
}

type eventDTO struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Type          string    `json:"type"`
	Status        string    `json:"status,omitempty"`
	Priority      int       `json:"priority,omitempty"`
	ConflictCount int       `json:"conflict_count"`
}

type timeSlotDTO struct {
	Start  time.Time  `json:"start"`
	End    time.Time  `json:"end"`
	Events []eventDTO `json:"events,omitempty"`
}

type dayScheduleDTO struct {
	Date      string        `json:"date"`
	Events    []eventDTO    `json:"events"`
	FreeSlots []timeSlotDTO `json:"free_slots"`
	BusySlots []timeSlotDTO `json:"busy_slots"`
}

type weekSummaryDTO struct {
	TotalEvents       int            `json:"total_events"`
	CountsByType      map[string]int `json:"counts_by_type"`
	BusyHours         float64        `json:"busy_hours"`
	FreeHours         float64        `json:"free_hours"`
	BusiestDay        string         `json:"busiest_day"`
	LightestDay       string         `json:"lightest_day"`
	ConflictCount     int            `json:"conflict_count"`
	UpcomingDeadlines int            `json:"upcoming_deadlines"`
}

func toWeekDTO(week aggregator.WeekData) weekDTO {
	out := weekDTO{
		Events: toEventDTOs(week.Events),
		Days:   make([]dayScheduleDTO, 0, len(week.Days)),
	}

	for _, day := range week.Days {
		out.Days = append(out.Days, dayScheduleDTO{
			Date:      day.Date.Format(time.DateOnly),
			Events:    toEventDTOs(day.Events),
			FreeSlots: toTimeSlotDTOs(day.FreeSlots),
			BusySlots: toTimeSlotDTOs(day.BusySlots),
		})
	}

	counts := make(map[string]int, len(week.Summary.CountsByType))
	for typ, n := range week.Summary.CountsByType {
		counts[string(typ)] = n
	}
	out.Summary = weekSummaryDTO{
		TotalEvents:       week.Summary.TotalEvents,
		CountsByType:      counts,
		BusyHours:         week.Summary.BusyHours,
		FreeHours:         week.Summary.FreeHours,
		ConflictCount:     week.Summary.ConflictCount,
		UpcomingDeadlines: week.Summary.UpcomingDeadlines,
	}
	if !week.Summary.BusiestDay.IsZero() {
		out.Summary.BusiestDay = week.Summary.BusiestDay.Format(time.DateOnly)
	}
	if !week.Summary.LightestDay.IsZero() {
		out.Summary.LightestDay = week.Summary.LightestDay.Format(time.DateOnly)
	}

	return out
}

func toEventDTOs(events []aggregator.WeekEvent) []eventDTO {
	out := make([]eventDTO, 0, len(events))
	for _, ev := range events {
		out = append(out, eventDTO{
			ID:            ev.ID,
			Title:         ev.Title,
			Start:         ev.Start,
			End:           ev.End,
			Type:          string(ev.Type),
			Status:        string(ev.Status),
			Priority:      ev.Priority,
			ConflictCount: ev.ConflictCount,
		})
	}
	return out
}

func toTimeSlotDTOs(slots []aggregator.TimeSlot) []timeSlotDTO {
	out := make([]timeSlotDTO, 0, len(slots))
	for _, slot := range slots {
		out = append(out, timeSlotDTO{
			Start:  slot.Start,
			End:    slot.End,
			Events: toEventDTOs(slot.Events),
		})
	}
	return out
}
