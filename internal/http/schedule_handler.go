package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/campus-planner/internal/application"
	"github.com/example/campus-planner/internal/availability"
)

type availabilityService interface {
	GroupSchedule(ctx context.Context, groupID string, date time.Time) (availability.SharedSchedule, error)
}

type ScheduleHandler struct {
	service   availabilityService
	responder responder
	logger    *slog.Logger
}

// NewScheduleHandler constructs the group schedule handler.
func NewScheduleHandler(service availabilityService, logger *slog.Logger) *ScheduleHandler {
	base := defaultLogger(logger)
	return &ScheduleHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ScheduleHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ScheduleHandler", operation, attrs...)
}

// Get serves GET /groups/{id}/schedule?date=YYYY-MM-DD.
func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	groupID, ok := GroupIDFromContext(r.Context())
	if !ok || strings.TrimSpace(groupID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidGroupID)
		return
	}

	raw := r.URL.Query().Get("date")
	if raw == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingDate)
		return
	}
	date, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Get", "group_id", groupID, "date", raw)
	schedule, err := h.service.GroupSchedule(r.Context(), groupID, date)
	if err != nil {
		logger.ErrorContext(r.Context(), "schedule computation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "schedule served",
		"free_slots", len(schedule.CommonFreeSlots),
		"conflicts", len(schedule.ConflictingSlots),
	)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toScheduleDTO(schedule))
}

type scheduleDTO struct {
	CommonFreeSlots  []freeSlotDTO   `json:"common_free_slots"`
	ConflictingSlots []conflictDTO   `json:"conflicting_slots"`
	Suggestions      []suggestionDTO `json:"suggestions"`
	GeneratedAt      time.Time       `json:"generated_at"`
}

type freeSlotDTO struct {
	Start            string   `json:"start"`
	End              string   `json:"end"`
	AvailableMembers []string `json:"available_members"`
	Confidence       float64  `json:"confidence"`
	DurationMinutes  int      `json:"duration_minutes"`
}

type conflictDTO struct {
	Start     string              `json:"start"`
	End       string              `json:"end"`
	Conflicts []memberConflictDTO `json:"conflicts"`
}

type memberConflictDTO struct {
	MemberID         string   `json:"member_id"`
	MemberName       string   `json:"member_name"`
	ConflictType     string   `json:"conflict_type"`
	ConflictTitle    string   `json:"conflict_title,omitempty"`
	CanBeRescheduled bool     `json:"can_be_rescheduled"`
	AlternativeTimes []string `json:"alternative_times,omitempty"`
}

type suggestionDTO struct {
	Type            string   `json:"type"`
	Confidence      float64  `json:"confidence"`
	SuggestedTime   string   `json:"suggested_time,omitempty"`
	AffectedMembers []string `json:"affected_members"`
	ActionRequired  bool     `json:"action_required"`
}

func toScheduleDTO(s availability.SharedSchedule) scheduleDTO {
	out := scheduleDTO{
		CommonFreeSlots:  make([]freeSlotDTO, 0, len(s.CommonFreeSlots)),
		ConflictingSlots: make([]conflictDTO, 0, len(s.ConflictingSlots)),
		Suggestions:      make([]suggestionDTO, 0, len(s.Suggestions)),
		GeneratedAt:      s.GeneratedAt,
	}

	for _, slot := range s.CommonFreeSlots {
		out.CommonFreeSlots = append(out.CommonFreeSlots, freeSlotDTO{
			Start:            slot.Start.String(),
			End:              slot.End.String(),
			AvailableMembers: slot.AvailableMembers,
			Confidence:       slot.Confidence,
			DurationMinutes:  slot.DurationMinutes,
		})
	}

	for _, slot := range s.ConflictingSlots {
		conflicts := make([]memberConflictDTO, 0, len(slot.Conflicts))
		for _, c := range slot.Conflicts {
			alternatives := make([]string, 0, len(c.AlternativeTimes))
			for _, alt := range c.AlternativeTimes {
				alternatives = append(alternatives, alt.String())
			}
			conflicts = append(conflicts, memberConflictDTO{
				MemberID:         c.MemberID,
				MemberName:       c.MemberName,
				ConflictType:     string(c.ConflictType),
				ConflictTitle:    c.ConflictTitle,
				CanBeRescheduled: c.CanBeRescheduled,
				AlternativeTimes: alternatives,
			})
		}
		out.ConflictingSlots = append(out.ConflictingSlots, conflictDTO{
			Start:     slot.Start.String(),
			End:       slot.End.String(),
			Conflicts: conflicts,
		})
	}

	for _, sug := range s.Suggestions {
		dto := suggestionDTO{
			Type:            string(sug.Type),
			Confidence:      sug.Confidence,
			AffectedMembers: sug.AffectedMembers,
			ActionRequired:  sug.ActionRequired,
		}
		if sug.SuggestedTime != nil {
			dto.SuggestedTime = sug.SuggestedTime.String()
		}
		out.Suggestions = append(out.Suggestions, dto)
	}

	return out
}
