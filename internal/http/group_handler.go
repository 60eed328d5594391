package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/campus-planner/internal/application"
	"github.com/example/campus-planner/internal/availability"
	"github.com/example/campus-planner/internal/persistence"
)

type groupService interface {
	CreateGroup(ctx context.Context, input application.GroupInput) (persistence.Group, error)
	GetGroup(ctx context.Context, groupID string) (application.GroupDetail, error)
	ListGroups(ctx context.Context) ([]persistence.Group, error)
	DeleteGroup(ctx context.Context, groupID string) error
	AddMember(ctx context.Context, input application.MemberInput) (persistence.Member, error)
	RemoveMember(ctx context.Context, memberID string) error
	AddSlot(ctx context.Context, input application.SlotInput) (persistence.AvailabilitySlot, error)
	RemoveSlot(ctx context.Context, slotID string) error
}

// scheduleInvalidator drops cached schedules after roster or slot mutations.
type scheduleInvalidator interface {
	InvalidateGroup(groupID string)
}

type GroupHandler struct {
	service     groupService
	invalidator scheduleInvalidator
	responder   responder
	logger      *slog.Logger
}

// NewGroupHandler constructs the group management handler. invalidator may be
// nil when no schedule cache is in play.
func NewGroupHandler(service groupService, invalidator scheduleInvalidator, logger *slog.Logger) *GroupHandler {
	base := defaultLogger(logger)
	return &GroupHandler{service: service, invalidator: invalidator, responder: newResponder(base), logger: base}
}

func (h *GroupHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "GroupHandler", operation, attrs...)
}

func (h *GroupHandler) invalidate(groupID string) {
	if h.invalidator != nil {
		h.invalidator.InvalidateGroup(groupID)
	}
}

func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req groupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode group request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create")
	group, err := h.service.CreateGroup(r.Context(), application.GroupInput{Name: req.Name})
	if err != nil {
		logger.ErrorContext(r.Context(), "group creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("group_id", group.ID).InfoContext(r.Context(), "group created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, groupResponse{Group: toGroupDTO(group)})
}

func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	groups, err := h.service.ListGroups(r.Context())
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "group listing failed", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]groupDTO, 0, len(groups))
	for _, g := range groups {
		dtos = append(dtos, toGroupDTO(g))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, groupListResponse{Groups: dtos})
}

func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	groupID, ok := GroupIDFromContext(r.Context())
	if !ok || strings.TrimSpace(groupID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidGroupID)
		return
	}

	detail, err := h.service.GetGroup(r.Context(), groupID)
	if err != nil {
		h.log(r.Context(), "Get", "group_id", groupID).ErrorContext(r.Context(), "group lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	members := make([]memberDTO, 0, len(detail.Members))
	for _, m := range detail.Members {
		members = append(members, toMemberDTO(m))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, groupDetailResponse{
		Group:   toGroupDTO(detail.Group),
		Members: members,
	})
}

func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	groupID, ok := GroupIDFromContext(r.Context())
	if !ok || strings.TrimSpace(groupID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidGroupID)
		return
	}

	logger := h.log(r.Context(), "Delete", "group_id", groupID)
	if err := h.service.DeleteGroup(r.Context(), groupID); err != nil {
		logger.ErrorContext(r.Context(), "group deletion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.invalidate(groupID)
	logger.InfoContext(r.Context(), "group deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *GroupHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	groupID, ok := GroupIDFromContext(r.Context())
	if !ok || strings.TrimSpace(groupID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidGroupID)
		return
	}

	var req memberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "AddMember", "group_id", groupID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode member request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "AddMember", "group_id", groupID)
	member, err := h.service.AddMember(r.Context(), application.MemberInput{GroupID: groupID, Name: req.Name})
	if err != nil {
		logger.ErrorContext(r.Context(), "member addition failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.invalidate(groupID)
	logger.With("member_id", member.ID).InfoContext(r.Context(), "member added")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, memberResponse{Member: toMemberDTO(member)})
}

func (h *GroupHandler) RemoveMember(w http.ResponseWriter, r *http.Request, memberID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	groupID, _ := GroupIDFromContext(r.Context())
	logger := h.log(r.Context(), "RemoveMember", "group_id", groupID, "member_id", memberID)
	if err := h.service.RemoveMember(r.Context(), memberID); err != nil {
		logger.ErrorContext(r.Context(), "member removal failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.invalidate(groupID)
	logger.InfoContext(r.Context(), "member removed")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *GroupHandler) AddSlot(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	groupID, ok := GroupIDFromContext(r.Context())
	if !ok || strings.TrimSpace(groupID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidGroupID)
		return
	}

	var req slotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "AddSlot", "group_id", groupID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode slot request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "AddSlot", "group_id", groupID, "member_id", input.MemberID)
	slot, err := h.service.AddSlot(r.Context(), input)
	if err != nil {
		logger.ErrorContext(r.Context(), "slot addition failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.invalidate(groupID)
	logger.With("slot_id", slot.ID).InfoContext(r.Context(), "slot added")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, slotResponse{Slot: toSlotDTO(slot)})
}

func (h *GroupHandler) RemoveSlot(w http.ResponseWriter, r *http.Request, slotID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	groupID, _ := GroupIDFromContext(r.Context())
	logger := h.log(r.Context(), "RemoveSlot", "group_id", groupID, "slot_id", slotID)
	if err := h.service.RemoveSlot(r.Context(), slotID); err != nil {
		logger.ErrorContext(r.Context(), "slot removal failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.invalidate(groupID)
	logger.InfoContext(r.Context(), "slot removed")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type groupRequest struct {
	Name string `json:"name"`
}

type memberRequest struct {
	Name string `json:"name"`
}

type slotRequest struct {
	MemberID string `json:"member_id"`
	Weekday  int    `json:"weekday"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Title    string `json:"title"`
	Type     string `json:"type"`
	Priority int    `json:"priority"`
}

func (r slotRequest) toInput() (application.SlotInput, error) {
	startMin, err := parseClock(r.Start)
	if err != nil {
		return application.SlotInput{}, fmt.Errorf("invalid start time: %v", err)
	}
	endMin, err := parseClock(r.End)
	if err != nil {
		return application.SlotInput{}, fmt.Errorf("invalid end time: %v", err)
	}
	return application.SlotInput{
		MemberID: r.MemberID,
		Weekday:  time.Weekday(r.Weekday),
		StartMin: startMin,
		EndMin:   endMin,
		Title:    r.Title,
		Type:     availability.SlotType(r.Type),
		Priority: r.Priority,
	}, nil
}

// parseClock converts an "HH:MM" string to minutes from midnight.
func parseClock(value string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("expected HH:MM, got %q", value)
	}
	return t.Hour()*60 + t.Minute(), nil
}

type groupDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type memberDTO struct {
	ID        string    `json:"id"`
	GroupID   string    `json:"group_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type slotDTO struct {
	ID       string `json:"id"`
	MemberID string `json:"member_id"`
	Weekday  int    `json:"weekday"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Title    string `json:"title,omitempty"`
	Type     string `json:"type"`
	Priority int    `json:"priority"`
}

type groupResponse struct {
	Group groupDTO `json:"group"`
}

type groupListResponse struct {
	Groups []groupDTO `json:"groups"`
}

type groupDetailResponse struct {
	Group   groupDTO    `json:"group"`
	Members []memberDTO `json:"members"`
}

type memberResponse struct {
	Member memberDTO `json:"member"`
}

type slotResponse struct {
	Slot slotDTO `json:"slot"`
}

func toGroupDTO(g persistence.Group) groupDTO {
	return groupDTO{ID: g.ID, Name: g.Name, CreatedAt: g.CreatedAt, UpdatedAt: g.UpdatedAt}
}

func toMemberDTO(m persistence.Member) memberDTO {
	return memberDTO{ID: m.ID, GroupID: m.GroupID, Name: m.Name, CreatedAt: m.CreatedAt}
}

func toSlotDTO(s persistence.AvailabilitySlot) slotDTO {
	return slotDTO{
		ID:       s.ID,
		MemberID: s.MemberID,
		Weekday:  int(s.Weekday),
		Start:    availability.TimeOfDayFromMinutes(s.StartMin).String(),
		End:      availability.TimeOfDayFromMinutes(s.EndMin).String(),
		Title:    s.Title,
		Type:     s.SlotType,
		Priority: s.Priority,
	}
}
