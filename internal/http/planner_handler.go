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

type plannerService interface {
	AddAssignment(ctx context.Context, input application.AssignmentInput) (persistence.Assignment, error)
	AddExam(ctx context.Context, input application.ExamInput) (persistence.Exam, error)
	AddSession(ctx context.Context, input application.SessionInput) (persistence.ClassSession, error)
	SetHoliday(ctx context.Context, input application.HolidayInput) (persistence.Holiday, error)
}

// PlannerHandler records the planner entries the week view reads back.
type PlannerHandler struct {
	service   plannerService
	responder responder
	logger    *slog.Logger
}

// NewPlannerHandler constructs the planner entry handler.
func NewPlannerHandler(service plannerService, logger *slog.Logger) *PlannerHandler {
	base := defaultLogger(logger)
	return &PlannerHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *PlannerHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "PlannerHandler", operation, attrs...)
}

func (h *PlannerHandler) AddAssignment(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	userID, ok := UserIDFromContext(r.Context())
	if !ok || strings.TrimSpace(userID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidUserID)
		return
	}

	var req assignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "AddAssignment", "user_id", userID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode assignment request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "AddAssignment", "user_id", userID)
	assignment, err := h.service.AddAssignment(r.Context(), application.AssignmentInput{
		UserID:   userID,
		Title:    req.Title,
		DueDate:  req.DueDate,
		Status:   req.Status,
		Priority: req.Priority,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "assignment creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("assignment_id", assignment.ID).InfoContext(r.Context(), "assignment added")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, assignmentResponse{Assignment: toAssignmentDTO(assignment)})
}

func (h *PlannerHandler) AddExam(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	userID, ok := UserIDFromContext(r.Context())
	if !ok || strings.TrimSpace(userID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidUserID)
		return
	}

	var req examRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "AddExam", "user_id", userID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode exam request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "AddExam", "user_id", userID)
	exam, err := h.service.AddExam(r.Context(), application.ExamInput{
		UserID:     userID,
		Title:      req.Title,
		CourseName: req.CourseName,
		Start:      req.Start,
		End:        req.End,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "exam creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("exam_id", exam.ID).InfoContext(r.Context(), "exam added")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, examResponse{Exam: toExamDTO(exam)})
}

func (h *PlannerHandler) AddSession(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	userID, ok := UserIDFromContext(r.Context())
	if !ok || strings.TrimSpace(userID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidUserID)
		return
	}

	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "AddSession", "user_id", userID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode session request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput(userID)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "AddSession", "user_id", userID)
	session, err := h.service.AddSession(r.Context(), input)
	if err != nil {
		logger.ErrorContext(r.Context(), "session creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("session_id", session.ID).InfoContext(r.Context(), "session added")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, sessionResponse{Session: toSessionDTO(session)})
}

func (h *PlannerHandler) SetHoliday(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req holidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "SetHoliday", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode holiday request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	date, err := time.Parse(time.DateOnly, strings.TrimSpace(req.Date))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, fmt.Errorf("invalid date: expected YYYY-MM-DD, got %q", req.Date))
		return
	}

	logger := h.log(r.Context(), "SetHoliday", "date", req.Date)
	holiday, err := h.service.SetHoliday(r.Context(), application.HolidayInput{Date: date, Name: req.Name})
	if err != nil {
		logger.ErrorContext(r.Context(), "holiday upsert failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "holiday set")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, holidayResponse{Holiday: toHolidayDTO(holiday)})
}

type assignmentRequest struct {
	Title    string    `json:"title"`
	DueDate  time.Time `json:"due_date"`
	Status   string    `json:"status"`
	Priority int       `json:"priority"`
}

type examRequest struct {
	Title      string    `json:"title"`
	CourseName string    `json:"course_name"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
}

type sessionRequest struct {
	CourseName string `json:"course_name"`
	Location   string `json:"location"`
	Weekday    int    `json:"weekday"`
	Start      string `json:"start"`
	End        string `json:"end"`
}

func (r sessionRequest) toInput(userID string) (application.SessionInput, error) {
	startMin, err := parseClock(r.Start)
	if err != nil {
		return application.SessionInput{}, fmt.Errorf("invalid start time: %v", err)
	}
	endMin, err := parseClock(r.End)
	if err != nil {
		return application.SessionInput{}, fmt.Errorf("invalid end time: %v", err)
	}
	return application.SessionInput{
		UserID:     userID,
		CourseName: r.CourseName,
		Location:   r.Location,
		Weekday:    time.Weekday(r.Weekday),
		StartMin:   startMin,
		EndMin:     endMin,
	}, nil
}

type holidayRequest struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

type assignmentDTO struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	Title    string    `json:"title"`
	DueDate  time.Time `json:"due_date"`
	Status   string    `json:"status"`
	Priority int       `json:"priority"`
}

type examDTO struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Title      string    `json:"title,omitempty"`
	CourseName string    `json:"course_name"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
}

type sessionDTO struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	CourseName string `json:"course_name"`
	Location   string `json:"location,omitempty"`
	Weekday    int    `json:"weekday"`
	Start      string `json:"start"`
	End        string `json:"end"`
}

type holidayDTO struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

type assignmentResponse struct {
	Assignment assignmentDTO `json:"assignment"`
}

type examResponse struct {
	Exam examDTO `json:"exam"`
}

type sessionResponse struct {
	Session sessionDTO `json:"session"`
}

type holidayResponse struct {
	Holiday holidayDTO `json:"holiday"`
}

func toAssignmentDTO(a persistence.Assignment) assignmentDTO {
	return assignmentDTO{ID: a.ID, UserID: a.UserID, Title: a.Title, DueDate: a.DueDate, Status: a.Status, Priority: a.Priority}
}

func toExamDTO(e persistence.Exam) examDTO {
	return examDTO{ID: e.ID, UserID: e.UserID, Title: e.Title, CourseName: e.CourseName, Start: e.Start, End: e.End}
}

func toSessionDTO(s persistence.ClassSession) sessionDTO {
	return sessionDTO{
		ID:         s.ID,
		UserID:     s.UserID,
		CourseName: s.CourseName,
		Location:   s.Location,
		Weekday:    int(s.Weekday),
		Start:      availability.TimeOfDayFromMinutes(s.StartMin).String(),
		End:        availability.TimeOfDayFromMinutes(s.EndMin).String(),
	}
}

func toHolidayDTO(h persistence.Holiday) holidayDTO {
	return holidayDTO{Date: h.Date.Format(time.DateOnly), Name: h.Name}
}
