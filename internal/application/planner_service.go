package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/campus-planner/internal/aggregator"
	"github.com/example/campus-planner/internal/persistence"
)

// PlannerService records the per-user planner entries the week aggregator
// later reads back: assignments, exams, class sessions, and holidays.
type PlannerService struct {
	planner     persistence.PlannerRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewPlannerService constructs a planner service with the provided dependencies.
func NewPlannerService(planner persistence.PlannerRepository, idGenerator func() string, now func() time.Time) *PlannerService {
	return NewPlannerServiceWithLogger(planner, idGenerator, now, nil)
}

// NewPlannerServiceWithLogger constructs a planner service with a specified logger.
func NewPlannerServiceWithLogger(planner persistence.PlannerRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *PlannerService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &PlannerService{planner: planner, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *PlannerService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "PlannerService", operation, attrs...)
}

// AddAssignment validates input and records an assignment deadline. An empty
// status defaults to active.
func (s *PlannerService) AddAssignment(ctx context.Context, input AssignmentInput) (assignment persistence.Assignment, err error) {
	if s == nil {
		err = fmt.Errorf("PlannerService is nil")
		return
	}

	logger := s.loggerWith(ctx, "AddAssignment", "user_id", input.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to add assignment", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("assignment_id", assignment.ID).InfoContext(ctx, "assignment added")
	}()

	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = string(aggregator.StatusActive)
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(input.UserID) == "" {
		vErr.add("userId", "user id is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}
	if input.DueDate.IsZero() {
		vErr.add("dueDate", "due date is required")
	}
	if !validEventStatus(status) {
		vErr.add("status", "unknown status")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	assignment = persistence.Assignment{
		ID:       s.idGenerator(),
		UserID:   input.UserID,
		Title:    strings.TrimSpace(input.Title),
		DueDate:  input.DueDate,
		Status:   status,
		Priority: input.Priority,
	}
	if err = s.planner.CreateAssignment(ctx, assignment); err != nil {
		err = mapRepoError(err)
		assignment = persistence.Assignment{}
		return
	}
	return
}

// AddExam validates input and records an exam sitting.
func (s *PlannerService) AddExam(ctx context.Context, input ExamInput) (exam persistence.Exam, err error) {
	if s == nil {
		err = fmt.Errorf("PlannerService is nil")
		return
	}

	logger := s.loggerWith(ctx, "AddExam", "user_id", input.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to add exam", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("exam_id", exam.ID).InfoContext(ctx, "exam added")
	}()

	vErr := &ValidationError{}
	if strings.TrimSpace(input.UserID) == "" {
		vErr.add("userId", "user id is required")
	}
	if strings.TrimSpace(input.CourseName) == "" {
		vErr.add("courseName", "course name is required")
	}
	if input.Start.IsZero() || input.End.IsZero() {
		vErr.add("start", "start and end are required")
	} else if !input.Start.Before(input.End) {
		vErr.add("end", "end must be after start")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	exam = persistence.Exam{
		ID:         s.idGenerator(),
		UserID:     input.UserID,
		Title:      strings.TrimSpace(input.Title),
		CourseName: strings.TrimSpace(input.CourseName),
		Start:      input.Start,
		End:        input.End,
	}
	if err = s.planner.CreateExam(ctx, exam); err != nil {
		err = mapRepoError(err)
		exam = persistence.Exam{}
		return
	}
	return
}

// AddSession validates input and records a weekly class session.
func (s *PlannerService) AddSession(ctx context.Context, input SessionInput) (session persistence.ClassSession, err error) {
	if s == nil {
		err = fmt.Errorf("PlannerService is nil")
		return
	}

	logger := s.loggerWith(ctx, "AddSession", "user_id", input.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to add session", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("session_id", session.ID).InfoContext(ctx, "session added")
	}()

	vErr := &ValidationError{}
	if strings.TrimSpace(input.UserID) == "" {
		vErr.add("userId", "user id is required")
	}
	if strings.TrimSpace(input.CourseName) == "" {
		vErr.add("courseName", "course name is required")
	}
	if input.Weekday < time.Sunday || input.Weekday > time.Saturday {
		vErr.add("weekday", "weekday must be between Sunday and Saturday")
	}
	if input.StartMin < 0 || input.StartMin >= 24*60 {
		vErr.add("start", "start must fall within the day")
	}
	if input.EndMin <= 0 || input.EndMin > 24*60 {
		vErr.add("end", "end must fall within the day")
	}
	if input.StartMin >= input.EndMin {
		vErr.add("end", "end must be after start")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	session = persistence.ClassSession{
		ID:         s.idGenerator(),
		UserID:     input.UserID,
		CourseName: strings.TrimSpace(input.CourseName),
		Location:   strings.TrimSpace(input.Location),
		Weekday:    input.Weekday,
		StartMin:   input.StartMin,
		EndMin:     input.EndMin,
	}
	if err = s.planner.CreateClassSession(ctx, session); err != nil {
		err = mapRepoError(err)
		session = persistence.ClassSession{}
		return
	}
	return
}

// SetHoliday validates input and records or renames a campus holiday.
func (s *PlannerService) SetHoliday(ctx context.Context, input HolidayInput) (holiday persistence.Holiday, err error) {
	if s == nil {
		err = fmt.Errorf("PlannerService is nil")
		return
	}

	logger := s.loggerWith(ctx, "SetHoliday")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to set holiday", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("date", holiday.Date.Format(time.DateOnly)).InfoContext(ctx, "holiday set")
	}()

	vErr := &ValidationError{}
	if input.Date.IsZero() {
		vErr.add("date", "date is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	holiday = persistence.Holiday{
		Date: input.Date,
		Name: strings.TrimSpace(input.Name),
	}
	if err = s.planner.UpsertHoliday(ctx, holiday); err != nil {
		err = mapRepoError(err)
		holiday = persistence.Holiday{}
		return
	}
	return
}

func validEventStatus(status string) bool {
	switch aggregator.EventStatus(status) {
	case aggregator.StatusActive, aggregator.StatusCompleted, aggregator.StatusCancelled:
		return true
	}
	return false
}
