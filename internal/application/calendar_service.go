package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/campus-planner/internal/aggregator"
	"github.com/example/campus-planner/internal/persistence"
	"github.com/example/campus-planner/internal/recurrence"
)

// CalendarService loads a student's aggregated week view from the planner
// repository and any configured external calendars.
type CalendarService struct {
	aggregator *aggregator.Aggregator
	logger     *slog.Logger
}

// NewCalendarService wires the planner repository into the week aggregator.
// external may be nil when no feeds are configured.
func NewCalendarService(planner persistence.PlannerRepository, external aggregator.ExternalCalendarSource, logger *slog.Logger) *CalendarService {
	logger = defaultLogger(logger)
	source := &plannerSource{planner: planner}
	return &CalendarService{
		aggregator: aggregator.New(source, source, source, source, external, logger),
		logger:     logger,
	}
}

func (s *CalendarService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CalendarService", operation, attrs...)
}

// WeekView loads the aggregated week starting at weekStart for the user.
func (s *CalendarService) WeekView(ctx context.Context, userID string, weekStart time.Time) (week aggregator.WeekData, err error) {
	if s == nil {
		err = fmt.Errorf("CalendarService is nil")
		return
	}

	logger := s.loggerWith(ctx, "WeekView", "user_id", userID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to load week view", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("event_count", len(week.Events)).InfoContext(ctx, "week view loaded")
	}()

	week, err = s.aggregator.LoadWeek(ctx, userID, weekStart)
	return
}

// plannerSource adapts the planner repository to the aggregator's source
// interfaces.
type plannerSource struct {
	planner persistence.PlannerRepository
}

func (p *plannerSource) FetchAssignments(ctx context.Context, userID string, from, to time.Time) ([]aggregator.Assignment, error) {
	records, err := p.planner.ListAssignments(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]aggregator.Assignment, 0, len(records))
	for _, r := range records {
		out = append(out, aggregator.Assignment{
			ID:       r.ID,
			Title:    r.Title,
			DueDate:  r.DueDate,
			Status:   aggregator.EventStatus(r.Status),
			Priority: r.Priority,
		})
	}
	return out, nil
}

func (p *plannerSource) FetchExams(ctx context.Context, userID string, from, to time.Time) ([]aggregator.Exam, error) {
	records, err := p.planner.ListExams(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]aggregator.Exam, 0, len(records))
	for _, r := range records {
		out = append(out, aggregator.Exam{
			ID:         r.ID,
			Title:      r.Title,
			CourseName: r.CourseName,
			Start:      r.Start,
			End:        r.End,
		})
	}
	return out, nil
}

func (p *plannerSource) FetchSessions(ctx context.Context, userID string) ([]recurrence.Session, error) {
	records, err := p.planner.ListClassSessions(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]recurrence.Session, 0, len(records))
	for _, r := range records {
		out = append(out, recurrence.Session{
			ID:         r.ID,
			CourseName: r.CourseName,
			Location:   r.Location,
			Weekday:    r.Weekday,
			StartMin:   r.StartMin,
			EndMin:     r.EndMin,
		})
	}
	return out, nil
}

func (p *plannerSource) FetchHolidays(ctx context.Context, from, to time.Time) ([]aggregator.Holiday, error) {
	records, err := p.planner.ListHolidays(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]aggregator.Holiday, 0, len(records))
	for _, r := range records {
		out = append(out, aggregator.Holiday{Date: r.Date, Name: r.Name})
	}
	return out, nil
}
