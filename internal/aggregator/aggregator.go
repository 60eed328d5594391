package aggregator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/example/campus-planner/internal/logging"
	"github.com/example/campus-planner/internal/recurrence"
)

// ErrInvalidInput indicates a malformed week window supplied by the caller.
var ErrInvalidInput = errors.New("aggregator: invalid input")

// ErrInvariantViolation indicates corrupt upstream data, such as an event
// with a negative duration. It is logged and surfaced, never swallowed.
var ErrInvariantViolation = errors.New("aggregator: computation invariant violated")

// AssignmentSource provides assignment deadlines within a date range.
type AssignmentSource interface {
	FetchAssignments(ctx context.Context, userID string, from, to time.Time) ([]Assignment, error)
}

// ExamSource provides exam sittings within a date range.
type ExamSource interface {
	FetchExams(ctx context.Context, userID string, from, to time.Time) ([]Exam, error)
}

// ClassSource provides the student's weekly recurring class sessions.
type ClassSource interface {
	FetchSessions(ctx context.Context, userID string) ([]recurrence.Session, error)
}

// HolidaySource provides holidays within a date range.
type HolidaySource interface {
	FetchHolidays(ctx context.Context, from, to time.Time) ([]Holiday, error)
}

// ExternalCalendarSource provides already-normalized events from an external
// calendar subscription. It is optional.
type ExternalCalendarSource interface {
	FetchEvents(ctx context.Context, userID string, from, to time.Time) ([]WeekEvent, error)
}

// Aggregator fans out to the configured sources, merges their events, and
// derives conflicts, day schedules, and a week summary. It holds no state
// between calls.
type Aggregator struct {
	assignments AssignmentSource
	exams       ExamSource
	classes     ClassSource
	holidays    HolidaySource
	external    ExternalCalendarSource
	logger      *slog.Logger
}

// New wires the aggregator's sources. The external calendar source may be
// nil, in which case it contributes nothing.
func New(assignments AssignmentSource, exams ExamSource, classes ClassSource, holidays HolidaySource, external ExternalCalendarSource, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		assignments: assignments,
		exams:       exams,
		classes:     classes,
		holidays:    holidays,
		external:    external,
		logger:      logger,
	}
}

// assignmentBlock is the busy time reserved on the calendar for a deadline.
const assignmentBlock = time.Hour

// LoadWeek fetches the four sources concurrently, merges their events, and
// runs conflict detection, day partitioning, and summary computation over the
// merged snapshot. A failing source contributes an empty list and is logged;
// only cancellation aborts the whole call.
func (a *Aggregator) LoadWeek(ctx context.Context, userID string, weekStart time.Time) (WeekData, error) {
	if weekStart.IsZero() {
		return WeekData{}, fmt.Errorf("%w: week start is required", ErrInvalidInput)
	}
	if userID == "" {
		return WeekData{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	weekStart = startOfDay(weekStart)
	weekEnd := weekStart.AddDate(0, 0, 7)
	logger := a.loggerFor(ctx)

	fetches := []struct {
		name  string
		fetch func(context.Context) ([]WeekEvent, error)
	}{
		{"deadlines", func(ctx context.Context) ([]WeekEvent, error) {
			return a.fetchDeadlines(ctx, userID, weekStart, weekEnd)
		}},
		{"classes", func(ctx context.Context) ([]WeekEvent, error) {
			return a.fetchClasses(ctx, userID, weekStart, weekEnd)
		}},
		{"holidays", func(ctx context.Context) ([]WeekEvent, error) {
			return a.fetchHolidays(ctx, weekStart, weekEnd)
		}},
		{"external", func(ctx context.Context) ([]WeekEvent, error) {
			return a.fetchExternal(ctx, userID, weekStart, weekEnd)
		}},
	}

	type sourceResult struct {
		events []WeekEvent
		err    error
	}
	results := make([]sourceResult, len(fetches))

	var wg sync.WaitGroup
	for i, f := range fetches {
		wg.Add(1)
		go func(i int, fetch func(context.Context) ([]WeekEvent, error)) {
			defer wg.Done()
			events, err := fetch(ctx)
			results[i] = sourceResult{events: events, err: err}
		}(i, f.fetch)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return WeekData{}, err
	}

	merged := make([]WeekEvent, 0, 16)
	for i, result := range results {
		if result.err != nil {
			if isCancellation(result.err) {
				return WeekData{}, result.err
			}
			logger.WarnContext(ctx, "source fetch failed, contributing no events",
				"source", fetches[i].name, "error", result.err)
			continue
		}
		merged = append(merged, result.events...)
	}

	if err := checkEventInvariants(merged); err != nil {
		logger.ErrorContext(ctx, "merged events violate invariants", "error", err)
		return WeekData{}, err
	}

	// The merged slice is read-only from here on; the three derivations write
	// into disjoint outputs and need no locks.
	var (
		annotated []WeekEvent
		days      []DaySchedule
		summary   WeekSummary
	)
	var post sync.WaitGroup
	post.Add(3)
	go func() {
		defer post.Done()
		annotated = DetectConflicts(merged)
	}()
	go func() {
		defer post.Done()
		days = GenerateDaySchedules(merged, weekStart, weekEnd)
	}()
	go func() {
		defer post.Done()
		summary = CalculateWeekSummary(merged, weekStart)
	}()
	post.Wait()

	if err := ctx.Err(); err != nil {
		return WeekData{}, err
	}

	return WeekData{Events: annotated, Days: days, Summary: summary}, nil
}

// fetchDeadlines is itself a two-way fan-out over the assignment and exam
// sources. Each sub-source degrades independently.
func (a *Aggregator) fetchDeadlines(ctx context.Context, userID string, from, to time.Time) ([]WeekEvent, error) {
	var (
		assignments    []Assignment
		exams          []Exam
		assignmentsErr error
		examsErr       error
	)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if a.assignments == nil {
			return
		}
		assignments, assignmentsErr = a.assignments.FetchAssignments(ctx, userID, from, to)
	}()
	go func() {
		defer wg.Done()
		if a.exams == nil {
			return
		}
		exams, examsErr = a.exams.FetchExams(ctx, userID, from, to)
	}()
	wg.Wait()

	if isCancellation(assignmentsErr) {
		return nil, assignmentsErr
	}
	if isCancellation(examsErr) {
		return nil, examsErr
	}

	logger := a.loggerFor(ctx)
	events := make([]WeekEvent, 0, len(assignments)+len(exams))

	if assignmentsErr != nil {
		logger.WarnContext(ctx, "assignment fetch failed", "error", assignmentsErr)
	} else {
		for _, item := range assignments {
			events = append(events, WeekEvent{
				ID:       item.ID,
				Title:    item.Title,
				Start:    item.DueDate,
				End:      item.DueDate.Add(assignmentBlock),
				Type:     EventAssignment,
				Status:   item.Status,
				Priority: item.Priority,
			})
		}
	}

	if examsErr != nil {
		logger.WarnContext(ctx, "exam fetch failed", "error", examsErr)
	} else {
		for _, item := range exams {
			title := item.Title
			if title == "" {
				title = item.CourseName
			}
			events = append(events, WeekEvent{
				ID:     item.ID,
				Title:  title,
				Start:  item.Start,
				End:    item.End,
				Type:   EventExam,
				Status: StatusActive,
			})
		}
	}

	return events, nil
}

func (a *Aggregator) fetchClasses(ctx context.Context, userID string, from, to time.Time) ([]WeekEvent, error) {
	if a.classes == nil {
		return nil, nil
	}
	sessions, err := a.classes.FetchSessions(ctx, userID)
	if err != nil {
		return nil, err
	}

	occurrences, err := recurrence.Expand(sessions, from, to)
	if err != nil {
		return nil, err
	}

	events := make([]WeekEvent, 0, len(occurrences))
	for _, occ := range occurrences {
		events = append(events, WeekEvent{
			ID:     occ.SessionID + "@" + occ.Start.Format("2006-01-02"),
			Title:  occ.CourseName,
			Start:  occ.Start,
			End:    occ.End,
			Type:   EventLecture,
			Status: StatusActive,
		})
	}
	return events, nil
}

func (a *Aggregator) fetchHolidays(ctx context.Context, from, to time.Time) ([]WeekEvent, error) {
	if a.holidays == nil {
		return nil, nil
	}
	holidays, err := a.holidays.FetchHolidays(ctx, from, to)
	if err != nil {
		return nil, err
	}

	events := make([]WeekEvent, 0, len(holidays))
	for _, h := range holidays {
		day := startOfDay(h.Date)
		events = append(events, WeekEvent{
			ID:    "holiday-" + day.Format("2006-01-02"),
			Title: h.Name,
			Start: day,
			End:   day.AddDate(0, 0, 1),
			Type:  EventHoliday,
		})
	}
	return events, nil
}

func (a *Aggregator) fetchExternal(ctx context.Context, userID string, from, to time.Time) ([]WeekEvent, error) {
	if a.external == nil {
		return nil, nil
	}
	return a.external.FetchEvents(ctx, userID, from, to)
}

func (a *Aggregator) loggerFor(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger
	}
	return a.logger
}

func checkEventInvariants(events []WeekEvent) error {
	for _, event := range events {
		if event.End.Before(event.Start) {
			return fmt.Errorf("%w: event %q has negative duration", ErrInvariantViolation, event.ID)
		}
	}
	return nil
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
