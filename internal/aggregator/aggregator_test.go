package aggregator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/example/campus-planner/internal/recurrence"
)

var weekStart = time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC) // Monday

type assignmentSourceStub struct {
	assignments []Assignment
	err         error
}

func (s *assignmentSourceStub) FetchAssignments(ctx context.Context, userID string, from, to time.Time) ([]Assignment, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.assignments, nil
}

type examSourceStub struct {
	exams []Exam
	err   error
}

func (s *examSourceStub) FetchExams(ctx context.Context, userID string, from, to time.Time) ([]Exam, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.exams, nil
}

type classSourceStub struct {
	sessions []recurrence.Session
	err      error
}

func (s *classSourceStub) FetchSessions(ctx context.Context, userID string) ([]recurrence.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.sessions, nil
}

type holidaySourceStub struct {
	holidays []Holiday
	err      error
}

func (s *holidaySourceStub) FetchHolidays(ctx context.Context, from, to time.Time) ([]Holiday, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.holidays, nil
}

type externalSourceStub struct {
	events []WeekEvent
	err    error
}

func (s *externalSourceStub) FetchEvents(ctx context.Context, userID string, from, to time.Time) ([]WeekEvent, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.events, nil
}

// blockingSource waits for cancellation before returning.
type blockingSource struct{}

func (s *blockingSource) FetchHolidays(ctx context.Context, from, to time.Time) ([]Holiday, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func at(day, hour int) time.Time {
	return weekStart.AddDate(0, 0, day).Add(time.Duration(hour) * time.Hour)
}

func fullAggregator() *Aggregator {
	return New(
		&assignmentSourceStub{assignments: []Assignment{
			{ID: "hw-1", Title: "Problem set 3", DueDate: at(2, 18), Status: StatusActive, Priority: 2},
		}},
		&examSourceStub{exams: []Exam{
			{ID: "exam-1", CourseName: "Calculus II", Start: at(4, 9), End: at(4, 11)},
		}},
		&classSourceStub{sessions: []recurrence.Session{
			{ID: "cs101", CourseName: "CS 101", Weekday: time.Monday, StartMin: 9 * 60, EndMin: 10 * 60},
		}},
		&holidaySourceStub{holidays: []Holiday{
			{Date: at(5, 0), Name: "Reading day"},
		}},
		&externalSourceStub{events: []WeekEvent{
			{ID: "ext-1", Title: "Dentist", Start: at(1, 15), End: at(1, 16), Type: EventExternal},
		}},
		quietLogger(),
	)
}

func TestLoadWeek_MergesAllSources(t *testing.T) {
	t.Parallel()

	data, err := fullAggregator().LoadWeek(context.Background(), "student-1", weekStart)
	if err != nil {
		t.Fatalf("LoadWeek returned error: %v", err)
	}

	if len(data.Events) != 5 {
		t.Fatalf("merged %d events, want 5: %v", len(data.Events), data.Events)
	}

	byType := make(map[EventType]int)
	for _, event := range data.Events {
		byType[event.Type]++
	}
	for _, typ := range []EventType{EventAssignment, EventExam, EventLecture, EventHoliday, EventExternal} {
		if byType[typ] != 1 {
			t.Errorf("type %s count = %d, want 1", typ, byType[typ])
		}
	}

	if len(data.Days) != 7 {
		t.Fatalf("got %d day schedules, want 7", len(data.Days))
	}
	if data.Summary.TotalEvents != 5 {
		t.Errorf("summary total = %d, want 5", data.Summary.TotalEvents)
	}
}

func TestLoadWeek_FailingSourceDegradesGracefully(t *testing.T) {
	t.Parallel()

	agg := New(
		&assignmentSourceStub{assignments: []Assignment{
			{ID: "hw-1", Title: "Problem set 3", DueDate: at(2, 18), Status: StatusActive},
		}},
		&examSourceStub{exams: []Exam{
			{ID: "exam-1", Start: at(4, 9), End: at(4, 11)},
		}},
		&classSourceStub{err: errors.New("class service unavailable")},
		&holidaySourceStub{holidays: []Holiday{{Date: at(5, 0), Name: "Reading day"}}},
		nil,
		quietLogger(),
	)

	data, err := agg.LoadWeek(context.Background(), "student-1", weekStart)
	if err != nil {
		t.Fatalf("a failing source must not fail the aggregation, got %v", err)
	}
	if len(data.Events) != 3 {
		t.Fatalf("merged %d events from surviving sources, want 3: %v", len(data.Events), data.Events)
	}
}

func TestLoadWeek_NestedDeadlineFetchDegradesIndependently(t *testing.T) {
	t.Parallel()

	agg := New(
		&assignmentSourceStub{err: errors.New("assignment store down")},
		&examSourceStub{exams: []Exam{{ID: "exam-1", Start: at(4, 9), End: at(4, 11)}}},
		nil, nil, nil,
		quietLogger(),
	)

	data, err := agg.LoadWeek(context.Background(), "student-1", weekStart)
	if err != nil {
		t.Fatalf("LoadWeek returned error: %v", err)
	}
	if len(data.Events) != 1 || data.Events[0].Type != EventExam {
		t.Fatalf("exam events must survive an assignment failure, got %v", data.Events)
	}
}

func TestLoadWeek_CancellationAbortsPipeline(t *testing.T) {
	t.Parallel()

	agg := New(nil, nil, nil, &blockingSource{}, nil, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := agg.LoadWeek(ctx, "student-1", weekStart)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

func TestLoadWeek_InvalidInputs(t *testing.T) {
	t.Parallel()

	agg := New(nil, nil, nil, nil, nil, quietLogger())

	if _, err := agg.LoadWeek(context.Background(), "student-1", time.Time{}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero week start: got %v, want ErrInvalidInput", err)
	}
	if _, err := agg.LoadWeek(context.Background(), "", weekStart); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty user: got %v, want ErrInvalidInput", err)
	}
}

func TestLoadWeek_NegativeDurationSurfacesInvariantViolation(t *testing.T) {
	t.Parallel()

	agg := New(nil, nil, nil, nil, &externalSourceStub{events: []WeekEvent{
		{ID: "broken", Start: at(1, 12), End: at(1, 10), Type: EventExternal},
	}}, quietLogger())

	_, err := agg.LoadWeek(context.Background(), "student-1", weekStart)
	if !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("got %v, want ErrInvariantViolation", err)
	}
}

func TestLoadWeek_AnnotatesConflictCounts(t *testing.T) {
	t.Parallel()

	agg := New(nil, nil, nil, nil, &externalSourceStub{events: []WeekEvent{
		{ID: "a", Start: at(0, 9), End: at(0, 11), Type: EventExternal},
		{ID: "b", Start: at(0, 10), End: at(0, 12), Type: EventExternal},
	}}, quietLogger())

	data, err := agg.LoadWeek(context.Background(), "student-1", weekStart)
	if err != nil {
		t.Fatalf("LoadWeek returned error: %v", err)
	}
	for _, event := range data.Events {
		if event.ConflictCount != 1 {
			t.Errorf("event %s conflict count = %d, want 1", event.ID, event.ConflictCount)
		}
	}
	if data.Summary.ConflictCount != 1 {
		t.Errorf("summary conflict count = %d, want 1", data.Summary.ConflictCount)
	}
}
