package recurrence

import (
	"errors"
	"testing"
	"time"
)

func TestExpand_WeeklySessionsWithinWindow(t *testing.T) {
	t.Parallel()

	sessions := []Session{
		{ID: "cs101-mon", CourseName: "CS 101", Weekday: time.Monday, StartMin: 9 * 60, EndMin: 10 * 60},
		{ID: "cs101-wed", CourseName: "CS 101", Weekday: time.Wednesday, StartMin: 9 * 60, EndMin: 10 * 60},
		{ID: "math-fri", CourseName: "Calculus II", Weekday: time.Friday, StartMin: 13 * 60, EndMin: 14*60 + 30},
	}

	weekStart := time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC) // Monday
	weekEnd := weekStart.AddDate(0, 0, 7)

	occurrences, err := Expand(sessions, weekStart, weekEnd)
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if len(occurrences) != 3 {
		t.Fatalf("got %d occurrences, want 3: %v", len(occurrences), occurrences)
	}

	first := occurrences[0]
	if first.SessionID != "cs101-mon" {
		t.Errorf("first occurrence = %s, want cs101-mon", first.SessionID)
	}
	wantStart := time.Date(2024, 3, 18, 9, 0, 0, 0, time.UTC)
	if !first.Start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", first.Start, wantStart)
	}
	if first.End.Sub(first.Start) != time.Hour {
		t.Errorf("duration = %v, want 1h", first.End.Sub(first.Start))
	}

	last := occurrences[2]
	if last.End.Sub(last.Start) != 90*time.Minute {
		t.Errorf("friday session duration = %v, want 90m", last.End.Sub(last.Start))
	}
}

func TestExpand_MultipleWeeksRepeat(t *testing.T) {
	t.Parallel()

	sessions := []Session{
		{ID: "cs101-mon", CourseName: "CS 101", Weekday: time.Monday, StartMin: 9 * 60, EndMin: 10 * 60},
	}

	start := time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC)
	occurrences, err := Expand(sessions, start, start.AddDate(0, 0, 14))
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if len(occurrences) != 2 {
		t.Fatalf("got %d occurrences across two weeks, want 2", len(occurrences))
	}
	if got := occurrences[1].Start.Sub(occurrences[0].Start); got != 7*24*time.Hour {
		t.Errorf("occurrences are %v apart, want one week", got)
	}
}

func TestExpand_InvalidInputs(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC)

	if _, err := Expand(nil, start, start); !errors.Is(err, ErrInvalidWindow) {
		t.Errorf("empty window: got %v, want ErrInvalidWindow", err)
	}

	bad := []Session{{ID: "x", Weekday: time.Monday, StartMin: 600, EndMin: 600}}
	if _, err := Expand(bad, start, start.AddDate(0, 0, 7)); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("zero-length session: got %v, want ErrInvalidSession", err)
	}
}

func TestExpand_NoMatchingWeekday(t *testing.T) {
	t.Parallel()

	sessions := []Session{
		{ID: "sun", CourseName: "Yoga", Weekday: time.Sunday, StartMin: 8 * 60, EndMin: 9 * 60},
	}

	// Monday through Saturday only.
	start := time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC)
	occurrences, err := Expand(sessions, start, start.AddDate(0, 0, 6))
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if len(occurrences) != 0 {
		t.Fatalf("got %v, want none", occurrences)
	}
}
