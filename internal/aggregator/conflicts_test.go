package aggregator

import (
	"testing"
	"time"
)

func event(id string, start, end time.Time, typ EventType) WeekEvent {
	return WeekEvent{ID: id, Title: id, Start: start, End: end, Type: typ}
}

func TestDetectConflicts_HalfOpenBoundary(t *testing.T) {
	t.Parallel()

	day := weekStart
	events := []WeekEvent{
		event("a", day.Add(9*time.Hour), day.Add(10*time.Hour+30*time.Minute), EventLecture),
		event("b", day.Add(10*time.Hour), day.Add(11*time.Hour), EventExam),
		event("c", day.Add(11*time.Hour), day.Add(12*time.Hour), EventExternal),
	}

	annotated := DetectConflicts(events)

	if annotated[0].ConflictCount != 1 {
		t.Errorf("event a conflict count = %d, want 1", annotated[0].ConflictCount)
	}
	if annotated[1].ConflictCount != 1 {
		t.Errorf("event b conflict count = %d, want 1", annotated[1].ConflictCount)
	}
	// c starts exactly when b ends; touching boundaries are not conflicts.
	if annotated[2].ConflictCount != 0 {
		t.Errorf("event c conflict count = %d, want 0", annotated[2].ConflictCount)
	}
}

func TestDetectConflicts_Symmetric(t *testing.T) {
	t.Parallel()

	day := weekStart
	events := []WeekEvent{
		event("a", day.Add(9*time.Hour), day.Add(12*time.Hour), EventLecture),
		event("b", day.Add(10*time.Hour), day.Add(11*time.Hour), EventExam),
		event("c", day.Add(10*time.Hour+30*time.Minute), day.Add(13*time.Hour), EventExternal),
	}

	annotated := DetectConflicts(events)

	// a overlaps b and c; b overlaps a and c; c overlaps a and b.
	for _, ev := range annotated {
		if ev.ConflictCount != 2 {
			t.Errorf("event %s conflict count = %d, want 2", ev.ID, ev.ConflictCount)
		}
	}
	if got := countConflictPairs(events); got != 3 {
		t.Errorf("conflict pairs = %d, want 3", got)
	}
}

func TestDetectConflicts_OrderIndependent(t *testing.T) {
	t.Parallel()

	day := weekStart
	a := event("a", day.Add(9*time.Hour), day.Add(11*time.Hour), EventLecture)
	b := event("b", day.Add(10*time.Hour), day.Add(12*time.Hour), EventExam)

	first := DetectConflicts([]WeekEvent{a, b})
	second := DetectConflicts([]WeekEvent{b, a})

	counts := map[string]int{}
	for _, ev := range first {
		counts[ev.ID] = ev.ConflictCount
	}
	for _, ev := range second {
		if counts[ev.ID] != ev.ConflictCount {
			t.Errorf("event %s count differs across input orders: %d vs %d",
				ev.ID, counts[ev.ID], ev.ConflictCount)
		}
	}
}

func TestDetectConflicts_HolidaysDoNotConflict(t *testing.T) {
	t.Parallel()

	day := weekStart
	events := []WeekEvent{
		event("holiday", day, day.AddDate(0, 0, 1), EventHoliday),
		event("lecture", day.Add(9*time.Hour), day.Add(10*time.Hour), EventLecture),
	}

	annotated := DetectConflicts(events)
	for _, ev := range annotated {
		if ev.ConflictCount != 0 {
			t.Errorf("event %s conflict count = %d, want 0", ev.ID, ev.ConflictCount)
		}
	}
}

func TestDetectConflicts_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	day := weekStart
	events := []WeekEvent{
		event("a", day.Add(9*time.Hour), day.Add(11*time.Hour), EventLecture),
		event("b", day.Add(10*time.Hour), day.Add(12*time.Hour), EventExam),
	}

	_ = DetectConflicts(events)
	for _, ev := range events {
		if ev.ConflictCount != 0 {
			t.Fatalf("input slice was mutated: %+v", ev)
		}
	}
}
