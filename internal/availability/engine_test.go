package availability

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/example/campus-planner/internal/testfixtures"
)

// monday is a fixed reference date used across engine tests.
var monday = time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC)

func fixedEngine(t *testing.T) *Engine {
	t.Helper()
	clock := testfixtures.NewClock(time.Date(2024, 3, 18, 8, 0, 0, 0, time.UTC))
	return NewEngine(clock.NowFunc())
}

func slot(day time.Weekday, startHour, startMin, endHour, endMin int, typ SlotType, title string) AvailabilitySlot {
	return AvailabilitySlot{
		ID:        title,
		DayOfWeek: day,
		Start:     TimeOfDay{Hour: startHour, Minute: startMin},
		End:       TimeOfDay{Hour: endHour, Minute: endMin},
		Title:     title,
		Type:      typ,
	}
}

func TestComputeSchedule_TwoMembersWithLecture(t *testing.T) {
	t.Parallel()

	group := CalendarGroup{
		ID: "group-1",
		Members: []GroupMember{
			{
				ID:   "alice",
				Name: "Alice",
				Availability: []AvailabilitySlot{
					slot(time.Monday, 9, 0, 12, 0, SlotTypeFree, "morning"),
					slot(time.Monday, 12, 0, 13, 0, SlotTypeLecture, "CS 101"),
				},
			},
			{
				ID:   "bob",
				Name: "Bob",
				Availability: []AvailabilitySlot{
					slot(time.Monday, 10, 0, 14, 0, SlotTypeFree, "midday"),
				},
			},
		},
	}

	schedule, err := fixedEngine(t).ComputeSchedule(group, monday)
	if err != nil {
		t.Fatalf("ComputeSchedule returned error: %v", err)
	}

	var full *CommonFreeSlot
	for i := range schedule.CommonFreeSlots {
		if schedule.CommonFreeSlots[i].Confidence == 1.0 {
			full = &schedule.CommonFreeSlots[i]
		}
	}
	if full == nil {
		t.Fatalf("no full-confidence slot in %v", schedule.CommonFreeSlots)
	}
	if full.Start != (TimeOfDay{Hour: 10}) || full.End != (TimeOfDay{Hour: 12}) {
		t.Errorf("full-confidence slot = %s-%s, want 10:00-12:00", full.Start, full.End)
	}
	if full.DurationMinutes != 120 {
		t.Errorf("duration = %d, want 120", full.DurationMinutes)
	}
	if !reflect.DeepEqual(full.AvailableMembers, []string{"alice", "bob"}) {
		t.Errorf("available members = %v, want [alice bob]", full.AvailableMembers)
	}

	if len(schedule.ConflictingSlots) != 1 {
		t.Fatalf("conflicting slots = %v, want exactly one", schedule.ConflictingSlots)
	}
	conflict := schedule.ConflictingSlots[0]
	if conflict.Start != (TimeOfDay{Hour: 12}) || conflict.End != (TimeOfDay{Hour: 13}) {
		t.Errorf("conflict = %s-%s, want 12:00-13:00", conflict.Start, conflict.End)
	}
	if len(conflict.Conflicts) != 1 {
		t.Fatalf("member conflicts = %v, want exactly one", conflict.Conflicts)
	}
	mc := conflict.Conflicts[0]
	if mc.MemberID != "alice" {
		t.Errorf("conflict member = %s, want alice", mc.MemberID)
	}
	if mc.ConflictType != SlotTypeLecture {
		t.Errorf("conflict type = %s, want lecture", mc.ConflictType)
	}
	if mc.CanBeRescheduled {
		t.Error("lecture must not be reschedulable")
	}
	if len(mc.AlternativeTimes) == 0 || len(mc.AlternativeTimes) > 3 {
		t.Fatalf("alternative times = %v, want 1..3 entries", mc.AlternativeTimes)
	}
	if mc.AlternativeTimes[0] != (TimeOfDay{Hour: 12}) {
		t.Errorf("nearest alternative = %s, want 12:00", mc.AlternativeTimes[0])
	}
}

func TestComputeSchedule_SingleMemberNoSlots(t *testing.T) {
	t.Parallel()

	group := CalendarGroup{
		ID:      "group-1",
		Members: []GroupMember{{ID: "alice", Name: "Alice"}},
	}

	schedule, err := fixedEngine(t).ComputeSchedule(group, monday)
	if err != nil {
		t.Fatalf("ComputeSchedule returned error: %v", err)
	}

	if len(schedule.CommonFreeSlots) != 1 {
		t.Fatalf("common free slots = %v, want exactly one", schedule.CommonFreeSlots)
	}
	free := schedule.CommonFreeSlots[0]
	if free.Start != (TimeOfDay{Hour: 6}) || free.End != (TimeOfDay{Hour: 23}) {
		t.Errorf("slot = %s-%s, want 06:00-23:00", free.Start, free.End)
	}
	if free.Confidence != 1.0 {
		t.Errorf("confidence = %f, want 1.0", free.Confidence)
	}
	if free.DurationMinutes != 1020 {
		t.Errorf("duration = %d, want 1020", free.DurationMinutes)
	}
	if len(schedule.ConflictingSlots) != 0 {
		t.Errorf("unexpected conflicts: %v", schedule.ConflictingSlots)
	}
}

func TestComputeSchedule_PartialAvailabilityConfidence(t *testing.T) {
	t.Parallel()

	group := CalendarGroup{
		ID: "group-1",
		Members: []GroupMember{
			{ID: "alice", Name: "Alice", Availability: []AvailabilitySlot{
				slot(time.Monday, 10, 0, 11, 0, SlotTypeMeeting, "standup"),
			}},
			{ID: "bob", Name: "Bob", Availability: []AvailabilitySlot{
				slot(time.Monday, 13, 0, 14, 0, SlotTypeBusy, "gym"),
			}},
			{ID: "cara", Name: "Cara"},
		},
	}

	schedule, err := fixedEngine(t).ComputeSchedule(group, monday)
	if err != nil {
		t.Fatalf("ComputeSchedule returned error: %v", err)
	}

	sawTwoThirds := false
	for _, free := range schedule.CommonFreeSlots {
		if len(free.AvailableMembers) == 2 {
			sawTwoThirds = true
			if diff := free.Confidence - 2.0/3.0; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("confidence = %f, want 2/3", free.Confidence)
			}
		}
	}
	if !sawTwoThirds {
		t.Fatalf("no two-member slot in %v", schedule.CommonFreeSlots)
	}
}

func TestComputeSchedule_EmptyGroup(t *testing.T) {
	t.Parallel()

	schedule, err := fixedEngine(t).ComputeSchedule(CalendarGroup{ID: "empty"}, monday)
	if err != nil {
		t.Fatalf("empty group must not error, got %v", err)
	}
	if len(schedule.CommonFreeSlots) != 0 || len(schedule.ConflictingSlots) != 0 || len(schedule.Suggestions) != 0 {
		t.Fatalf("expected empty schedule, got %+v", schedule)
	}
	if schedule.GeneratedAt.IsZero() {
		t.Error("GeneratedAt must be stamped even for empty schedules")
	}
}

func TestComputeSchedule_InvalidInputs(t *testing.T) {
	t.Parallel()

	engine := fixedEngine(t)

	if _, err := engine.ComputeSchedule(CalendarGroup{}, time.Time{}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero date: got %v, want ErrInvalidInput", err)
	}

	group := CalendarGroup{Members: []GroupMember{{
		ID: "alice",
		Availability: []AvailabilitySlot{
			slot(time.Monday, 12, 0, 10, 0, SlotTypeBusy, "inverted"),
		},
	}}}
	if _, err := engine.ComputeSchedule(group, monday); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("inverted slot: got %v, want ErrInvalidInput", err)
	}
}

func TestComputeSchedule_WindowAccounting(t *testing.T) {
	t.Parallel()

	// Both members busy at the same time, so common and conflicting slots
	// never overlap and their durations account for the full window.
	group := CalendarGroup{
		Members: []GroupMember{
			{ID: "alice", Availability: []AvailabilitySlot{
				slot(time.Monday, 12, 0, 13, 0, SlotTypeExam, "midterm"),
			}},
			{ID: "bob", Availability: []AvailabilitySlot{
				slot(time.Monday, 12, 0, 13, 0, SlotTypeExam, "midterm"),
			}},
		},
	}

	schedule, err := fixedEngine(t).ComputeSchedule(group, monday)
	if err != nil {
		t.Fatalf("ComputeSchedule returned error: %v", err)
	}

	total := 0
	for _, free := range schedule.CommonFreeSlots {
		total += free.DurationMinutes
	}
	for _, conflict := range schedule.ConflictingSlots {
		total += conflict.End.MinuteOfDay() - conflict.Start.MinuteOfDay()
	}
	if total != 1020 {
		t.Fatalf("covered %d minutes, want the full 1020-minute window", total)
	}
}

func TestComputeSchedule_MemberOrderInvariant(t *testing.T) {
	t.Parallel()

	alice := GroupMember{ID: "alice", Availability: []AvailabilitySlot{
		slot(time.Monday, 9, 0, 12, 0, SlotTypeFree, "morning"),
	}}
	bob := GroupMember{ID: "bob", Availability: []AvailabilitySlot{
		slot(time.Monday, 10, 0, 14, 0, SlotTypeFree, "midday"),
	}}

	engine := fixedEngine(t)
	first, err := engine.ComputeSchedule(CalendarGroup{Members: []GroupMember{alice, bob}}, monday)
	if err != nil {
		t.Fatalf("first compute: %v", err)
	}
	second, err := engine.ComputeSchedule(CalendarGroup{Members: []GroupMember{bob, alice}}, monday)
	if err != nil {
		t.Fatalf("second compute: %v", err)
	}

	if len(first.CommonFreeSlots) != len(second.CommonFreeSlots) {
		t.Fatalf("slot counts differ: %d vs %d", len(first.CommonFreeSlots), len(second.CommonFreeSlots))
	}
	for i := range first.CommonFreeSlots {
		a, b := first.CommonFreeSlots[i], second.CommonFreeSlots[i]
		if a.Start != b.Start || a.End != b.End || a.Confidence != b.Confidence {
			t.Errorf("slot %d differs: %+v vs %+v", i, a, b)
		}
	}
}

func TestComputeSchedule_FreeSlotFixedPoint(t *testing.T) {
	t.Parallel()

	group := CalendarGroup{
		Members: []GroupMember{
			{ID: "alice", Availability: []AvailabilitySlot{
				slot(time.Monday, 9, 0, 12, 0, SlotTypeFree, "morning"),
				slot(time.Monday, 13, 0, 15, 0, SlotTypeFree, "afternoon"),
			}},
			{ID: "bob", Availability: []AvailabilitySlot{
				slot(time.Monday, 9, 0, 12, 0, SlotTypeFree, "morning"),
				slot(time.Monday, 13, 0, 15, 0, SlotTypeFree, "afternoon"),
			}},
		},
	}

	engine := fixedEngine(t)
	first, err := engine.ComputeSchedule(group, monday)
	if err != nil {
		t.Fatalf("first compute: %v", err)
	}

	// Feed the computed common free slots back as everyone's availability.
	rebuilt := CalendarGroup{}
	for _, member := range group.Members {
		m := GroupMember{ID: member.ID, Name: member.Name}
		for i, free := range first.CommonFreeSlots {
			m.Availability = append(m.Availability, AvailabilitySlot{
				ID:        free.Start.String(),
				DayOfWeek: time.Monday,
				Start:     free.Start,
				End:       free.End,
				Type:      SlotTypeFree,
				OwnerID:   member.ID,
				Priority:  i,
			})
		}
		rebuilt.Members = append(rebuilt.Members, m)
	}

	second, err := engine.ComputeSchedule(rebuilt, monday)
	if err != nil {
		t.Fatalf("second compute: %v", err)
	}
	if !reflect.DeepEqual(first.CommonFreeSlots, second.CommonFreeSlots) {
		t.Fatalf("recomputation is not a fixed point:\nfirst:  %v\nsecond: %v",
			first.CommonFreeSlots, second.CommonFreeSlots)
	}
}

func TestComputeSchedule_BusyPrecedenceOverFree(t *testing.T) {
	t.Parallel()

	group := CalendarGroup{
		Members: []GroupMember{
			{ID: "alice", Availability: []AvailabilitySlot{
				slot(time.Monday, 9, 0, 12, 0, SlotTypeFree, "morning"),
				slot(time.Monday, 10, 0, 11, 0, SlotTypeMeeting, "advisor"),
			}},
		},
	}

	schedule, err := fixedEngine(t).ComputeSchedule(group, monday)
	if err != nil {
		t.Fatalf("ComputeSchedule returned error: %v", err)
	}

	for _, free := range schedule.CommonFreeSlots {
		if free.Start.MinuteOfDay() < 11*60 && free.End.MinuteOfDay() > 10*60 {
			t.Fatalf("free slot %s-%s overlaps the busy meeting", free.Start, free.End)
		}
	}
	if len(schedule.ConflictingSlots) != 1 {
		t.Fatalf("conflicts = %v, want exactly one", schedule.ConflictingSlots)
	}
}

func TestComputeSchedule_AdjacentBusySlots(t *testing.T) {
	t.Parallel()

	// Consecutive classes must surface as separate conflicts covering the
	// whole 09:00-11:00 span, each reporting the slot actually occupying it.
	group := CalendarGroup{
		Members: []GroupMember{
			{ID: "alice", Name: "Alice", Availability: []AvailabilitySlot{
				slot(time.Monday, 9, 0, 10, 0, SlotTypeLecture, "CS 101"),
				slot(time.Monday, 10, 0, 11, 0, SlotTypeExam, "midterm"),
			}},
		},
	}

	schedule, err := fixedEngine(t).ComputeSchedule(group, monday)
	if err != nil {
		t.Fatalf("ComputeSchedule returned error: %v", err)
	}

	if len(schedule.ConflictingSlots) != 2 {
		t.Fatalf("conflicting slots = %v, want two back-to-back entries", schedule.ConflictingSlots)
	}
	first, second := schedule.ConflictingSlots[0], schedule.ConflictingSlots[1]
	if first.Start != (TimeOfDay{Hour: 9}) || first.End != (TimeOfDay{Hour: 10}) {
		t.Errorf("first conflict = %s-%s, want 09:00-10:00", first.Start, first.End)
	}
	if second.Start != (TimeOfDay{Hour: 10}) || second.End != (TimeOfDay{Hour: 11}) {
		t.Errorf("second conflict = %s-%s, want 10:00-11:00", second.Start, second.End)
	}
	if len(first.Conflicts) != 1 || first.Conflicts[0].ConflictType != SlotTypeLecture {
		t.Errorf("first conflict members = %v, want Alice's lecture", first.Conflicts)
	}
	if len(second.Conflicts) != 1 || second.Conflicts[0].ConflictType != SlotTypeExam {
		t.Errorf("second conflict members = %v, want Alice's exam", second.Conflicts)
	}
}

func TestComputeSchedule_OverlappingBusySlotsPickHigherPriority(t *testing.T) {
	t.Parallel()

	advisor := slot(time.Monday, 10, 0, 12, 0, SlotTypeMeeting, "advisor")
	advisor.Priority = 5
	group := CalendarGroup{
		Members: []GroupMember{
			{ID: "alice", Name: "Alice", Availability: []AvailabilitySlot{
				slot(time.Monday, 9, 0, 11, 0, SlotTypeBusy, "errand"),
				advisor,
			}},
		},
	}

	schedule, err := fixedEngine(t).ComputeSchedule(group, monday)
	if err != nil {
		t.Fatalf("ComputeSchedule returned error: %v", err)
	}

	types := make(map[string]SlotType)
	for _, conflict := range schedule.ConflictingSlots {
		if len(conflict.Conflicts) != 1 {
			t.Fatalf("conflict %s-%s has %d members, want 1", conflict.Start, conflict.End, len(conflict.Conflicts))
		}
		types[conflict.Start.String()+"-"+conflict.End.String()] = conflict.Conflicts[0].ConflictType
	}
	want := map[string]SlotType{
		"09:00-10:00": SlotTypeBusy,
		"10:00-11:00": SlotTypeMeeting,
		"11:00-12:00": SlotTypeMeeting,
	}
	if !reflect.DeepEqual(types, want) {
		t.Fatalf("conflict types = %v, want %v", types, want)
	}
}

func TestComputeSchedule_Deterministic(t *testing.T) {
	t.Parallel()

	group := CalendarGroup{Members: []GroupMember{
		{ID: "alice", Availability: []AvailabilitySlot{
			slot(time.Monday, 9, 0, 12, 0, SlotTypeFree, "morning"),
			slot(time.Monday, 12, 0, 13, 0, SlotTypeLecture, "CS 101"),
		}},
	}}

	engine := fixedEngine(t)
	first, err := engine.ComputeSchedule(group, monday)
	if err != nil {
		t.Fatalf("first compute: %v", err)
	}
	second, err := engine.ComputeSchedule(group, monday)
	if err != nil {
		t.Fatalf("second compute: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("repeated computation over unchanged inputs produced different results")
	}
}
