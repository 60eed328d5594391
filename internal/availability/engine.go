package availability

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/example/campus-planner/internal/interval"
)

// Default computation window: 06:00 to 23:00.
const (
	DefaultWindowStart = 6 * 60
	DefaultWindowEnd   = 23 * 60
)

// ErrInvalidInput indicates a malformed date or slot supplied by the caller.
var ErrInvalidInput = errors.New("availability: invalid input")

// Engine computes shared schedules for groups. It holds no state between
// calls; the injected clock only stamps results.
type Engine struct {
	now         func() time.Time
	windowStart int
	windowEnd   int
}

// NewEngine constructs an Engine with the default 06:00-23:00 window.
// If now is nil, time.Now is used.
func NewEngine(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{
		now:         now,
		windowStart: DefaultWindowStart,
		windowEnd:   DefaultWindowEnd,
	}
}

// ComputeSchedule derives the common free slots, conflicting slots, and smart
// suggestions for the group on the given date. It is a pure function of its
// inputs: the same group snapshot and date always produce the same slots.
// An empty group yields an empty schedule, not an error.
func (e *Engine) ComputeSchedule(group CalendarGroup, date time.Time) (SharedSchedule, error) {
	if date.IsZero() {
		return SharedSchedule{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	schedule := SharedSchedule{
		CommonFreeSlots:  []CommonFreeSlot{},
		ConflictingSlots: []ConflictingSlot{},
		Suggestions:      []SmartSuggestion{},
		GeneratedAt:      e.now(),
	}
	if len(group.Members) == 0 {
		return schedule, nil
	}

	weekday := date.Weekday()

	memberFree := make([][]interval.Interval, len(group.Members))
	memberBusy := make([][]busyInterval, len(group.Members))
	for i, member := range group.Members {
		free, busy, err := e.memberDayIntervals(member, weekday)
		if err != nil {
			return SharedSchedule{}, err
		}
		memberFree[i] = free
		memberBusy[i] = busy
	}

	schedule.CommonFreeSlots = e.commonFreeSlots(group.Members, memberFree)
	schedule.ConflictingSlots = e.conflictingSlots(group.Members, memberBusy, schedule.CommonFreeSlots)
	schedule.Suggestions = NewSuggestionGenerator().Generate(schedule.CommonFreeSlots, schedule.ConflictingSlots)

	return schedule, nil
}

// busyInterval retains the originating slot so conflicts can report its type
// and title.
type busyInterval struct {
	interval.Interval
	slot AvailabilitySlot
}

// memberDayIntervals derives a member's FREE intervals for the weekday. When
// the member declared explicit free slots those bound the free time; otherwise
// the whole window is the baseline. Busy-type entries always take precedence
// over overlapping free declarations.
func (e *Engine) memberDayIntervals(member GroupMember, weekday time.Weekday) ([]interval.Interval, []busyInterval, error) {
	var declared []interval.Interval
	var busy []busyInterval

	for _, slot := range member.Availability {
		if slot.DayOfWeek != weekday {
			continue
		}
		start := slot.Start.MinuteOfDay()
		end := slot.End.MinuteOfDay()
		if start >= end {
			return nil, nil, fmt.Errorf("%w: slot %q of member %q has start %s not before end %s",
				ErrInvalidInput, slot.ID, member.ID, slot.Start, slot.End)
		}

		iv := interval.Clip(interval.Interval{Start: start, End: end}, e.windowStart, e.windowEnd)
		if iv.Empty() {
			continue
		}
		if slot.Type.Occupies() {
			busy = append(busy, busyInterval{Interval: iv, slot: slot})
		} else {
			declared = append(declared, iv)
		}
	}

	baseline := []interval.Interval{{Start: e.windowStart, End: e.windowEnd}}
	if len(declared) > 0 {
		baseline = interval.Union(declared)
	}

	busyIntervals := make([]interval.Interval, len(busy))
	for i, b := range busy {
		busyIntervals[i] = b.Interval
	}

	free := subtractFrom(baseline, busyIntervals)
	return free, busy, nil
}

// subtractFrom removes the busy intervals from each baseline interval.
func subtractFrom(baseline, busy []interval.Interval) []interval.Interval {
	var free []interval.Interval
	for _, base := range baseline {
		clipped := make([]interval.Interval, 0, len(busy))
		for _, b := range busy {
			c := interval.Clip(b, base.Start, base.End)
			if !c.Empty() {
				clipped = append(clipped, c)
			}
		}
		free = append(free, interval.Subtract(clipped, base.Start, base.End)...)
	}
	return interval.Union(free)
}

func (e *Engine) commonFreeSlots(members []GroupMember, memberFree [][]interval.Interval) []CommonFreeSlot {
	segments := interval.SweepPartition(memberFree, e.windowStart, e.windowEnd)
	total := float64(len(members))

	slots := make([]CommonFreeSlot, 0, len(segments))
	for _, seg := range segments {
		if len(seg.FreeMembers) == 0 {
			continue
		}
		ids := make([]string, len(seg.FreeMembers))
		for i, idx := range seg.FreeMembers {
			ids[i] = members[idx].ID
		}
		slots = append(slots, CommonFreeSlot{
			Start:            TimeOfDayFromMinutes(seg.Start),
			End:              TimeOfDayFromMinutes(seg.End),
			AvailableMembers: ids,
			Confidence:       float64(len(ids)) / total,
			DurationMinutes:  seg.Duration(),
		})
	}
	return slots
}

func (e *Engine) conflictingSlots(members []GroupMember, memberBusy [][]busyInterval, freeSlots []CommonFreeSlot) []ConflictingSlot {
	// Each busy slot becomes its own sweep set. Partitioning per slot keeps the
	// original slot boundaries intact, so a member's adjacent or overlapping
	// entries yield separate sub-segments instead of one merged span that no
	// single slot covers.
	var ownerMember []int
	var ownerSlot []AvailabilitySlot
	var sets [][]interval.Interval
	for i, busy := range memberBusy {
		for _, b := range busy {
			ownerMember = append(ownerMember, i)
			ownerSlot = append(ownerSlot, b.slot)
			sets = append(sets, []interval.Interval{b.Interval})
		}
	}

	segments := interval.SweepPartition(sets, e.windowStart, e.windowEnd)

	slots := make([]ConflictingSlot, 0, len(segments))
	for _, seg := range segments {
		if len(seg.FreeMembers) == 0 {
			continue
		}

		// Sets go into the sweep grouped by member in ascending order, so the
		// covering set indices visit members in ascending order too. When several
		// of a member's slots cover the segment, the higher priority then earlier
		// start wins.
		chosen := make(map[int]AvailabilitySlot)
		order := make([]int, 0, len(seg.FreeMembers))
		for _, idx := range seg.FreeMembers {
			member := ownerMember[idx]
			slot := ownerSlot[idx]
			current, ok := chosen[member]
			if !ok {
				chosen[member] = slot
				order = append(order, member)
				continue
			}
			if slot.Priority > current.Priority ||
				(slot.Priority == current.Priority && slot.Start.Before(current.Start)) {
				chosen[member] = slot
			}
		}

		conflicts := make([]MemberConflict, 0, len(order))
		for _, member := range order {
			slot := chosen[member]
			conflicts = append(conflicts, MemberConflict{
				MemberID:         members[member].ID,
				MemberName:       members[member].Name,
				ConflictType:     slot.Type,
				ConflictTitle:    slot.Title,
				CanBeRescheduled: slot.Type.Reschedulable(),
				AlternativeTimes: alternativeTimes(seg.Interval, freeSlots),
			})
		}
		slots = append(slots, ConflictingSlot{
			Start:     TimeOfDayFromMinutes(seg.Start),
			End:       TimeOfDayFromMinutes(seg.End),
			Conflicts: conflicts,
		})
	}
	return slots
}

// alternativeTimes proposes up to three common free slot starts, nearest to
// the conflict first, with confidence breaking ties.
func alternativeTimes(conflict interval.Interval, freeSlots []CommonFreeSlot) []TimeOfDay {
	if len(freeSlots) == 0 {
		return nil
	}

	ranked := make([]CommonFreeSlot, len(freeSlots))
	copy(ranked, freeSlots)
	sort.SliceStable(ranked, func(i, j int) bool {
		di := distance(conflict.Start, ranked[i].Start.MinuteOfDay())
		dj := distance(conflict.Start, ranked[j].Start.MinuteOfDay())
		if di != dj {
			return di < dj
		}
		return ranked[i].Confidence > ranked[j].Confidence
	})

	limit := 3
	if len(ranked) < limit {
		limit = len(ranked)
	}
	times := make([]TimeOfDay, 0, limit)
	for _, slot := range ranked[:limit] {
		times = append(times, slot.Start)
	}
	return times
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
