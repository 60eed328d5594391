package aggregator

import (
	"time"

	"github.com/example/campus-planner/internal/availability"
	"github.com/example/campus-planner/internal/interval"
)

// GenerateDaySchedules partitions every date in [weekStart, weekEnd) into
// free and busy slots within the 06:00-23:00 window. Each event's busy time
// is anchored to the concrete calendar date, clipped to the window. Holiday
// events are attached to their day but do not occupy time.
func GenerateDaySchedules(events []WeekEvent, weekStart, weekEnd time.Time) []DaySchedule {
	var days []DaySchedule
	for day := startOfDay(weekStart); day.Before(weekEnd); day = day.AddDate(0, 0, 1) {
		days = append(days, buildDaySchedule(events, day))
	}
	return days
}

func buildDaySchedule(events []WeekEvent, day time.Time) DaySchedule {
	dayEnd := day.AddDate(0, 0, 1)

	var dayEvents []WeekEvent
	var occupying []WeekEvent
	for _, event := range events {
		if !event.Start.Before(dayEnd) || !event.End.After(day) {
			continue
		}
		dayEvents = append(dayEvents, event)
		if event.Type != EventHoliday {
			occupying = append(occupying, event)
		}
	}

	// Each occupying event becomes one set in the sweep, so busy segments know
	// exactly which events cover them.
	sets := make([][]interval.Interval, len(occupying))
	for i, event := range occupying {
		iv := dayMinutes(event, day)
		if !iv.Empty() {
			sets[i] = []interval.Interval{iv}
		}
	}

	segments := interval.SweepPartition(sets, availability.DefaultWindowStart, availability.DefaultWindowEnd)

	schedule := DaySchedule{Date: day, Events: dayEvents}
	for _, seg := range segments {
		slot := TimeSlot{
			Start: day.Add(time.Duration(seg.Start) * time.Minute),
			End:   day.Add(time.Duration(seg.End) * time.Minute),
		}
		if len(seg.FreeMembers) == 0 {
			schedule.FreeSlots = append(schedule.FreeSlots, slot)
			continue
		}
		for _, idx := range seg.FreeMembers {
			slot.Events = append(slot.Events, occupying[idx])
		}
		schedule.BusySlots = append(schedule.BusySlots, slot)
	}
	return schedule
}

// dayMinutes clips the event to the given date and converts it to minutes
// from that date's midnight.
func dayMinutes(event WeekEvent, day time.Time) interval.Interval {
	dayEnd := day.AddDate(0, 0, 1)

	start := event.Start
	if start.Before(day) {
		start = day
	}
	end := event.End
	if end.After(dayEnd) {
		end = dayEnd
	}
	return interval.Interval{
		Start: int(start.Sub(day) / time.Minute),
		End:   int(end.Sub(day) / time.Minute),
	}
}
