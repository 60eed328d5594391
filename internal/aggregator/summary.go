package aggregator

import (
	"time"

	"github.com/example/campus-planner/internal/availability"
	"github.com/example/campus-planner/internal/interval"
)

// windowMinutesPerDay is the length of the daily scheduling window
// (06:00-23:00), 17 hours per day.
const windowMinutesPerDay = availability.DefaultWindowEnd - availability.DefaultWindowStart

// CalculateWeekSummary derives aggregate counts and hours from one week of
// events. Busy time is the per-day union of occupying events clipped to the
// scheduling window, so overlapping events are not double counted.
func CalculateWeekSummary(events []WeekEvent, weekStart time.Time) WeekSummary {
	summary := WeekSummary{
		TotalEvents:  len(events),
		CountsByType: make(map[EventType]int),
	}
	for _, event := range events {
		summary.CountsByType[event.Type]++
		if event.Type == EventAssignment && event.Status == StatusActive {
			summary.UpcomingDeadlines++
		}
	}
	summary.ConflictCount = countConflictPairs(events)

	weekStart = startOfDay(weekStart)
	totalBusyMinutes := 0
	busiestMinutes := -1
	lightestMinutes := -1

	for offset := 0; offset < 7; offset++ {
		day := weekStart.AddDate(0, 0, offset)
		minutes := busyMinutesOn(events, day)
		totalBusyMinutes += minutes

		if minutes > busiestMinutes {
			busiestMinutes = minutes
			summary.BusiestDay = day
		}
		if lightestMinutes == -1 || minutes < lightestMinutes {
			lightestMinutes = minutes
			summary.LightestDay = day
		}
	}

	summary.BusyHours = float64(totalBusyMinutes) / 60
	summary.FreeHours = float64(7*windowMinutesPerDay-totalBusyMinutes) / 60
	return summary
}

func busyMinutesOn(events []WeekEvent, day time.Time) int {
	dayEnd := day.AddDate(0, 0, 1)

	var busy []interval.Interval
	for _, event := range events {
		if event.Type == EventHoliday {
			continue
		}
		if !event.Start.Before(dayEnd) || !event.End.After(day) {
			continue
		}
		iv := interval.Clip(dayMinutes(event, day), availability.DefaultWindowStart, availability.DefaultWindowEnd)
		if !iv.Empty() {
			busy = append(busy, iv)
		}
	}

	total := 0
	for _, iv := range interval.Union(busy) {
		total += iv.Duration()
	}
	return total
}
