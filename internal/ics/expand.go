package ics

import (
	"time"

	"github.com/teambition/rrule-go"
)

// Expansion is capped so a runaway RRULE cannot flood a week view.
const maxOccurrencesPerEvent = 500

// occurrence is one concrete instance of an event inside the requested range.
type occurrence struct {
	UID     string
	Summary string
	Start   time.Time
	End     time.Time
}

// expandEvents turns the parsed events into concrete occurrences overlapping
// [from, to). Non-recurring events pass through a range check; recurring
// events are expanded via their RRULE with EXDATEs removed.
func expandEvents(events []parsedEvent, from, to time.Time) []occurrence {
	var out []occurrence

	for _, ev := range events {
		if ev.RawRRule == "" {
			if ev.Start.Before(to) && ev.End.After(from) {
				out = append(out, makeOccurrence(ev, ev.Start, ev.End))
			}
			continue
		}
		out = append(out, expandRecurring(ev, from, to)...)
	}

	return out
}

func expandRecurring(ev parsedEvent, from, to time.Time) []occurrence {
	rule, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		return nil
	}
	rule.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(rule)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	duration := ev.End.Sub(ev.Start)
	if ev.AllDay {
		duration = 24 * time.Hour
	}

	// Widen the query so an occurrence that starts before the range but
	// overlaps it is still found.
	starts := set.Between(from.Add(-duration).In(ev.Start.Location()), to.In(ev.Start.Location()), true)
	if len(starts) > maxOccurrencesPerEvent {
		starts = starts[:maxOccurrencesPerEvent]
	}

	var out []occurrence
	for _, start := range starts {
		end := start.Add(duration)
		if start.Before(to) && end.After(from) {
			out = append(out, makeOccurrence(ev, start, end))
		}
	}
	return out
}

func makeOccurrence(ev parsedEvent, start, end time.Time) occurrence {
	return occurrence{
		UID:     ev.UID,
		Summary: ev.Summary,
		Start:   start,
		End:     end,
	}
}
