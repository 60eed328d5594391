package aggregator

// DetectConflicts returns a copy of events where each event's ConflictCount
// is the number of other events it overlaps with. Overlap uses the half-open
// rule: events that merely touch do not conflict. Holidays span whole days as
// context rather than commitments, so they are never counted.
func DetectConflicts(events []WeekEvent) []WeekEvent {
	annotated := make([]WeekEvent, len(events))
	copy(annotated, events)
	for i := range annotated {
		annotated[i].ConflictCount = 0
	}

	for i := 0; i < len(annotated); i++ {
		if annotated[i].Type == EventHoliday {
			continue
		}
		for j := i + 1; j < len(annotated); j++ {
			if annotated[j].Type == EventHoliday {
				continue
			}
			if eventsOverlap(annotated[i], annotated[j]) {
				annotated[i].ConflictCount++
				annotated[j].ConflictCount++
			}
		}
	}
	return annotated
}

func eventsOverlap(a, b WeekEvent) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// countConflictPairs reports the number of distinct overlapping event pairs.
func countConflictPairs(events []WeekEvent) int {
	pairs := 0
	for i := 0; i < len(events); i++ {
		if events[i].Type == EventHoliday {
			continue
		}
		for j := i + 1; j < len(events); j++ {
			if events[j].Type == EventHoliday {
				continue
			}
			if eventsOverlap(events[i], events[j]) {
				pairs++
			}
		}
	}
	return pairs
}
