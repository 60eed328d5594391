// Package aggregator merges a student's calendar events from several
// independent sources into a unified per-day free/busy view for one week.
package aggregator

import (
	"time"
)

// EventType classifies a normalized week event.
type EventType string

const (
	EventAssignment EventType = "assignment"
	EventExam       EventType = "exam"
	EventLecture    EventType = "lecture"
	EventHoliday    EventType = "holiday"
	EventExternal   EventType = "external"
)

// EventStatus tracks the lifecycle of an event where the source provides one.
type EventStatus string

const (
	StatusActive    EventStatus = "active"
	StatusCompleted EventStatus = "completed"
	StatusCancelled EventStatus = "cancelled"
)

// WeekEvent is the single normalized shape all source records are mapped to.
// ConflictCount is derived during aggregation.
type WeekEvent struct {
	ID            string
	Title         string
	Start         time.Time
	End           time.Time
	Type          EventType
	Status        EventStatus
	Priority      int
	ConflictCount int
}

// TimeSlot is a contiguous free or busy range within one day, together with
// the events occupying it (empty for free slots).
type TimeSlot struct {
	Start  time.Time
	End    time.Time
	Events []WeekEvent
}

// DaySchedule partitions one calendar date into free and busy slots.
type DaySchedule struct {
	Date      time.Time
	Events    []WeekEvent
	FreeSlots []TimeSlot
	BusySlots []TimeSlot
}

// WeekSummary aggregates counts and hours over one week of events.
type WeekSummary struct {
	TotalEvents       int
	CountsByType      map[EventType]int
	BusyHours         float64
	FreeHours         float64
	BusiestDay        time.Time
	LightestDay       time.Time
	ConflictCount     int
	UpcomingDeadlines int
}

// WeekData is the complete result of one LoadWeek call. It is an immutable
// snapshot owned by the caller.
type WeekData struct {
	Events  []WeekEvent
	Days    []DaySchedule
	Summary WeekSummary
}

// Assignment is a deadline record supplied by the assignment source.
type Assignment struct {
	ID       string
	Title    string
	DueDate  time.Time
	Status   EventStatus
	Priority int
}

// Exam is an examination record supplied by the exam source.
type Exam struct {
	ID         string
	Title      string
	CourseName string
	Start      time.Time
	End        time.Time
}

// Holiday is a calendar holiday supplied by the holiday source.
type Holiday struct {
	Date time.Time
	Name string
}
