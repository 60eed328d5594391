// Package availability computes shared free time, scheduling conflicts, and
// meeting suggestions for a group of students whose weekly recurring
// availability is supplied as immutable snapshots.
package availability

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time with minute granularity. Values are assumed
// to be already normalized; no timezone conversion is applied.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// MinuteOfDay returns the number of minutes elapsed since midnight.
func (t TimeOfDay) MinuteOfDay() int {
	return t.Hour*60 + t.Minute
}

// Before reports whether t is earlier than other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.MinuteOfDay() < other.MinuteOfDay()
}

// String renders the time as HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// TimeOfDayFromMinutes converts minutes since midnight back to a TimeOfDay.
func TimeOfDayFromMinutes(minutes int) TimeOfDay {
	return TimeOfDay{Hour: minutes / 60, Minute: minutes % 60}
}

// SlotType classifies an availability slot.
type SlotType string

const (
	SlotTypeFree       SlotType = "free"
	SlotTypeBusy       SlotType = "busy"
	SlotTypeTentative  SlotType = "tentative"
	SlotTypeLecture    SlotType = "lecture"
	SlotTypeExam       SlotType = "exam"
	SlotTypeAssignment SlotType = "assignment"
	SlotTypeMeeting    SlotType = "meeting"
	SlotTypePersonal   SlotType = "personal"
)

// Occupies reports whether the slot type blocks the member's time. Every type
// except an explicit free declaration counts as occupied; tentative entries
// block time until the member resolves them.
func (t SlotType) Occupies() bool {
	return t != SlotTypeFree
}

// Reschedulable reports whether a slot of this type can be moved to resolve a
// conflict. Lectures and exams are fixed by the institution.
func (t SlotType) Reschedulable() bool {
	return t != SlotTypeLecture && t != SlotTypeExam
}

// AvailabilitySlot is one weekly recurring entry of a member's calendar.
// Start must be strictly before End.
type AvailabilitySlot struct {
	ID        string
	DayOfWeek time.Weekday
	Start     TimeOfDay
	End       TimeOfDay
	Title     string
	Type      SlotType
	Priority  int
	OwnerID   string
}

// GroupMember is a student together with their weekly availability snapshot.
type GroupMember struct {
	ID           string
	Name         string
	Availability []AvailabilitySlot
}

// CalendarGroup is a set of members sharing a calendar.
type CalendarGroup struct {
	ID      string
	Name    string
	Members []GroupMember
}

// CommonFreeSlot is a time range during which one or more members are free.
// Confidence is the fraction of group members available.
type CommonFreeSlot struct {
	Start            TimeOfDay
	End              TimeOfDay
	AvailableMembers []string
	Confidence       float64
	DurationMinutes  int
}

// MemberConflict describes why a single member is unavailable during a
// conflicting slot.
type MemberConflict struct {
	MemberID         string
	MemberName       string
	ConflictType     SlotType
	ConflictTitle    string
	CanBeRescheduled bool
	AlternativeTimes []TimeOfDay
}

// ConflictingSlot is a time range during which one or more members are
// occupied by a busy-type slot.
type ConflictingSlot struct {
	Start     TimeOfDay
	End       TimeOfDay
	Conflicts []MemberConflict
}

// SuggestionType classifies a smart suggestion.
type SuggestionType string

const (
	SuggestionOptimalMeetingTime SuggestionType = "optimalMeetingTime"
	SuggestionScheduleConflict   SuggestionType = "scheduleConflict"
	SuggestionConflictReduction  SuggestionType = "conflictReduction"
)

// SmartSuggestion is an actionable recommendation derived from the computed
// schedule.
type SmartSuggestion struct {
	Type            SuggestionType
	Confidence      float64
	SuggestedTime   *TimeOfDay
	AffectedMembers []string
	ActionRequired  bool
}

// SharedSchedule is the complete availability picture for a group on one
// date. It is recomputed on demand and never mutated in place.
type SharedSchedule struct {
	CommonFreeSlots  []CommonFreeSlot
	ConflictingSlots []ConflictingSlot
	Suggestions      []SmartSuggestion
	GeneratedAt      time.Time
}
