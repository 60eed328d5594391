// Package persistence defines the storage models and repository contracts
// feeding the availability engine and the calendar aggregator.
package persistence

import "time"

// Group is a shared calendar group.
type Group struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Member is a student belonging to a group.
type Member struct {
	ID        string
	GroupID   string
	Name      string
	CreatedAt time.Time
}

// AvailabilitySlot is one weekly recurring calendar entry of a member.
// StartMin and EndMin are minutes from midnight on the slot's weekday.
type AvailabilitySlot struct {
	ID       string
	MemberID string
	Weekday  time.Weekday
	StartMin int
	EndMin   int
	Title    string
	SlotType string
	Priority int
}

// Assignment is a deadline record owned by a user.
type Assignment struct {
	ID       string
	UserID   string
	Title    string
	DueDate  time.Time
	Status   string
	Priority int
}

// Exam is an examination sitting owned by a user.
type Exam struct {
	ID         string
	UserID     string
	Title      string
	CourseName string
	Start      time.Time
	End        time.Time
}

// ClassSession is a weekly recurring class meeting owned by a user.
type ClassSession struct {
	ID         string
	UserID     string
	CourseName string
	Location   string
	Weekday    time.Weekday
	StartMin   int
	EndMin     int
}

// Holiday is a campus-wide holiday.
type Holiday struct {
	Date time.Time
	Name string
}
