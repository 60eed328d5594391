package application

import (
	"time"

	"github.com/example/campus-planner/internal/availability"
	"github.com/example/campus-planner/internal/persistence"
)

// GroupInput captures caller provided group fields.
type GroupInput struct {
	Name string
}

// MemberInput captures caller provided member fields.
type MemberInput struct {
	GroupID string
	Name    string
}

// SlotInput captures caller provided availability slot fields. Start and end
// are minutes from midnight on the given weekday.
type SlotInput struct {
	MemberID string
	Weekday  time.Weekday
	StartMin int
	EndMin   int
	Title    string
	Type     availability.SlotType
	Priority int
}

// GroupDetail is a group with its member roster.
type GroupDetail struct {
	Group   persistence.Group
	Members []persistence.Member
}

// AssignmentInput captures caller provided assignment fields.
type AssignmentInput struct {
	UserID   string
	Title    string
	DueDate  time.Time
	Status   string
	Priority int
}

// ExamInput captures caller provided exam fields.
type ExamInput struct {
	UserID     string
	Title      string
	CourseName string
	Start      time.Time
	End        time.Time
}

// SessionInput captures caller provided class session fields. Start and end
// are minutes from midnight on the given weekday.
type SessionInput struct {
	UserID     string
	CourseName string
	Location   string
	Weekday    time.Weekday
	StartMin   int
	EndMin     int
}

// HolidayInput captures caller provided holiday fields.
type HolidayInput struct {
	Date time.Time
	Name string
}
