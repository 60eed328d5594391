package persistence

import (
	"context"
	"time"
)

// GroupRepository stores groups, their members, and member availability.
type GroupRepository interface {
	CreateGroup(ctx context.Context, group Group) error
	GetGroup(ctx context.Context, id string) (Group, error)
	ListGroups(ctx context.Context) ([]Group, error)
	DeleteGroup(ctx context.Context, id string) error

	AddMember(ctx context.Context, member Member) error
	RemoveMember(ctx context.Context, id string) error
	ListMembers(ctx context.Context, groupID string) ([]Member, error)

	CreateSlot(ctx context.Context, slot AvailabilitySlot) error
	DeleteSlot(ctx context.Context, id string) error
	ListSlotsForGroup(ctx context.Context, groupID string) ([]AvailabilitySlot, error)
}

// PlannerRepository stores the per-user records the aggregator fetches.
type PlannerRepository interface {
	CreateAssignment(ctx context.Context, assignment Assignment) error
	ListAssignments(ctx context.Context, userID string, from, to time.Time) ([]Assignment, error)

	CreateExam(ctx context.Context, exam Exam) error
	ListExams(ctx context.Context, userID string, from, to time.Time) ([]Exam, error)

	CreateClassSession(ctx context.Context, session ClassSession) error
	ListClassSessions(ctx context.Context, userID string) ([]ClassSession, error)

	UpsertHoliday(ctx context.Context, holiday Holiday) error
	ListHolidays(ctx context.Context, from, to time.Time) ([]Holiday, error)
}
