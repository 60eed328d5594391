package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/campus-planner/internal/availability"
	"github.com/example/campus-planner/internal/persistence"
	"github.com/example/campus-planner/internal/testfixtures"
)

// groupRepoStub implements persistence.GroupRepository in memory.
type groupRepoStub struct {
	groups  map[string]persistence.Group
	members map[string]persistence.Member
	slots   map[string]persistence.AvailabilitySlot

	createGroupErr error
	listMemberHits int
}

func newGroupRepoStub() *groupRepoStub {
	return &groupRepoStub{
		groups:  make(map[string]persistence.Group),
		members: make(map[string]persistence.Member),
		slots:   make(map[string]persistence.AvailabilitySlot),
	}
}

func (s *groupRepoStub) CreateGroup(_ context.Context, group persistence.Group) error {
	if s.createGroupErr != nil {
		return s.createGroupErr
	}
	if _, ok := s.groups[group.ID]; ok {
		return persistence.ErrDuplicate
	}
	s.groups[group.ID] = group
	return nil
}

func (s *groupRepoStub) GetGroup(_ context.Context, id string) (persistence.Group, error) {
	group, ok := s.groups[id]
	if !ok {
		return persistence.Group{}, persistence.ErrNotFound
	}
	return group, nil
}

func (s *groupRepoStub) ListGroups(_ context.Context) ([]persistence.Group, error) {
	out := make([]persistence.Group, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, g)
	}
	return out, nil
}

func (s *groupRepoStub) DeleteGroup(_ context.Context, id string) error {
	if _, ok := s.groups[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.groups, id)
	return nil
}

func (s *groupRepoStub) AddMember(_ context.Context, member persistence.Member) error {
	if _, ok := s.groups[member.GroupID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	s.members[member.ID] = member
	return nil
}

func (s *groupRepoStub) RemoveMember(_ context.Context, id string) error {
	if _, ok := s.members[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.members, id)
	return nil
}

func (s *groupRepoStub) ListMembers(_ context.Context, groupID string) ([]persistence.Member, error) {
	s.listMemberHits++
	var out []persistence.Member
	for _, m := range s.members {
		if m.GroupID == groupID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *groupRepoStub) CreateSlot(_ context.Context, slot persistence.AvailabilitySlot) error {
	if _, ok := s.members[slot.MemberID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	s.slots[slot.ID] = slot
	return nil
}

func (s *groupRepoStub) DeleteSlot(_ context.Context, id string) error {
	if _, ok := s.slots[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.slots, id)
	return nil
}

func (s *groupRepoStub) ListSlotsForGroup(_ context.Context, groupID string) ([]persistence.AvailabilitySlot, error) {
	var out []persistence.AvailabilitySlot
	for _, slot := range s.slots {
		member, ok := s.members[slot.MemberID]
		if ok && member.GroupID == groupID {
			out = append(out, slot)
		}
	}
	return out, nil
}

func newTestGroupService(repo *groupRepoStub) *GroupService {
	clock := testfixtures.NewClock(time.Time{})
	ids := testfixtures.NewIDGenerator("id")
	return NewGroupService(repo, ids.NextFunc(), clock.NowFunc())
}

func TestGroupService_CreateGroup(t *testing.T) {
	repo := newGroupRepoStub()
	service := newTestGroupService(repo)

	group, err := service.CreateGroup(context.Background(), GroupInput{Name: "  Study Group  "})
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}
	if group.Name != "Study Group" {
		t.Errorf("CreateGroup() name = %q, want trimmed %q", group.Name, "Study Group")
	}
	if group.ID == "" {
		t.Error("CreateGroup() did not assign an id")
	}
	if group.CreatedAt.IsZero() || !group.CreatedAt.Equal(group.UpdatedAt) {
		t.Errorf("CreateGroup() timestamps = %v / %v", group.CreatedAt, group.UpdatedAt)
	}
}

func TestGroupService_CreateGroup_ValidatesName(t *testing.T) {
	service := newTestGroupService(newGroupRepoStub())

	_, err := service.CreateGroup(context.Background(), GroupInput{Name: "   "})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("CreateGroup() error = %v, want ValidationError", err)
	}
	if _, ok := vErr.FieldErrors["name"]; !ok {
		t.Errorf("CreateGroup() field errors = %v, want name entry", vErr.FieldErrors)
	}
}

func TestGroupService_GetGroup_NotFound(t *testing.T) {
	service := newTestGroupService(newGroupRepoStub())

	_, err := service.GetGroup(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetGroup() error = %v, want ErrNotFound", err)
	}
}

func TestGroupService_AddMember_UnknownGroupMapsToNotFound(t *testing.T) {
	service := newTestGroupService(newGroupRepoStub())

	_, err := service.AddMember(context.Background(), MemberInput{GroupID: "missing", Name: "Alice"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("AddMember() error = %v, want ErrNotFound", err)
	}
}

func TestGroupService_AddSlot_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input SlotInput
		field string
	}{
		{
			name:  "missing member",
			input: SlotInput{Weekday: time.Monday, StartMin: 540, EndMin: 600, Type: availability.SlotTypeBusy},
			field: "memberId",
		},
		{
			name:  "inverted interval",
			input: SlotInput{MemberID: "m", Weekday: time.Monday, StartMin: 600, EndMin: 540, Type: availability.SlotTypeBusy},
			field: "end",
		},
		{
			name:  "start out of range",
			input: SlotInput{MemberID: "m", Weekday: time.Monday, StartMin: -5, EndMin: 540, Type: availability.SlotTypeBusy},
			field: "start",
		},
		{
			name:  "unknown type",
			input: SlotInput{MemberID: "m", Weekday: time.Monday, StartMin: 540, EndMin: 600, Type: "nap"},
			field: "type",
		},
	}

	service := newTestGroupService(newGroupRepoStub())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.AddSlot(context.Background(), tc.input)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("AddSlot() error = %v, want ValidationError", err)
			}
			if _, ok := vErr.FieldErrors[tc.field]; !ok {
				t.Errorf("AddSlot() field errors = %v, want %q entry", vErr.FieldErrors, tc.field)
			}
		})
	}
}

func TestGroupService_AddSlot_Success(t *testing.T) {
	repo := newGroupRepoStub()
	service := newTestGroupService(repo)

	group, err := service.CreateGroup(context.Background(), GroupInput{Name: "Study Group"})
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}
	member, err := service.AddMember(context.Background(), MemberInput{GroupID: group.ID, Name: "Alice"})
	if err != nil {
		t.Fatalf("AddMember() error = %v", err)
	}

	slot, err := service.AddSlot(context.Background(), SlotInput{
		MemberID: member.ID,
		Weekday:  time.Monday,
		StartMin: 9 * 60,
		EndMin:   10 * 60,
		Title:    "Calculus",
		Type:     availability.SlotTypeLecture,
	})
	if err != nil {
		t.Fatalf("AddSlot() error = %v", err)
	}
	if slot.SlotType != string(availability.SlotTypeLecture) {
		t.Errorf("AddSlot() type = %q, want lecture", slot.SlotType)
	}
	if _, ok := repo.slots[slot.ID]; !ok {
		t.Error("AddSlot() did not persist the slot")
	}
}

func TestGroupService_RemoveMember_NotFound(t *testing.T) {
	service := newTestGroupService(newGroupRepoStub())

	if err := service.RemoveMember(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("RemoveMember() error = %v, want ErrNotFound", err)
	}
}
