package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/campus-planner/internal/availability"
	"github.com/example/campus-planner/internal/persistence"
)

// GroupService orchestrates validation and persistence for groups, members,
// and their availability slots.
type GroupService struct {
	groups      persistence.GroupRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewGroupService constructs a group service with the provided dependencies.
func NewGroupService(groups persistence.GroupRepository, idGenerator func() string, now func() time.Time) *GroupService {
	return NewGroupServiceWithLogger(groups, idGenerator, now, nil)
}

// NewGroupServiceWithLogger constructs a group service with a specified logger.
func NewGroupServiceWithLogger(groups persistence.GroupRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *GroupService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &GroupService{groups: groups, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *GroupService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "GroupService", operation, attrs...)
}

// CreateGroup validates input and persists a new group.
func (s *GroupService) CreateGroup(ctx context.Context, input GroupInput) (group persistence.Group, err error) {
	if s == nil {
		err = fmt.Errorf("GroupService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateGroup")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create group", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("group_id", group.ID).InfoContext(ctx, "group created")
	}()

	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	group = persistence.Group{
		ID:        s.idGenerator(),
		Name:      strings.TrimSpace(input.Name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err = s.groups.CreateGroup(ctx, group); err != nil {
		err = mapRepoError(err)
		group = persistence.Group{}
		return
	}
	return
}

// GetGroup returns a group together with its member roster.
func (s *GroupService) GetGroup(ctx context.Context, groupID string) (detail GroupDetail, err error) {
	if s == nil {
		err = fmt.Errorf("GroupService is nil")
		return
	}

	logger := s.loggerWith(ctx, "GetGroup", "group_id", groupID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to get group", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	detail.Group, err = s.groups.GetGroup(ctx, groupID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	detail.Members, err = s.groups.ListMembers(ctx, groupID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// ListGroups returns all groups.
func (s *GroupService) ListGroups(ctx context.Context) ([]persistence.Group, error) {
	if s == nil {
		return nil, fmt.Errorf("GroupService is nil")
	}
	groups, err := s.groups.ListGroups(ctx)
	if err != nil {
		s.loggerWith(ctx, "ListGroups").ErrorContext(ctx, "failed to list groups", "error", err)
		return nil, mapRepoError(err)
	}
	return groups, nil
}

// DeleteGroup removes a group and, via cascade, its members and slots.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID string) error {
	if s == nil {
		return fmt.Errorf("GroupService is nil")
	}
	logger := s.loggerWith(ctx, "DeleteGroup", "group_id", groupID)
	if err := s.groups.DeleteGroup(ctx, groupID); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to delete group", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "group deleted")
	return nil
}

// AddMember validates input and adds a member to a group.
func (s *GroupService) AddMember(ctx context.Context, input MemberInput) (member persistence.Member, err error) {
	if s == nil {
		err = fmt.Errorf("GroupService is nil")
		return
	}

	logger := s.loggerWith(ctx, "AddMember", "group_id", input.GroupID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to add member", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("member_id", member.ID).InfoContext(ctx, "member added")
	}()

	vErr := &ValidationError{}
	if strings.TrimSpace(input.GroupID) == "" {
		vErr.add("groupId", "group id is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	member = persistence.Member{
		ID:        s.idGenerator(),
		GroupID:   input.GroupID,
		Name:      strings.TrimSpace(input.Name),
		CreatedAt: s.now(),
	}
	if err = s.groups.AddMember(ctx, member); err != nil {
		err = mapRepoError(err)
		member = persistence.Member{}
		return
	}
	return
}

// RemoveMember removes a member and, via cascade, their slots.
func (s *GroupService) RemoveMember(ctx context.Context, memberID string) error {
	if s == nil {
		return fmt.Errorf("GroupService is nil")
	}
	logger := s.loggerWith(ctx, "RemoveMember", "member_id", memberID)
	if err := s.groups.RemoveMember(ctx, memberID); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to remove member", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "member removed")
	return nil
}

// AddSlot validates input and records an availability slot for a member.
func (s *GroupService) AddSlot(ctx context.Context, input SlotInput) (slot persistence.AvailabilitySlot, err error) {
	if s == nil {
		err = fmt.Errorf("GroupService is nil")
		return
	}

	logger := s.loggerWith(ctx, "AddSlot", "member_id", input.MemberID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to add slot", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("slot_id", slot.ID).InfoContext(ctx, "slot added")
	}()

	vErr := validateSlotInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	slot = persistence.AvailabilitySlot{
		ID:       s.idGenerator(),
		MemberID: input.MemberID,
		Weekday:  input.Weekday,
		StartMin: input.StartMin,
		EndMin:   input.EndMin,
		Title:    strings.TrimSpace(input.Title),
		SlotType: string(input.Type),
		Priority: input.Priority,
	}
	if err = s.groups.CreateSlot(ctx, slot); err != nil {
		err = mapRepoError(err)
		slot = persistence.AvailabilitySlot{}
		return
	}
	return
}

// RemoveSlot deletes an availability slot.
func (s *GroupService) RemoveSlot(ctx context.Context, slotID string) error {
	if s == nil {
		return fmt.Errorf("GroupService is nil")
	}
	logger := s.loggerWith(ctx, "RemoveSlot", "slot_id", slotID)
	if err := s.groups.DeleteSlot(ctx, slotID); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to remove slot", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "slot removed")
	return nil
}

func validateSlotInput(input SlotInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.MemberID) == "" {
		vErr.add("memberId", "member id is required")
	}
	if input.Weekday < time.Sunday || input.Weekday > time.Saturday {
		vErr.add("weekday", "weekday must be between Sunday and Saturday")
	}
	if input.StartMin < 0 || input.StartMin >= 24*60 {
		vErr.add("start", "start must fall within the day")
	}
	if input.EndMin <= 0 || input.EndMin > 24*60 {
		vErr.add("end", "end must fall within the day")
	}
	if input.StartMin >= input.EndMin {
		vErr.add("end", "end must be after start")
	}
	if !validSlotType(input.Type) {
		vErr.add("type", "unknown slot type")
	}

	return vErr
}

func validSlotType(t availability.SlotType) bool {
	switch t {
	case availability.SlotTypeFree, availability.SlotTypeBusy, availability.SlotTypeTentative,
		availability.SlotTypeLecture, availability.SlotTypeExam, availability.SlotTypeAssignment,
		availability.SlotTypeMeeting, availability.SlotTypePersonal:
		return true
	}
	return false
}

func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("input", "violates a storage constraint")
		return vErr
	}
	return err
}
