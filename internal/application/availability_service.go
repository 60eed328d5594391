package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/campus-planner/internal/availability"
	"github.com/example/campus-planner/internal/persistence"
)

// AvailabilityService computes the shared schedule of a group for a given
// date from the persisted roster and slots.
type AvailabilityService struct {
	groups persistence.GroupRepository
	engine *availability.Engine
	cache  *scheduleCache
	now    func() time.Time
	logger *slog.Logger
}

// NewAvailabilityService constructs an availability service.
func NewAvailabilityService(groups persistence.GroupRepository, now func() time.Time) *AvailabilityService {
	return NewAvailabilityServiceWithLogger(groups, now, nil)
}

// NewAvailabilityServiceWithLogger constructs an availability service with a
// specified logger.
func NewAvailabilityServiceWithLogger(groups persistence.GroupRepository, now func() time.Time, logger *slog.Logger) *AvailabilityService {
	if now == nil {
		now = time.Now
	}
	return &AvailabilityService{
		groups: groups,
		engine: availability.NewEngine(now),
		cache:  newScheduleCache(30*time.Second, 128, now),
		now:    now,
		logger: defaultLogger(logger),
	}
}

func (s *AvailabilityService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AvailabilityService", operation, attrs...)
}

// GroupSchedule loads the roster for groupID and computes its shared
// schedule for the given date. Results are cached briefly per group and date.
func (s *AvailabilityService) GroupSchedule(ctx context.Context, groupID string, date time.Time) (schedule availability.SharedSchedule, err error) {
	if s == nil {
		err = fmt.Errorf("AvailabilityService is nil")
		return
	}

	logger := s.loggerWith(ctx, "GroupSchedule", "group_id", groupID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to compute group schedule", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"free_slots", len(schedule.CommonFreeSlots),
			"conflicts", len(schedule.ConflictingSlots),
		).InfoContext(ctx, "group schedule computed")
	}()

	if date.IsZero() {
		err = fmt.Errorf("%w: date is required", availability.ErrInvalidInput)
		return
	}

	key := scheduleCacheKey(groupID, date)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	schedule, err = s.engine.ComputeSchedule(group, date)
	if err != nil {
		return
	}

	s.cache.Store(key, schedule)
	return
}

// InvalidateGroup drops cached schedules after a roster or slot change.
func (s *AvailabilityService) InvalidateGroup(groupID string) {
	if s == nil {
		return
	}
	s.cache.InvalidateGroup(groupID)
}

// loadGroup assembles the engine's group model from the repository.
func (s *AvailabilityService) loadGroup(ctx context.Context, groupID string) (availability.CalendarGroup, error) {
	stored, err := s.groups.GetGroup(ctx, groupID)
	if err != nil {
		return availability.CalendarGroup{}, err
	}
	members, err := s.groups.ListMembers(ctx, groupID)
	if err != nil {
		return availability.CalendarGroup{}, err
	}
	slots, err := s.groups.ListSlotsForGroup(ctx, groupID)
	if err != nil {
		return availability.CalendarGroup{}, err
	}

	slotsByMember := make(map[string][]availability.AvailabilitySlot, len(members))
	for _, slot := range slots {
		slotsByMember[slot.MemberID] = append(slotsByMember[slot.MemberID], availability.AvailabilitySlot{
			ID:        slot.ID,
			DayOfWeek: slot.Weekday,
			Start:     availability.TimeOfDayFromMinutes(slot.StartMin),
			End:       availability.TimeOfDayFromMinutes(slot.EndMin),
			Title:     slot.Title,
			Type:      availability.SlotType(slot.SlotType),
			Priority:  slot.Priority,
			OwnerID:   slot.MemberID,
		})
	}

	group := availability.CalendarGroup{
		ID:      stored.ID,
		Name:    stored.Name,
		Members: make([]availability.GroupMember, 0, len(members)),
	}
	for _, m := range members {
		group.Members = append(group.Members, availability.GroupMember{
			ID:           m.ID,
			Name:         m.Name,
			Availability: slotsByMember[m.ID],
		})
	}
	return group, nil
}
