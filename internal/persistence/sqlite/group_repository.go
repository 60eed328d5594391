package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/campus-planner/internal/persistence"
)

// GroupRepository implements persistence.GroupRepository on SQLite.
type GroupRepository struct {
	store *Store
}

// NewGroupRepository creates a group repository backed by the store.
func NewGroupRepository(store *Store) *GroupRepository {
	return &GroupRepository{store: store}
}

// CreateGroup inserts a new group.
func (r *GroupRepository) CreateGroup(ctx context.Context, group persistence.Group) error {
	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO groups (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		group.ID, group.Name,
		group.CreatedAt.UTC().Format(time.RFC3339),
		group.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return mapError(err)
}

// GetGroup retrieves a group by ID.
func (r *GroupRepository) GetGroup(ctx context.Context, id string) (persistence.Group, error) {
	row := r.store.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM groups WHERE id = ?`, id)

	var group persistence.Group
	var created, updated string
	if err := row.Scan(&group.ID, &group.Name, &created, &updated); err != nil {
		return persistence.Group{}, mapError(err)
	}
	var err error
	if group.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
		return persistence.Group{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if group.UpdatedAt, err = time.Parse(time.RFC3339, updated); err != nil {
		return persistence.Group{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return group, nil
}

// ListGroups enumerates all groups ordered by name.
func (r *GroupRepository) ListGroups(ctx context.Context) ([]persistence.Group, error) {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT id, name, created_at, updated_at FROM groups ORDER BY name, id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var groups []persistence.Group
	for rows.Next() {
		var group persistence.Group
		var created, updated string
		if err := rows.Scan(&group.ID, &group.Name, &created, &updated); err != nil {
			return nil, mapError(err)
		}
		if group.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if group.UpdatedAt, err = time.Parse(time.RFC3339, updated); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}
		groups = append(groups, group)
	}
	return groups, rows.Err()
}

// DeleteGroup removes a group; members and slots cascade.
func (r *GroupRepository) DeleteGroup(ctx context.Context, id string) error {
	result, err := r.store.db.ExecContext(ctx, `DELETE FROM groups WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

// AddMember inserts a member into a group.
func (r *GroupRepository) AddMember(ctx context.Context, member persistence.Member) error {
	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO members (id, group_id, name, created_at) VALUES (?, ?, ?, ?)`,
		member.ID, member.GroupID, member.Name,
		member.CreatedAt.UTC().Format(time.RFC3339),
	)
	return mapError(err)
}

// RemoveMember deletes a member; their slots cascade.
func (r *GroupRepository) RemoveMember(ctx context.Context, id string) error {
	result, err := r.store.db.ExecContext(ctx, `DELETE FROM members WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

// ListMembers enumerates the members of a group.
func (r *GroupRepository) ListMembers(ctx context.Context, groupID string) ([]persistence.Member, error) {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT id, group_id, name, created_at FROM members WHERE group_id = ? ORDER BY name, id`,
		groupID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var members []persistence.Member
	for rows.Next() {
		var member persistence.Member
		var created string
		if err := rows.Scan(&member.ID, &member.GroupID, &member.Name, &created); err != nil {
			return nil, mapError(err)
		}
		if member.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

// CreateSlot inserts an availability slot for a member.
func (r *GroupRepository) CreateSlot(ctx context.Context, slot persistence.AvailabilitySlot) error {
	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO availability_slots (id, member_id, weekday, start_min, end_min, title, slot_type, priority)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		slot.ID, slot.MemberID, int(slot.Weekday), slot.StartMin, slot.EndMin,
		slot.Title, slot.SlotType, slot.Priority,
	)
	return mapError(err)
}

// DeleteSlot removes an availability slot.
func (r *GroupRepository) DeleteSlot(ctx context.Context, id string) error {
	result, err := r.store.db.ExecContext(ctx, `DELETE FROM availability_slots WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

// ListSlotsForGroup returns every availability slot of every member of the
// group in one query.
func (r *GroupRepository) ListSlotsForGroup(ctx context.Context, groupID string) ([]persistence.AvailabilitySlot, error) {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT s.id, s.member_id, s.weekday, s.start_min, s.end_min, s.title, s.slot_type, s.priority
		 FROM availability_slots s
		 JOIN members m ON m.id = s.member_id
		 WHERE m.group_id = ?
		 ORDER BY s.member_id, s.weekday, s.start_min`,
		groupID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var slots []persistence.AvailabilitySlot
	for rows.Next() {
		var slot persistence.AvailabilitySlot
		var weekday int
		if err := rows.Scan(&slot.ID, &slot.MemberID, &weekday, &slot.StartMin, &slot.EndMin,
			&slot.Title, &slot.SlotType, &slot.Priority); err != nil {
			return nil, mapError(err)
		}
		slot.Weekday = time.Weekday(weekday)
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
