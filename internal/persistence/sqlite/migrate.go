package sqlite

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS groups (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS members (
		id         TEXT PRIMARY KEY,
		group_id   TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		name       TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS availability_slots (
		id        TEXT PRIMARY KEY,
		member_id TEXT NOT NULL REFERENCES members(id) ON DELETE CASCADE,
		weekday   INTEGER NOT NULL CHECK (weekday BETWEEN 0 AND 6),
		start_min INTEGER NOT NULL,
		end_min   INTEGER NOT NULL,
		title     TEXT NOT NULL DEFAULT '',
		slot_type TEXT NOT NULL,
		priority  INTEGER NOT NULL DEFAULT 0,
		CHECK (start_min < end_min)
	)`,
	`CREATE TABLE IF NOT EXISTS assignments (
		id       TEXT PRIMARY KEY,
		user_id  TEXT NOT NULL,
		title    TEXT NOT NULL,
		due_date TEXT NOT NULL,
		status   TEXT NOT NULL,
		priority INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS exams (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL,
		title       TEXT NOT NULL DEFAULT '',
		course_name TEXT NOT NULL,
		start_time  TEXT NOT NULL,
		end_time    TEXT NOT NULL,
		CHECK (start_time < end_time)
	)`,
	`CREATE TABLE IF NOT EXISTS class_sessions (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL,
		course_name TEXT NOT NULL,
		location    TEXT NOT NULL DEFAULT '',
		weekday     INTEGER NOT NULL CHECK (weekday BETWEEN 0 AND 6),
		start_min   INTEGER NOT NULL,
		end_min     INTEGER NOT NULL,
		CHECK (start_min < end_min)
	)`,
	`CREATE TABLE IF NOT EXISTS holidays (
		day  TEXT PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_members_group ON members(group_id)`,
	`CREATE INDEX IF NOT EXISTS idx_slots_member ON availability_slots(member_id)`,
	`CREATE INDEX IF NOT EXISTS idx_assignments_user ON assignments(user_id, due_date)`,
	`CREATE INDEX IF NOT EXISTS idx_exams_user ON exams(user_id, start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_user ON class_sessions(user_id)`,
}

// Migrate applies the schema. Statements are idempotent, so repeated startup
// runs are safe.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: apply schema: %w", err)
		}
	}
	return nil
}
