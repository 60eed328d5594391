package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/example/campus-planner/internal/persistence"
)

// PlannerRepository implements persistence.PlannerRepository on SQLite.
type PlannerRepository struct {
	store *Store
}

// NewPlannerRepository creates a planner repository backed by the store.
func NewPlannerRepository(store *Store) *PlannerRepository {
	return &PlannerRepository{store: store}
}

// CreateAssignment inserts an assignment deadline.
func (r *PlannerRepository) CreateAssignment(ctx context.Context, assignment persistence.Assignment) error {
	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO assignments (id, user_id, title, due_date, status, priority) VALUES (?, ?, ?, ?, ?, ?)`,
		assignment.ID, assignment.UserID, assignment.Title,
		assignment.DueDate.UTC().Format(time.RFC3339),
		assignment.Status, assignment.Priority,
	)
	return mapError(err)
}

// ListAssignments returns a user's assignments due in [from, to).
func (r *PlannerRepository) ListAssignments(ctx context.Context, userID string, from, to time.Time) ([]persistence.Assignment, error) {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT id, user_id, title, due_date, status, priority
		 FROM assignments
		 WHERE user_id = ? AND due_date >= ? AND due_date < ?
		 ORDER BY due_date, id`,
		userID, from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var assignments []persistence.Assignment
	for rows.Next() {
		var a persistence.Assignment
		var due string
		if err := rows.Scan(&a.ID, &a.UserID, &a.Title, &due, &a.Status, &a.Priority); err != nil {
			return nil, mapError(err)
		}
		if a.DueDate, err = time.Parse(time.RFC3339, due); err != nil {
			return nil, fmt.Errorf("failed to parse due_date: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// CreateExam inserts an exam sitting.
func (r *PlannerRepository) CreateExam(ctx context.Context, exam persistence.Exam) error {
	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO exams (id, user_id, title, course_name, start_time, end_time) VALUES (?, ?, ?, ?, ?, ?)`,
		exam.ID, exam.UserID, exam.Title, exam.CourseName,
		exam.Start.UTC().Format(time.RFC3339),
		exam.End.UTC().Format(time.RFC3339),
	)
	return mapError(err)
}

// ListExams returns a user's exams that overlap [from, to).
func (r *PlannerRepository) ListExams(ctx context.Context, userID string, from, to time.Time) ([]persistence.Exam, error) {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT id, user_id, title, course_name, start_time, end_time
		 FROM exams
		 WHERE user_id = ? AND start_time < ? AND end_time > ?
		 ORDER BY start_time, id`,
		userID, to.UTC().Format(time.RFC3339), from.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var exams []persistence.Exam
	for rows.Next() {
		var e persistence.Exam
		var start, end string
		if err := rows.Scan(&e.ID, &e.UserID, &e.Title, &e.CourseName, &start, &end); err != nil {
			return nil, mapError(err)
		}
		if e.Start, err = time.Parse(time.RFC3339, start); err != nil {
			return nil, fmt.Errorf("failed to parse start_time: %w", err)
		}
		if e.End, err = time.Parse(time.RFC3339, end); err != nil {
			return nil, fmt.Errorf("failed to parse end_time: %w", err)
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// CreateClassSession inserts a weekly class meeting.
func (r *PlannerRepository) CreateClassSession(ctx context.Context, session persistence.ClassSession) error {
	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO class_sessions (id, user_id, course_name, location, weekday, start_min, end_min)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.UserID, session.CourseName, session.Location,
		int(session.Weekday), session.StartMin, session.EndMin,
	)
	return mapError(err)
}

// ListClassSessions returns a user's weekly class meetings.
func (r *PlannerRepository) ListClassSessions(ctx context.Context, userID string) ([]persistence.ClassSession, error) {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT id, user_id, course_name, location, weekday, start_min, end_min
		 FROM class_sessions
		 WHERE user_id = ?
		 ORDER BY weekday, start_min, id`,
		userID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var sessions []persistence.ClassSession
	for rows.Next() {
		var s persistence.ClassSession
		var weekday int
		if err := rows.Scan(&s.ID, &s.UserID, &s.CourseName, &s.Location, &weekday, &s.StartMin, &s.EndMin); err != nil {
			return nil, mapError(err)
		}
		s.Weekday = time.Weekday(weekday)
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// UpsertHoliday inserts or replaces a holiday by its date.
func (r *PlannerRepository) UpsertHoliday(ctx context.Context, holiday persistence.Holiday) error {
	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO holidays (day, name) VALUES (?, ?)
		 ON CONFLICT(day) DO UPDATE SET name = excluded.name`,
		holiday.Date.UTC().Format(time.DateOnly), holiday.Name,
	)
	return mapError(err)
}

// ListHolidays returns holidays falling in [from, to).
func (r *PlannerRepository) ListHolidays(ctx context.Context, from, to time.Time) ([]persistence.Holiday, error) {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT day, name FROM holidays WHERE day >= ? AND day < ? ORDER BY day`,
		from.UTC().Format(time.DateOnly), to.UTC().Format(time.DateOnly))
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var holidays []persistence.Holiday
	for rows.Next() {
		var h persistence.Holiday
		var day string
		if err := rows.Scan(&day, &h.Name); err != nil {
			return nil, mapError(err)
		}
		if h.Date, err = time.Parse(time.DateOnly, day); err != nil {
			return nil, fmt.Errorf("failed to parse day: %w", err)
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}
