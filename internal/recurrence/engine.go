// Package recurrence expands weekly recurring class sessions into concrete
// dated occurrences within a bounded window.
package recurrence

import (
	"errors"
	"time"
)

// Session describes one weekly recurring class meeting. Start and End are
// minutes from midnight on the session's weekday.
type Session struct {
	ID         string
	CourseName string
	Location   string
	Weekday    time.Weekday
	StartMin   int
	EndMin     int
}

// Occurrence is a single dated instance of a session.
type Occurrence struct {
	SessionID  string
	CourseName string
	Location   string
	Start      time.Time
	End        time.Time
}

// ErrInvalidWindow indicates the expansion window is empty or inverted.
var ErrInvalidWindow = errors.New("recurrence: window end must be after window start")

// ErrInvalidSession indicates a session with a non-positive duration.
var ErrInvalidSession = errors.New("recurrence: session start must be before end")

// Expand generates the occurrences of each session whose weekday falls inside
// [windowStart, windowEnd). Occurrence timestamps reuse the location of
// windowStart; inputs are assumed to be normalized wall-clock values.
func Expand(sessions []Session, windowStart, windowEnd time.Time) ([]Occurrence, error) {
	if !windowEnd.After(windowStart) {
		return nil, ErrInvalidWindow
	}
	for _, s := range sessions {
		if s.StartMin >= s.EndMin {
			return nil, ErrInvalidSession
		}
	}

	byWeekday := make(map[time.Weekday][]Session, len(sessions))
	for _, s := range sessions {
		byWeekday[s.Weekday] = append(byWeekday[s.Weekday], s)
	}

	loc := windowStart.Location()
	var occurrences []Occurrence

	day := startOfDay(windowStart)
	for day.Before(windowEnd) {
		for _, s := range byWeekday[day.Weekday()] {
			start := day.Add(time.Duration(s.StartMin) * time.Minute)
			end := day.Add(time.Duration(s.EndMin) * time.Minute)
			if !start.Before(windowEnd) || !end.After(windowStart) {
				continue
			}
			occurrences = append(occurrences, Occurrence{
				SessionID:  s.ID,
				CourseName: s.CourseName,
				Location:   s.Location,
				Start:      start,
				End:        end,
			})
		}
		day = time.Date(day.Year(), day.Month(), day.Day()+1, 0, 0, 0, 0, loc)
	}

	return occurrences, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
