package schedule

import (
	"sort"
	"time"

	"studyplanner-backend/internal/models"
)

// Calendar grid display window. Rows are one hour tall, 07:00 through
// 22:00 local time.
const (
	GridStartHour = 7
	GridEndHour   = 22
	HourHeight    = 64.0
)

// IsToday reports whether t falls on the same calendar day as now, in
// now's location.
func IsToday(t, now time.Time) bool {
	t = t.In(now.Location())
	y1, m1, d1 := t.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// TodaySessions returns the sessions whose start falls on now's
// calendar day.
func TodaySessions(sessions []models.StudySession, now time.Time) []models.StudySession {
	out := []models.StudySession{}
	for _, s := range sessions {
		if IsToday(s.StartTime, now) {
			out = append(out, s)
		}
	}
	return out
}

// UpcomingNext returns today's not-yet-completed sessions starting
// strictly after now, soonest first, at most limit of them.
func UpcomingNext(sessions []models.StudySession, now time.Time, limit int) []models.StudySession {
	out := []models.StudySession{}
	for _, s := range TodaySessions(sessions, now) {
		if !s.IsCompleted && s.StartTime.After(now) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// CompletedThisWeek counts completed sessions starting within the
// current week, Monday 00:00 through Sunday end of day in now's
// location.
func CompletedThisWeek(sessions []models.StudySession, now time.Time) int {
	weekStart := StartOfWeek(now)
	weekEnd := weekStart.AddDate(0, 0, 7)

	count := 0
	for _, s := range sessions {
		if !s.IsCompleted {
			continue
		}
		start := s.StartTime.In(now.Location())
		if !start.Before(weekStart) && start.Before(weekEnd) {
			count++
		}
	}
	return count
}

// StartOfWeek returns Monday 00:00:00 of now's week in now's location.
func StartOfWeek(now time.Time) time.Time {
	daysSinceMonday := (int(now.Weekday()) + 6) % 7
	y, m, d := now.AddDate(0, 0, -daysSinceMonday).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// ScheduledMinutes sums the durations of today's sessions, in minutes.
func ScheduledMinutes(sessions []models.StudySession, now time.Time) float64 {
	total := 0.0
	for _, s := range TodaySessions(sessions, now) {
		total += s.EndTime.Sub(s.StartTime).Minutes()
	}
	return total
}

// CompletedMinutes is ScheduledMinutes restricted to completed sessions.
func CompletedMinutes(sessions []models.StudySession, now time.Time) float64 {
	total := 0.0
	for _, s := range TodaySessions(sessions, now) {
		if s.IsCompleted {
			total += s.EndTime.Sub(s.StartTime).Minutes()
		}
	}
	return total
}

// Placement positions a session block within a day column of the
// calendar grid. Top and Height are in grid units (HourHeight per hour).
type Placement struct {
	Top     float64 `json:"top"`
	Height  float64 `json:"height"`
	Visible bool    `json:"visible"`
}

// GridPlacement maps a session's time interval to its vertical position
// in the 07:00-22:00 day column. Sessions partially outside the window
// are clamped to its edges; sessions wholly outside it are not visible.
func GridPlacement(s models.StudySession) Placement {
	start := hoursIntoDay(s.StartTime)
	end := hoursIntoDay(s.EndTime)
	if s.EndTime.YearDay() != s.StartTime.YearDay() || s.EndTime.Year() != s.StartTime.Year() {
		// Spills past midnight; render through the end of the window.
		end = GridEndHour
	}

	if start < GridStartHour {
		start = GridStartHour
	}
	if end > GridEndHour {
		end = GridEndHour
	}
	if end <= start {
		return Placement{}
	}

	return Placement{
		Top:     (start - GridStartHour) * HourHeight,
		Height:  (end - start) * HourHeight,
		Visible: true,
	}
}

func hoursIntoDay(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60.0
}

// DueForReminder reports whether s belongs to the reminder due-set at
// now with the given lookahead horizon: starting within [now, horizon],
// not completed, not yet reminded. The session repo's due query must
// match this predicate.
func DueForReminder(s models.StudySession, now, horizon time.Time) bool {
	if s.IsCompleted || s.ReminderSent {
		return false
	}
	return !s.StartTime.Before(now) && !s.StartTime.After(horizon)
}
