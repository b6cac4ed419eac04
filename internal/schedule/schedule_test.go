package schedule

import (
	"testing"
	"time"

	"studyplanner-backend/internal/models"
)

func session(start, end time.Time, completed bool) models.StudySession {
	return models.StudySession{
		Title:       "Session",
		StartTime:   start,
		EndTime:     end,
		IsCompleted: completed,
	}
}

func TestIsToday_MidnightBoundaries(t *testing.T) {
	loc := time.FixedZone("local", -3*3600)
	now := time.Date(2026, 3, 12, 14, 0, 0, 0, loc)

	lateTonight := time.Date(2026, 3, 12, 23, 59, 0, 0, loc)
	if !IsToday(lateTonight, now) {
		t.Errorf("Expected 23:59 on the same day to count as today")
	}

	tomorrowMidnight := time.Date(2026, 3, 13, 0, 0, 0, 0, loc)
	if IsToday(tomorrowMidnight, now) {
		t.Errorf("Expected 00:00 on the next day to not count as today")
	}
}

func TestUpcomingNext(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 3, 12, 12, 0, 0, 0, loc)

	at := func(h int) time.Time { return time.Date(2026, 3, 12, h, 0, 0, 0, loc) }

	sessions := []models.StudySession{
		session(at(9), at(10), false),                                    // already started
		session(at(18), at(19), false),                                   // upcoming
		session(at(14), at(15), true),                                    // completed, excluded
		session(at(13), at(14), false),                                   // upcoming, soonest
		session(at(16), at(17), false),                                   // upcoming
		session(at(20), at(21), false),                                   // upcoming, beyond limit
		session(at(15).AddDate(0, 0, 1), at(16).AddDate(0, 0, 1), false), // tomorrow
	}

	got := UpcomingNext(sessions, now, 3)
	if len(got) != 3 {
		t.Fatalf("Expected 3 upcoming sessions, got %d", len(got))
	}
	if !got[0].StartTime.Equal(at(13)) || !got[1].StartTime.Equal(at(16)) || !got[2].StartTime.Equal(at(18)) {
		t.Errorf("Expected upcoming sorted 13:00, 16:00, 18:00; got %v, %v, %v",
			got[0].StartTime, got[1].StartTime, got[2].StartTime)
	}
}

func TestCompletedThisWeek_Boundaries(t *testing.T) {
	loc := time.UTC
	// Thursday 2026-03-12
	now := time.Date(2026, 3, 12, 12, 0, 0, 0, loc)

	mondayJustAfterMidnight := time.Date(2026, 3, 9, 0, 0, 1, 0, loc)
	precedingSundayNight := time.Date(2026, 3, 8, 23, 59, 59, 0, loc)

	sessions := []models.StudySession{
		session(mondayJustAfterMidnight, mondayJustAfterMidnight.Add(time.Hour), true),
		session(precedingSundayNight, precedingSundayNight.Add(time.Hour), true),
		session(now.Add(-time.Hour), now, false), // this week but not completed
	}

	if got := CompletedThisWeek(sessions, now); got != 1 {
		t.Errorf("Expected 1 completed session this week, got %d", got)
	}
}

func TestStartOfWeek(t *testing.T) {
	loc := time.UTC
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"thursday", time.Date(2026, 3, 12, 15, 30, 0, 0, loc), time.Date(2026, 3, 9, 0, 0, 0, 0, loc)},
		{"monday itself", time.Date(2026, 3, 9, 0, 0, 1, 0, loc), time.Date(2026, 3, 9, 0, 0, 0, 0, loc)},
		{"sunday", time.Date(2026, 3, 15, 23, 0, 0, 0, loc), time.Date(2026, 3, 9, 0, 0, 0, 0, loc)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := StartOfWeek(tc.now); !got.Equal(tc.want) {
				t.Errorf("Expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestGridPlacement(t *testing.T) {
	day := func(h, m int) time.Time { return time.Date(2026, 3, 12, h, m, 0, 0, time.UTC) }

	tests := []struct {
		name    string
		s       models.StudySession
		top     float64
		height  float64
		visible bool
	}{
		{"inside window 09:30-11:00", session(day(9, 30), day(11, 0), false), 160, 96, true},
		{"starts at window open", session(day(7, 0), day(8, 0), false), 0, 64, true},
		{"clamped early start", session(day(6, 0), day(8, 0), false), 0, 64, true},
		{"clamped late end", session(day(21, 0), day(23, 30), false), 896, 64, true},
		{"wholly before window", session(day(5, 0), day(6, 30), false), 0, 0, false},
		{"wholly after window", session(day(22, 30), day(23, 0), false), 0, 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := GridPlacement(tc.s)
			if p.Visible != tc.visible {
				t.Fatalf("Expected visible=%v, got %v", tc.visible, p.Visible)
			}
			if p.Top != tc.top || p.Height != tc.height {
				t.Errorf("Expected top=%.1f height=%.1f, got top=%.1f height=%.1f",
					tc.top, tc.height, p.Top, p.Height)
			}
		})
	}
}

func TestMinuteTotals(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 3, 12, 20, 0, 0, 0, loc)
	at := func(h int) time.Time { return time.Date(2026, 3, 12, h, 0, 0, 0, loc) }

	sessions := []models.StudySession{
		session(at(9), at(10), true),                                   // 60m completed
		session(at(11), at(12), false),                                 // 60m scheduled only
		session(at(14).Add(30*time.Minute), at(16), true),              // 90m completed
		session(at(9).AddDate(0, 0, 1), at(10).AddDate(0, 0, 1), true), // tomorrow
	}

	if got := ScheduledMinutes(sessions, now); got != 210 {
		t.Errorf("Expected 210 scheduled minutes, got %.1f", got)
	}
	if got := CompletedMinutes(sessions, now); got != 150 {
		t.Errorf("Expected 150 completed minutes, got %.1f", got)
	}
}

func TestDueForReminder(t *testing.T) {
	now := time.Date(2026, 3, 12, 12, 0, 0, 0, time.UTC)
	horizon := now.Add(15 * time.Minute)

	base := session(now.Add(10*time.Minute), now.Add(70*time.Minute), false)

	if !DueForReminder(base, now, horizon) {
		t.Errorf("Expected session starting in 10 minutes to be due")
	}

	completed := base
	completed.IsCompleted = true
	if DueForReminder(completed, now, horizon) {
		t.Errorf("Expected completed session to be excluded from due-set")
	}

	reminded := base
	reminded.ReminderSent = true
	if DueForReminder(reminded, now, horizon) {
		t.Errorf("Expected already-reminded session to be excluded from due-set")
	}

	past := base
	past.StartTime = now.Add(-time.Minute)
	if DueForReminder(past, now, horizon) {
		t.Errorf("Expected session already started to be excluded from due-set")
	}

	far := base
	far.StartTime = now.Add(16 * time.Minute)
	if DueForReminder(far, now, horizon) {
		t.Errorf("Expected session beyond horizon to be excluded from due-set")
	}

	edge := base
	edge.StartTime = horizon
	if !DueForReminder(edge, now, horizon) {
		t.Errorf("Expected session starting exactly at horizon to be due")
	}
}
